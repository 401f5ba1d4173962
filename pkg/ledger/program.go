package ledger

// Program is an on-ledger program the bank can invoke.
type Program interface {
	Process(ctx *InvokeContext) error
}

// ProgramFunc adapts a function to a Program.
type ProgramFunc func(ctx *InvokeContext) error

func (f ProgramFunc) Process(ctx *InvokeContext) error {
	return f(ctx)
}
