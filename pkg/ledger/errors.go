package ledger

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/code-dice/pkg/solana"
)

// InstructionFailure is a failure raised by the ledger itself while executing
// an instruction. It surfaces in transaction errors under its standard key.
type InstructionFailure struct {
	Key    solana.InstructionErrorKey
	Reason string
}

func (e *InstructionFailure) Error() string {
	if e.Reason == "" {
		return string(e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

func (e *InstructionFailure) InstructionErrorKey() solana.InstructionErrorKey {
	return e.Key
}

// NewInstructionFailure returns a failure reported under key.
func NewInstructionFailure(key solana.InstructionErrorKey, format string, args ...interface{}) error {
	return &InstructionFailure{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// IsInstructionFailure reports whether err is a transaction error caused by
// an instruction failing with key.
func IsInstructionFailure(err error, key solana.InstructionErrorKey) bool {
	var txnErr *solana.TransactionError
	if !errors.As(err, &txnErr) || txnErr.InstructionError() == nil {
		return false
	}
	return txnErr.InstructionError().ErrorKey() == key
}

// IsTransactionFailure reports whether err is a transaction error with key.
func IsTransactionFailure(err error, key solana.TransactionErrorKey) bool {
	var txnErr *solana.TransactionError
	if !errors.As(err, &txnErr) {
		return false
	}
	return txnErr.ErrorKey() == key
}
