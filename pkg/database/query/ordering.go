package query

// The ordering of a returned set of records
type Ordering uint

const (
	Ascending Ordering = iota
	Descending
)
