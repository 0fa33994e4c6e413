package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound      = errors.New("db: key not found")
	ErrNotFound         = errors.New("db: document not found")
	ErrIndexNotFound    = errors.New("db: index not found")
	ErrUnavailable      = errors.New("db: backend unavailable")
	ErrScrollIDNotFound = errors.New("db: scroll context missing")
)

// Op constants map to backend endpoints for error context.
const (
	OpPing        = "PING"
	OpSearch      = "_search"
	OpMultiSearch = "_msearch"
	OpOpenScroll  = "_search?scroll"
	OpScroll      = "_search/scroll"
	OpClearScroll = "DELETE _search/scroll"
	OpGet         = "_doc"
	OpMultiGet    = "_mget"
	OpMapping     = "_mapping"
	OpKVGet       = "GET"
	OpKVSet       = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
