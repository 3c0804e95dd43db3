package db

import "errors"

// Sentinel errors for database operations.
var (
	// ErrKeyNotFound signals a missing key in the kv table.
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op names used for error context.
const (
	OpOpen   = "open"
	OpExec   = "exec"
	OpQuery  = "query"
	OpBegin  = "begin"
	OpCommit = "commit"
	OpScan   = "scan"
)

// Error wraps an underlying storage failure with the operation and the
// statement subject for diagnostics. It is the storage-error type the
// repositories surface; validation errors never wear it.
type Error struct {
	Op      string
	Subject string
	Err     error
}

func (e *Error) Error() string { return e.Op + " " + e.Subject + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error unless err is nil.
func Wrap(op, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Subject: subject, Err: err}
}
