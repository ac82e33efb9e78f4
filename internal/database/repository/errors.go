package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a delete/edit aimed at a row that no longer exists.
var ErrNotFound = errors.New("not found")

// PersistenceError wraps a store I/O failure or constraint violation. The
// attempted operation is aborted; nothing is partially applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// CorruptDataError reports stored data that cannot be parsed back into its
// domain type. A hand-edited or partially-migrated database is a realistic
// occurrence, so this surfaces to the caller instead of panicking.
type CorruptDataError struct {
	Table string
	Value string
	Err   error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt data in %s: %q: %v", e.Table, e.Value, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }
