// Package verify normalizes and validates raw user input for transaction
// fields. Every function is a pure string transform: it returns the best
// auto-corrected value alongside a typed error, so a caller can re-display
// the correction and let the user fix the rest. A nil error means the
// input was accepted as-is (after normalization).
package verify

import "fmt"

// Code distinguishes the validation failure classes. Validation errors are
// per-field and non-fatal; they never propagate past the caller's status
// display.
type Code int

const (
	CodeInvalidDate Code = iota + 1
	CodeYearOutOfRange
	CodeMonthOutOfRange
	CodeDayOutOfRange
	CodeNonExistingDate
	CodeInvalidAmount
	CodeAmountBelowZero
	CodeInvalidTxMethod
	CodeInvalidTxType
	CodeNonExistingTag
)

// Error is a validation failure paired with the auto-corrected suggestion
// the companion return value carries.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func errf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}
