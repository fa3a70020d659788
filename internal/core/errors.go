package core

import "fmt"

// Error is a structured error with a stable code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors.
//
// Input errors are rejected before any run state is mutated. A run that
// hits RUN_FAILED keeps the equity points already recorded; nothing is
// silently truncated.
var (
	// Input errors
	ErrEmptyUniverse    = &Error{Code: "INPUT_EMPTY_UNIVERSE", Message: "instrument universe is empty"}
	ErrInvalidDateRange = &Error{Code: "INPUT_INVALID_RANGE", Message: "end date precedes start date"}
	ErrBarInvalid       = &Error{Code: "INPUT_BAR_INVALID", Message: "bar violates OHLCV invariants"}

	// Execution-model errors
	ErrInvalidPrice = &Error{Code: "PRICE_INVALID", Message: "price must be positive"}

	// Run errors
	ErrRunFailed      = &Error{Code: "RUN_FAILED", Message: "backtest run failed"}
	ErrRunNotFinished = &Error{Code: "RUN_NOT_FINISHED", Message: "run has not completed"}

	// Store errors
	ErrStoreFailed = &Error{Code: "STORE_FAILED", Message: "store operation failed"}
	ErrNoData      = &Error{Code: "NO_DATA", Message: "no data available"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
