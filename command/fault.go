package command

import (
	"errors"
	"fmt"
)

// FaultCode classifies a domain fault. Codes are strings so they serialize
// naturally in API responses.
type FaultCode string

const (
	// CodeBusinessRule is a business rule violated during execution
	CodeBusinessRule FaultCode = "BUSINESS_RULE"

	// CodeNotFound indicates the targeted resource does not exist
	CodeNotFound FaultCode = "NOT_FOUND"

	// CodeConcurrency indicates the resource changed since it was read
	CodeConcurrency FaultCode = "CONCURRENCY"

	// CodeConflict indicates the resource state prevents the operation
	CodeConflict FaultCode = "CONFLICT"
)

// Fault is an expected business failure raised from application logic.
// A Pipeline converts it into a failed ExecutionResult, even when wrapped.
type Fault struct {
	Code    FaultCode
	Message string
	Err     error
}

func (f *Fault) Error() string { return f.Message }

func (f *Fault) Unwrap() error { return f.Err }

// NewFault creates a business-rule fault
func NewFault(format string, args ...any) *Fault {
	return &Fault{Code: CodeBusinessRule, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Fault {
	return &Fault{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Concurrency(format string, args ...any) *Fault {
	return &Fault{Code: CodeConcurrency, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Fault {
	return &Fault{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to the fault
func (f *Fault) Wrap(err error) *Fault {
	f.Err = err
	return f
}

// AsFault finds the first Fault in err's chain
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsFault reports whether err's chain contains a Fault
func IsFault(err error) bool {
	_, ok := AsFault(err)
	return ok
}

// HasCode reports whether err's chain contains a Fault with code
func HasCode(err error, code FaultCode) bool {
	f, ok := AsFault(err)
	return ok && f.Code == code
}
