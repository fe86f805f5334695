package apperrors

import (
	"errors"
	"strings"
)

// gwError is the concrete Error implementation. Derivations share the parent
// as their cause so identity checks walk the whole chain.
type gwError struct {
	message  string
	cause    error   // parent in the derivation chain
	attached []error // errors collected via Err / MsgErr
	status   int
	expand   bool
}

// New creates a root error. Status code is unset until SetStatusCode is
// called; the response layer treats zero as 500.
func New(msg string) Error {
	return &gwError{message: msg}
}

func (e *gwError) Error() string {
	return e.message
}

// ErrorAll renders the message together with all attached errors when
// expansion is enabled, separated by "; ".
func (e *gwError) ErrorAll() string {
	if !e.expand || len(e.attached) == 0 {
		return e.message
	}
	var b strings.Builder
	b.WriteString(e.message)
	for _, err := range e.attached {
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *gwError) Unwrap() error {
	return e.cause
}

func (e *gwError) UnwrapAll() []error {
	return e.attached
}

// New derives a fresh error from the receiver. The receiver becomes the
// cause; status code and expansion carry over, attached errors do not.
func (e *gwError) New(msg string) Error {
	return &gwError{
		message: msg,
		cause:   e,
		status:  e.status,
		expand:  e.expand,
	}
}

// Msg replaces the message and keeps the receiver (and everything it had
// attached) reachable through the chain.
func (e *gwError) Msg(msg string) Error {
	return &gwError{
		message:  msg,
		cause:    e,
		attached: append([]error{e}, e.attached...),
		status:   e.status,
		expand:   e.expand,
	}
}

// MsgErr replaces the message and attaches additional errors.
func (e *gwError) MsgErr(msg string, errs ...error) Error {
	return &gwError{
		message:  msg,
		cause:    e,
		attached: append([]error{e}, errs...),
		status:   e.status,
		expand:   e.expand,
	}
}

// Err keeps the message and attaches additional errors.
func (e *gwError) Err(errs ...error) Error {
	return &gwError{
		message:  e.message,
		cause:    e,
		attached: append([]error{e}, errs...),
		status:   e.status,
		expand:   e.expand,
	}
}

func (e *gwError) SetStatusCode(code int) Error {
	cp := *e
	cp.status = code
	return &cp
}

func (e *gwError) StatusCode() int {
	return e.status
}

func (e *gwError) SetExpandError(on bool) Error {
	cp := *e
	cp.expand = on
	return &cp
}

// Is matches the target against the cause chain and every attached error,
// so a derived or wrapping error still compares equal to its ancestors.
func (e *gwError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.cause, target) {
		return true
	}
	for _, err := range e.attached {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
