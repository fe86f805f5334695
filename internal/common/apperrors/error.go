// Package apperrors defines the error type used across the gateway. It keeps
// the standard error interface and adds chainable helpers for wrapping causes,
// carrying an HTTP status code, and expanding wrapped errors into a single
// message for responses and logs.
package apperrors

// Error is the application error interface. Methods never mutate the
// receiver; each returns a derived Error so call sites can chain.
type Error interface {
	error
	Unwrap() error // errors.Is / errors.As support

	New(msg string) Error                  // derived error with a fresh message
	Msg(msg string) Error                  // new message, original kept as cause
	MsgErr(msg string, errs ...error) Error // new message plus extra wrapped errors
	Err(errs ...error) Error               // same message, extra wrapped errors
	SetStatusCode(code int) Error          // HTTP status carried to the response layer
	StatusCode() int
	SetExpandError(on bool) Error // whether ErrorAll includes wrapped errors
	ErrorAll() string             // message plus wrapped errors when expansion is on
	UnwrapAll() []error           // every wrapped error, in attach order
}
