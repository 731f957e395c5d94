package shared

import "fmt"

// ErrorKind is a machine-readable error category. Handlers map kinds to
// transport status codes; nothing below the HTTP layer inspects status codes.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindBeneficiaryConfig ErrorKind = "BENEFICIARY_CONFIGURATION_ERROR"
	KindDuplicateEvent    ErrorKind = "DUPLICATE_EVENT"
	KindInvalidSignature  ErrorKind = "INVALID_SIGNATURE"
	KindTransientConflict ErrorKind = "TRANSIENT_STORE_CONFLICT"
	KindExternalService   ErrorKind = "EXTERNAL_SERVICE_ERROR"
	KindNotFound          ErrorKind = "NOT_FOUND"
)

// Error carries a tagged kind plus context. It replaces ad-hoc error shapes
// so callers can branch on Kind with errors.Is.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so sentinel comparisons like
// errors.Is(err, shared.E(shared.KindInsufficientFunds, "")) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// E builds a tagged error
func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Ef builds a tagged error with a formatted message
func Ef(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a tagged error around an underlying cause
func Wrap(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or empty when err is not tagged
func KindOf(err error) ErrorKind {
	for err != nil {
		if tagged, ok := err.(*Error); ok {
			return tagged.Kind
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = unwrapper.Unwrap()
	}
	return ""
}
