package service

import "errors"

// Kind classifies a service failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a failure whose Message is safe to show to a client. Err, when
// set, carries the underlying cause for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and message, so sentinels
// still compare equal after being wrapped with a cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func internalError(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf returns the Kind of err, or KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

var (
	ErrInvalidEmail        = newError(KindValidation, "Invalid email address")
	ErrCredentialsRequired = newError(KindValidation, "Email and password are required")
	ErrInvalidCredentials  = newError(KindUnauthenticated, "Invalid email or password")
	ErrEmailTaken          = newError(KindConflict, "An account with this email already exists")

	ErrAuthRequired   = newError(KindUnauthenticated, "Authentication required")
	ErrSessionInvalid = newError(KindUnauthenticated, "Session expired or invalid")

	ErrInvalidAPIKey       = newError(KindValidation, `Invalid API key format. Google Gemini API keys start with "AIza"`)
	ErrMaxTokensRange      = newError(KindValidation, "Max tokens must be between 100 and 8000")
	ErrTemperatureRange    = newError(KindValidation, "Temperature must be between 0 and 2")
	ErrModelRequired       = newError(KindValidation, "Model must not be empty")
	ErrAPIKeyNotConfigured = newError(KindValidation, "API key not configured. Please add your Gemini API key in settings.")
)
