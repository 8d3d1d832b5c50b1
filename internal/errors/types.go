package errors

import "strings"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "validation_error", "configuration_error")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// Kind classifies a failure by the layer that produced it and how callers
// are expected to react to it.
type Kind string

const (
	// missing credentials or invalid settings; blocks the capability entirely
	KindConfiguration Kind = "configuration"

	// embedding or generation call failed (timeout, quota, malformed response)
	KindProvider Kind = "provider"

	// vector store unreachable or failing
	KindStoreUnavailable Kind = "store_unavailable"

	// bad input, rejected before any remote call
	KindValidation Kind = "validation"
)

// Error is a failure tagged with its Kind and the operation that raised it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	b.WriteString(string(e.Kind))

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind, so callers can
// write errors.Is(err, ErrProvider) regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// sentinels for errors.Is
var (
	ErrConfiguration    = &Error{Kind: KindConfiguration}
	ErrProvider         = &Error{Kind: KindProvider}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrValidation       = &Error{Kind: KindValidation}
)

type ErrorInfo struct {
	category  string
	sanitized string
}
