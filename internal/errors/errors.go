package errors

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that already
	// has a user. Reported to clients as a 400, not a 409 (API contract).
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when a refresh token is missing,
	// expired, revoked, or fails signature verification.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned when the caller's role does not allow the operation.
	ErrForbidden = errors.New("forbidden")
)

// Error type labels carried in the response envelope.
const (
	TypeField        = "field"
	TypeConflict     = "conflict"
	TypeUnauthorized = "unauthorized"
	TypeForbidden    = "forbidden"
	TypeNotFound     = "not_found"
	TypeInternal     = "internal"
)

// FieldError is one displayable error inside the envelope.
type FieldError struct {
	Type     string `json:"type"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Location string `json:"location"`
}

// Envelope is the canonical error body for every non-2xx response:
// {"errors": [{type, msg, path, location}, ...]}, always length >= 1.
type Envelope struct {
	Errors []FieldError `json:"errors"`
}

// NewEnvelope wraps a single error into an envelope.
func NewEnvelope(typ, msg, path string) Envelope {
	return Envelope{Errors: []FieldError{{
		Type:     typ,
		Msg:      msg,
		Path:     path,
		Location: "body",
	}}}
}

// ValidationError carries the ordered field errors produced by request
// validation. It satisfies error so handlers can return it and let the
// HTTP error boundary render the 400 envelope.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Msg
}

// Envelope returns the response body for this validation failure.
func (e *ValidationError) Envelope() Envelope {
	return Envelope{Errors: e.Fields}
}
