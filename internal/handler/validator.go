package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "authgate/internal/errors"
)

// RequestValidator wraps go-playground/validator so Echo can call
// c.Validate(req). Failures come back as *apperrors.ValidationError with one
// FieldError per offending field, in struct declaration order, ready for the
// error boundary to render as a 400 envelope.
type RequestValidator struct {
	v *validator.Validate
}

// NewValidator returns a RequestValidator ready to be assigned to
// echo.Echo.Validator.
func NewValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate satisfies the echo.Validator interface.
func (rv *RequestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	fields := make([]apperrors.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, apperrors.FieldError{
			Type:     apperrors.TypeField,
			Msg:      fieldMessage(fe),
			Path:     fieldPath(fe),
			Location: "body",
		})
	}
	return &apperrors.ValidationError{Fields: fields}
}

// fieldPath returns the JSON-facing field name (lowerCamel, matching the
// request body keys).
func fieldPath(fe validator.FieldError) string {
	name := fe.Field()
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	path := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "email":
		return path + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", path, fe.Tag())
	}
}
