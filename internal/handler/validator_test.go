package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "authgate/internal/errors"
)

func TestValidator_ReportsFieldsInDeclarationOrder(t *testing.T) {
	rv := NewValidator()

	req := RegisterRequest{} // everything missing
	err := rv.Validate(&req)
	assert.Error(t, err)

	var ve *apperrors.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 4)

	paths := make([]string, 0, len(ve.Fields))
	for _, fe := range ve.Fields {
		paths = append(paths, fe.Path)
		assert.Equal(t, apperrors.TypeField, fe.Type)
		assert.Equal(t, "body", fe.Location)
		assert.NotEmpty(t, fe.Msg)
	}
	assert.Equal(t, []string{"firstName", "lastName", "email", "password"}, paths)
}

func TestValidator_EmailShapeAndPasswordLength(t *testing.T) {
	rv := NewValidator()

	req := RegisterRequest{
		FirstName: "Shiva",
		LastName:  "Pal",
		Email:     "not-an-email",
		Password:  "short",
	}
	err := rv.Validate(&req)

	var ve *apperrors.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 2)
	assert.Equal(t, "email", ve.Fields[0].Path)
	assert.Equal(t, "email must be a valid email", ve.Fields[0].Msg)
	assert.Equal(t, "password", ve.Fields[1].Path)
	assert.Equal(t, "password must be at least 8 characters", ve.Fields[1].Msg)
}

func TestValidator_AcceptsValidRequest(t *testing.T) {
	rv := NewValidator()

	req := RegisterRequest{
		FirstName: "Shiva",
		LastName:  "Pal",
		Email:     "shivapal108941@gmail.com",
		Password:  "secret@1234",
	}
	assert.NoError(t, rv.Validate(&req))
}

func TestRegisterRequest_NormalizeTrimsAndLowercases(t *testing.T) {
	req := RegisterRequest{
		FirstName: "  Shiva ",
		LastName:  " Pal ",
		Email:     "  Shivapal108941@Gmail.com  ",
		Password:  " secret@1234 ",
	}
	req.normalize()

	assert.Equal(t, "Shiva", req.FirstName)
	assert.Equal(t, "Pal", req.LastName)
	assert.Equal(t, "shivapal108941@gmail.com", req.Email)
	assert.Equal(t, "secret@1234", req.Password)
}

func TestRegisterRequest_WhitespaceOnlyFieldFailsRequired(t *testing.T) {
	rv := NewValidator()

	req := RegisterRequest{
		FirstName: "   ",
		LastName:  "Pal",
		Email:     "a@example.com",
		Password:  "secret@1234",
	}
	req.normalize()
	err := rv.Validate(&req)

	var ve *apperrors.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "firstName", ve.Fields[0].Path)
	assert.Equal(t, "firstName is required", ve.Fields[0].Msg)
}
