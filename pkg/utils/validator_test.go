package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidatorStruct(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(signup{Email: "a@b.co", Password: "secret1"}))

	err := v.Struct(signup{Email: "nope", Password: "123"})
	assert.Error(t, err)
	msg := FormatErrors(err)
	assert.Contains(t, msg, "Email must be a valid email")
	assert.Contains(t, msg, "Password must be at least 6")
}

func TestSupportedImage(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Var("image/png", "supported_image"))
	assert.NoError(t, v.Var("IMAGE/JPEG; charset=binary", "supported_image"))
	assert.Error(t, v.Var("application/pdf", "supported_image"))
	assert.Error(t, v.Var("", "supported_image"))
}
