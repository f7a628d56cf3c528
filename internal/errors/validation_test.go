package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("test_field", "test message", "test_value")

	assert.Equal(t, "test_field", err.Field)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, "test_value", err.Value)
	assert.Equal(t, "validation error on field 'test_field': test message", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("field1", "message1", nil))
	assert.Equal(t, "validation failed: field1 message1", errs.Error())

	errs = append(errs, *NewValidationError("field2", "message2", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("test_field", "test message", "required", "test_value")

	assert.Equal(t, "required", err.Rule)
	assert.Equal(t, "test_field", err.Field)
}

func TestToValidationErrors(t *testing.T) {
	type request struct {
		Mode    string `validate:"required"`
		Seconds int    `validate:"gte=1"`
		Letter  string `validate:"oneof=A B C D"`
	}

	err := validator.New().Struct(request{Seconds: 0, Letter: "E"})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 3)
	assert.Equal(t, ValidationError{Field: "Mode", Message: "is required", Value: "", Rule: "required"}, errs[0])
	assert.Equal(t, "must be at least 1", errs[1].Message)
	assert.Equal(t, "must be one of: A B C D", errs[2].Message)

	assert.Empty(t, ToValidationErrors(fmt.Errorf("not a validator error")))
}
