package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/SAP-F-2025/toeic-session-service/internal/errors"
)

type answerRequest struct {
	Mode   string `json:"mode" validate:"required,session_mode"`
	Key    string `json:"key" validate:"required,question_key"`
	Letter string `json:"letter" validate:"required,answer_letter"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(answerRequest{Mode: "FINAL_TEST", Key: "12_3", Letter: "C"}))
}

func TestValidate_CustomTags(t *testing.T) {
	v := New()
	err := v.Validate(answerRequest{Mode: "QUIZ", Key: "12_", Letter: "cc"})
	require.Error(t, err)

	errs, ok := err.(apperrors.ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 3)

	byField := map[string]apperrors.ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "session_mode", byField["mode"].Rule)
	assert.Equal(t, "must be a valid session mode (LESSON, FINAL_TEST)", byField["mode"].Message)
	assert.Equal(t, "question_key", byField["key"].Rule)
	assert.Equal(t, "answer_letter", byField["letter"].Rule)
}

func TestValidate_Required(t *testing.T) {
	err := New().Validate(answerRequest{})
	errs, ok := err.(apperrors.ValidationErrors)
	require.True(t, ok)
	for _, e := range errs {
		assert.Equal(t, "required", e.Rule)
		assert.Equal(t, "is required", e.Message)
	}
}
