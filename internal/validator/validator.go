package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/toeic-session-service/internal/answers"
	apperrors "github.com/SAP-F-2025/toeic-session-service/internal/errors"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
)

// Validator wraps a validator.Validate with the service's custom tags registered.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags and returns the raw validator error.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and converts failures to ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("session_mode", validateSessionMode)
	validate.RegisterValidation("answer_letter", validateAnswerLetter)
	validate.RegisterValidation("question_key", validateQuestionKey)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateSessionMode(fl validator.FieldLevel) bool {
	return submit.Mode(fl.Field().String()).Valid()
}

func validateAnswerLetter(fl validator.FieldLevel) bool {
	return answers.Letter(fl.Field().String()).Valid()
}

func validateQuestionKey(fl validator.FieldLevel) bool {
	_, err := answers.ParseKey(fl.Field().String())
	return err == nil
}
