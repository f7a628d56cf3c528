package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/toeic-session-service/internal/answers"
	apperrors "github.com/SAP-F-2025/toeic-session-service/internal/errors"
	"github.com/SAP-F-2025/toeic-session-service/internal/session"
	"github.com/SAP-F-2025/toeic-session-service/internal/submit"
	"github.com/SAP-F-2025/toeic-session-service/internal/timer"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Journey specific errors
	ErrJourneyNotFound   = errors.New("journey not found")
	ErrStageNotFound     = errors.New("stage not found")
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrFinalTestNotFound = errors.New("final test not found")
	ErrJourneyNotOwned   = errors.New("journey belongs to another learner")
	ErrStageLocked       = errors.New("stage is locked")

	// Session specific errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionAccessDenied = errors.New("access denied to session")
	ErrSessionNotFinished  = errors.New("session has not been submitted")
	ErrSessionFinished     = errors.New("session already finished")
	ErrNoQuestions         = errors.New("no questions available")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return apperrors.NewValidationErrorWithRule(field, message, rule, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrJourneyNotFound) ||
		errors.Is(err, ErrStageNotFound) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrFinalTestNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrJourneyNotOwned) ||
		errors.Is(err, ErrSessionAccessDenied)
}

// IsValidation checks if error represents a validation failure, including
// malformed input rejected by the session core.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, answers.ErrInvalidLetter) ||
		errors.Is(err, answers.ErrInvalidKey) ||
		errors.Is(err, answers.ErrForeignAnswer) ||
		errors.Is(err, session.ErrOutOfRange) ||
		errors.Is(err, timer.ErrInvalidBonus) ||
		errors.Is(err, timer.ErrNegativeDuration) ||
		errors.Is(err, submit.ErrUnknownMode) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict covers actions that are illegal in the session's current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionFinished) ||
		errors.Is(err, ErrSessionNotFinished) ||
		errors.Is(err, ErrStageLocked) ||
		errors.Is(err, session.ErrFinished) ||
		errors.Is(err, session.ErrNotStarted) ||
		errors.Is(err, session.ErrUntimed) ||
		errors.Is(err, session.ErrNotFinalized) ||
		errors.Is(err, session.ErrTimeUp) ||
		errors.Is(err, answers.ErrReviewMode) ||
		errors.Is(err, submit.ErrDisabled) ||
		errors.Is(err, submit.ErrAlreadyDone) ||
		errors.Is(err, submit.ErrNotConfirming)
}
