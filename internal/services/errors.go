package services

import (
	"errors"
	"fmt"

	apperrors "github.com/fieldscope/survey-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Survey specific errors
	ErrSurveyNotFound       = errors.New("survey not found")
	ErrSurveyNotEditable    = errors.New("survey cannot be edited in current status")
	ErrSurveyNotDeletable   = errors.New("survey cannot be deleted - has existing responses")
	ErrSurveyInvalidStatus  = errors.New("invalid survey status transition")
	ErrSurveyDuplicateTitle = errors.New("survey title already exists in this project")
	ErrSurveyNotPublished   = errors.New("survey is not published")
	ErrSurveyClosed         = errors.New("survey is closed to new responses")

	// Section/question errors
	ErrSectionNotFound      = errors.New("section not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrQuestionInvalidType  = errors.New("invalid question type")
	ErrInvalidLogicConfig   = errors.New("invalid skip or display logic configuration")
	ErrQuestionOrderInvalid = errors.New("question order list does not match section contents")

	// Response specific errors
	ErrResponseNotFound   = errors.New("response not found")
	ErrResponseNotActive  = errors.New("response is not in progress")
	ErrResponseCompleted  = errors.New("response already completed")
	ErrAnswerTypeMismatch = errors.New("answer value does not fit the question type")

	// Sync errors
	ErrSyncBatchEmpty    = errors.New("sync batch contains no items")
	ErrSyncBatchTooLarge = errors.New("sync batch exceeds the maximum item count")

	// Organization errors
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrZoneNotFound         = errors.New("zone not found")
	ErrSurveyorNotFound     = errors.New("surveyor not found")
	ErrSurveyorExists       = errors.New("surveyor already assigned to this zone")
	ErrDuplicateSlug        = errors.New("organization slug already exists")

	// User/permission errors
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidRole             = errors.New("invalid user role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
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

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrOrganizationNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrZoneNotFound) ||
		errors.Is(err, ErrSurveyorNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInsufficientPermissions) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var single *apperrors.ValidationError
	if errors.As(err, &single) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSurveyNotDeletable) ||
		errors.Is(err, ErrSurveyDuplicateTitle) ||
		errors.Is(err, ErrSurveyorExists) ||
		errors.Is(err, ErrDuplicateSlug) ||
		errors.Is(err, ErrResponseCompleted)
}
