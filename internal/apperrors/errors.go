package apperrors

import (
	"errors"
	"fmt"
	"time"
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeForbidden      = "FORBIDDEN"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
)

// NotFoundError reports a missing row, or one owned by another user.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

type ValidationError struct {
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(message string, details map[string]string) error {
	return &ValidationError{Message: message, Details: details}
}

type AuthenticationError struct{ Message string }

func (e *AuthenticationError) Error() string { return e.Message }

func Authentication(message string) error {
	return &AuthenticationError{Message: message}
}

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded, please try again later"
}

func RateLimit(retryAfter time.Duration) error {
	return &RateLimitError{RetryAfter: retryAfter}
}

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

func Conflict(message string) error {
	return &ConflictError{Message: message}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
