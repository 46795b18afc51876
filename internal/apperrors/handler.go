package apperrors

import (
	"errors"
	"log/slog"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Body struct {
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"statusCode"`
	Details    map[string]string `json:"details,omitempty"`
}

type Response struct {
	Error Body `json:"error"`
}

// Describe maps an error onto its HTTP status and response body.
func Describe(err error) Body {
	var (
		notFound   *NotFoundError
		validation *ValidationError
		authErr    *AuthenticationError
		forbidden  *ForbiddenError
		rateLimit  *RateLimitError
		conflict   *ConflictError
		fieldErrs  validator.ValidationErrors
		fiberErr   *fiber.Error
	)

	switch {
	case errors.As(err, &notFound):
		return Body{Message: notFound.Error(), Code: CodeNotFound, StatusCode: fiber.StatusNotFound}
	case errors.As(err, &validation):
		return Body{Message: validation.Message, Code: CodeValidation, StatusCode: fiber.StatusBadRequest, Details: validation.Details}
	case errors.As(err, &fieldErrs):
		return Body{Message: "Invalid request body", Code: CodeValidation, StatusCode: fiber.StatusBadRequest, Details: FieldDetails(fieldErrs)}
	case errors.As(err, &authErr):
		return Body{Message: authErr.Message, Code: CodeAuthentication, StatusCode: fiber.StatusUnauthorized}
	case errors.As(err, &forbidden):
		return Body{Message: forbidden.Message, Code: CodeForbidden, StatusCode: fiber.StatusForbidden}
	case errors.As(err, &rateLimit):
		return Body{Message: rateLimit.Error(), Code: CodeRateLimit, StatusCode: fiber.StatusTooManyRequests}
	case errors.As(err, &conflict):
		return Body{Message: conflict.Message, Code: CodeConflict, StatusCode: fiber.StatusConflict}
	case errors.As(err, &fiberErr):
		return Body{Message: fiberErr.Message, Code: codeForStatus(fiberErr.Code), StatusCode: fiberErr.Code}
	default:
		return Body{Message: err.Error(), Code: CodeInternal, StatusCode: fiber.StatusInternalServerError}
	}
}

// FieldDetails flattens validator errors into field -> rule.
func FieldDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details[fe.Field()] = rule
	}
	return details
}

// NewErrorHandler returns the Fiber ErrorHandler shared by every route.
func NewErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := Describe(err)

		if body.StatusCode >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}

		var rateLimit *RateLimitError
		if errors.As(err, &rateLimit) && rateLimit.RetryAfter > 0 {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(rateLimit.RetryAfter.Seconds()))))
		}

		return c.Status(body.StatusCode).JSON(Response{Error: body})
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return CodeValidation
	case fiber.StatusUnauthorized:
		return CodeAuthentication
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusTooManyRequests:
		return CodeRateLimit
	case fiber.StatusConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}
