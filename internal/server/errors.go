package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentorlane/mentorlane/internal/billing/checkout"
	billingdomain "github.com/mentorlane/mentorlane/internal/billing/domain"
	mentorshipdomain "github.com/mentorlane/mentorlane/internal/mentorship/domain"
	filedomain "github.com/mentorlane/mentorlane/internal/mentorshipfile/domain"
	messagedomain "github.com/mentorlane/mentorlane/internal/message/domain"
	profiledomain "github.com/mentorlane/mentorlane/internal/profile/domain"
	qnadomain "github.com/mentorlane/mentorlane/internal/qna/domain"
	sessiondomain "github.com/mentorlane/mentorlane/internal/session/domain"
	subscriptiondomain "github.com/mentorlane/mentorlane/internal/subscription/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, subscriptiondomain.ErrAlreadySubscribed),
		errors.Is(err, checkout.ErrAlreadyBilled):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, checkout.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, profiledomain.ErrForbidden),
		errors.Is(err, subscriptiondomain.ErrForbidden),
		errors.Is(err, mentorshipdomain.ErrForbidden),
		errors.Is(err, sessiondomain.ErrForbidden),
		errors.Is(err, messagedomain.ErrForbidden),
		errors.Is(err, qnadomain.ErrForbidden),
		errors.Is(err, filedomain.ErrForbidden),
		errors.Is(err, checkout.ErrForbidden):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, profiledomain.ErrNotFound),
		errors.Is(err, subscriptiondomain.ErrNotFound),
		errors.Is(err, mentorshipdomain.ErrNotFound),
		errors.Is(err, sessiondomain.ErrNotFound),
		errors.Is(err, qnadomain.ErrNotFound),
		errors.Is(err, checkout.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, billingdomain.ErrMalformedEvent):
		return true
	}
	code := err.Error()
	if strings.HasPrefix(code, "invalid_") || strings.HasPrefix(code, "empty_") {
		return true
	}
	switch {
	case errors.Is(err, subscriptiondomain.ErrSelfSubscribe),
		errors.Is(err, subscriptiondomain.ErrMentorNotPriced),
		errors.Is(err, subscriptiondomain.ErrNotActive),
		errors.Is(err, subscriptiondomain.ErrNotCancelling),
		errors.Is(err, subscriptiondomain.ErrNoProviderRef):
		return true
	default:
		return false
	}
}

// classifyErrorForLog labels request errors for structured logs without
// leaking payload detail.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal", payload.Type
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "auth", payload.Type
	case status == http.StatusTooManyRequests:
		return "rate_limit", payload.Type
	default:
		return "client", payload.Type
	}
}
