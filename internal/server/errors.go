package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/moimlab/moim/internal/account/domain"
	donationdomain "github.com/moimlab/moim/internal/donation/domain"
	meetingdomain "github.com/moimlab/moim/internal/meeting/domain"
	notificationdomain "github.com/moimlab/moim/internal/notification/domain"
	petdomain "github.com/moimlab/moim/internal/pet/domain"
	submissiondomain "github.com/moimlab/moim/internal/submission/domain"
	verificationdomain "github.com/moimlab/moim/internal/verification/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
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
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, accountdomain.ErrInvalidEmail),
		errors.Is(err, accountdomain.ErrInvalidUsername),
		errors.Is(err, accountdomain.ErrInvalidID),
		errors.Is(err, meetingdomain.ErrInvalidID),
		errors.Is(err, meetingdomain.ErrInvalidTitle),
		errors.Is(err, meetingdomain.ErrInvalidUser),
		errors.Is(err, submissiondomain.ErrInvalidID),
		errors.Is(err, submissiondomain.ErrInvalidMedia),
		errors.Is(err, submissiondomain.ErrInvalidUser),
		errors.Is(err, verificationdomain.ErrInvalidID),
		errors.Is(err, verificationdomain.ErrInvalidAdmin),
		errors.Is(err, petdomain.ErrInvalidID),
		errors.Is(err, petdomain.ErrInvalidUser),
		errors.Is(err, petdomain.ErrInvalidPetType),
		errors.Is(err, petdomain.ErrLevelTooLow),
		errors.Is(err, petdomain.ErrInsufficientPoints),
		errors.Is(err, notificationdomain.ErrInvalidID),
		errors.Is(err, notificationdomain.ErrInvalidUser),
		errors.Is(err, donationdomain.ErrInvalidID),
		errors.Is(err, donationdomain.ErrInvalidTitle),
		errors.Is(err, donationdomain.ErrInvalidGoal):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, accountdomain.ErrDuplicateUser),
		errors.Is(err, meetingdomain.ErrAlreadyJoined),
		errors.Is(err, meetingdomain.ErrMeetingFull),
		errors.Is(err, submissiondomain.ErrActiveSubmission),
		errors.Is(err, petdomain.ErrAlreadyOwned),
		errors.Is(err, petdomain.ErrPetAlreadySelected),
		errors.Is(err, verificationdomain.ErrAlreadyProcessed):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, meetingdomain.ErrNotFound),
		errors.Is(err, submissiondomain.ErrNotFound),
		errors.Is(err, verificationdomain.ErrNotFound),
		errors.Is(err, petdomain.ErrPetNotFound),
		errors.Is(err, petdomain.ErrItemNotFound),
		errors.Is(err, petdomain.ErrNotOwned),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, donationdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
