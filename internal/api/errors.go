package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lexireef/studyhall-api/internal/domain"
	"github.com/lexireef/studyhall-api/internal/service/review"
	"github.com/lexireef/studyhall-api/internal/service/selection"
	"github.com/lexireef/studyhall-api/internal/service/session"
	"github.com/lexireef/studyhall-api/internal/service/stats"
	"github.com/lexireef/studyhall-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authorization errors
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Terminal session states
	case errors.Is(err, session.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict

	// Concurrency conflicts
	case errors.Is(err, session.ErrConflict),
		errors.Is(err, review.ErrConflict),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidSessionType),
		errors.Is(err, domain.ErrInvalidStudyMode),
		errors.Is(err, domain.ErrInvalidMaxCards),
		errors.Is(err, domain.ErrInvalidTimeLimit),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, session.ErrCardMismatch),
		errors.Is(err, selection.ErrEmptyDeck),
		errors.Is(err, stats.ErrInvalidWindow),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrItemNotFound):
		return "Vocabulary item not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, session.ErrSessionExpired):
		return "Session has expired"

	case errors.Is(err, session.ErrSessionClosed):
		return "Session is already closed"

	case errors.Is(err, session.ErrConflict),
		errors.Is(err, review.ErrConflict),
		errors.Is(err, store.ErrConflict):
		return "The resource was modified concurrently, please retry"

	case errors.Is(err, session.ErrCardMismatch):
		return "Submitted item does not match the current card"

	case errors.Is(err, selection.ErrEmptyDeck):
		return "No vocabulary items match the requested filters"

	case errors.Is(err, stats.ErrInvalidWindow):
		return "Window must be a positive number of days"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Unknown difficulty rating"

	case errors.Is(err, domain.ErrInvalidSessionType):
		return "Unknown session type"

	case errors.Is(err, domain.ErrInvalidStudyMode):
		return "Unknown study mode"

	case errors.Is(err, domain.ErrInvalidMaxCards):
		return "maxCards must be greater than 0"

	case errors.Is(err, domain.ErrInvalidTimeLimit):
		return "timeLimitMinutes cannot be negative"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing internal struct names back to the client.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Format: "Key: 'CreateSessionRequest.StudyMode' Error:Field
		// validation for 'StudyMode' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "max":
		return "value is too long"
	case "gte", "gt":
		return "value is too small"
	case "lte", "lt":
		return "value is too large"
	case "oneof":
		return "value is not one of the allowed options"
	default:
		return "invalid value"
	}
}

// HandleAPIError writes the standard error response for an internal error.
// An empty override uses the error's safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, override string) {
	message := override
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), message, err)
}
