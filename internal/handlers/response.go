package handlers

import (
	"errors"
	"net/http"
	"time"

	"cheflink/internal/apperror"
	"cheflink/internal/logger"
	"cheflink/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "internal server error, please try again later"

// Envelope is the body of every response. Successful responses carry Data,
// failed ones carry Error.
type Envelope struct {
	Success    bool       `json:"success"`
	Timestamp  string     `json:"timestamp"`
	StatusCode int        `json:"status_code,omitempty"`
	Message    string     `json:"message,omitempty"`
	Data       any        `json:"data,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func timestamp() string {
	return time.Now().In(models.StoreZone).Format(time.RFC3339)
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Success:    true,
		Timestamp:  timestamp(),
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success:   false,
		Timestamp: timestamp(),
		Error: &ErrorBody{
			Code:       code,
			Message:    message,
			StatusCode: status,
		},
	})
}

// respondError maps err onto exactly one envelope. Storage and unrecognised
// faults are logged in full and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = &apperror.Error{Kind: apperror.KindUnhandled, Message: internalErrorMessage, Err: err}
	}

	var evt *zerolog.Event
	switch appErr.Kind {
	case apperror.KindNotFound:
		evt = log.Info()
		respondFailure(c, http.StatusNotFound, "NOT_FOUND", appErr.Message)
	case apperror.KindValidation:
		evt = log.Warn()
		respondFailure(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", appErr.Message)
	case apperror.KindUnauthorized:
		evt = log.Warn()
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", appErr.Message)
	case apperror.KindConflict:
		evt = log.Warn().Err(appErr.Err)
		respondFailure(c, http.StatusConflict, "CONFLICT", appErr.Message)
	case apperror.KindBadRequest:
		evt = log.Error()
		respondFailure(c, http.StatusBadRequest, "BAD_REQUEST", appErr.Message)
	default:
		evt = log.Error().Err(err)
		respondFailure(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", internalErrorMessage)
	}
	evt.Str("request_id", logger.RequestID(c.Request.Context())).
		Str("path", c.Request.URL.Path).
		Str("kind", appErr.Kind.String()).
		Msg(appErr.Message)
}

// bindError turns a gin binding failure into a validation fault.
func bindError(err error) error {
	return apperror.FromValidator("invalid request payload: ", err)
}
