package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gdhanush27/Form-Pulse/internal/model"
	"github.com/gdhanush27/Form-Pulse/internal/response"
)

// timeoutCtx bounds session work triggered from a WebSocket message,
// which has no request context of its own.
func timeoutCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// sessionErrStatus maps a session error onto an HTTP status and error
// code. Shared by the REST and WebSocket surfaces.
func sessionErrStatus(err error) (int, response.ErrCode) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, response.ErrFormMalformed
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, response.ErrForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, response.ErrNotFound
	case errors.Is(err, model.ErrInvalidAnswer):
		return http.StatusBadRequest, response.ErrInvalidAnswer
	case errors.Is(err, model.ErrIncompleteSheet):
		return http.StatusBadRequest, response.ErrIncompleteAnswers
	case errors.Is(err, model.ErrFullscreenRequired):
		return http.StatusConflict, response.ErrFullscreenRequired
	case errors.Is(err, model.ErrSessionNotReady):
		return http.StatusConflict, response.ErrSessionNotReady
	case errors.Is(err, model.ErrAlreadySubmitted):
		return http.StatusConflict, response.ErrAlreadySubmitted
	case errors.Is(err, model.ErrSubmitPending):
		return http.StatusConflict, response.ErrSubmitPending
	case errors.Is(err, model.ErrSubmission):
		return http.StatusBadGateway, response.ErrSubmissionFailed
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// sessionErrCode is the WebSocket-side view of sessionErrStatus.
func sessionErrCode(err error) response.ErrCode {
	_, code := sessionErrStatus(err)
	return code
}
