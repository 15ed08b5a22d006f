package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gdhanush27/Form-Pulse/internal/middleware"
	"github.com/gdhanush27/Form-Pulse/internal/model"
	"github.com/gdhanush27/Form-Pulse/internal/response"
	"github.com/gdhanush27/Form-Pulse/internal/service"
	"github.com/gdhanush27/Form-Pulse/internal/validator"
)

// PortalHandler handles respondent-facing endpoints (joining a form,
// answering, submitting).
type PortalHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(sessionService *service.SessionService, log zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "portal_handler").Logger(),
	}
}

// JoinSession godoc
// POST /api/v1/forms/:form_name/session
// Creates or resumes the respondent's session on a form (idempotent).
func (h *PortalHandler) JoinSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.BeginSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctrl, err := h.sessionService.Join(c.Request.Context(), c.Param("form_name"), claims, req.FullscreenActive)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": ctrl.Snapshot()})
}

// GetSession godoc
// GET /api/v1/forms/:form_name/session
// Returns the current session snapshot.
func (h *PortalHandler) GetSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	ctrl, err := h.sessionService.Get(c.Param("form_name"), claims.Email)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": ctrl.Snapshot()})
}

// Answer godoc
// POST /api/v1/forms/:form_name/answers
// Records a single answer. REST fallback for the WebSocket stream.
func (h *PortalHandler) Answer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ctrl, err := h.sessionService.Get(c.Param("form_name"), claims.Email)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	if err := h.sessionService.Answer(c.Request.Context(), ctrl, req.Index, req.Value); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"index": req.Index})
}

// Submit godoc
// POST /api/v1/forms/:form_name/submit
// Finalizes the session. Safe to retry: a completed session returns
// its stored result.
func (h *PortalHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	ctrl, err := h.sessionService.Get(c.Param("form_name"), claims.Email)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), ctrl, claims)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result, "session": ctrl.Snapshot()})
}

// failSessionError maps session errors onto the response envelope.
func (h *PortalHandler) failSessionError(c *gin.Context, err error) {
	status, code := sessionErrStatus(err)
	if code == response.ErrInternal {
		h.log.Error().Err(err).Msg("Unhandled session error")
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		response.FailWithMessage(c, status, code, verr.Error())
		return
	}
	response.Fail(c, status, code)
}
