package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/gdhanush27/Form-Pulse/internal/repository"
	"github.com/gdhanush27/Form-Pulse/internal/response"
	"github.com/gdhanush27/Form-Pulse/internal/service"
)

// AdminHandler exposes the proctoring audit trail to operators.
type AdminHandler struct {
	eventRepo      *repository.EventRepository
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(eventRepo *repository.EventRepository, sessionService *service.SessionService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		eventRepo:      eventRepo,
		sessionService: sessionService,
		log:            log.With().Str("component", "admin_handler").Logger(),
	}
}

// Status godoc
// GET /api/v1/admin/status
// Reports live gateway state.
func (h *AdminHandler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"live_sessions": h.sessionService.LiveCount(),
	})
}

// ListViolations godoc
// GET /api/v1/admin/forms/:form_name/violations
// Returns the persisted violation trail for a form, newest first.
func (h *AdminHandler) ListViolations(c *gin.Context) {
	page, perPage := paginationParams(c)

	events, total, err := h.eventRepo.ListViolations(c.Request.Context(), c.Param("form_name"), perPage, (page-1)*perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("List violations failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"violations": events},
		buildPagination(page, perPage, total))
}

// ListSubmissions godoc
// GET /api/v1/admin/forms/:form_name/submissions
// Returns the persisted submission audit for a form, newest first.
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	page, perPage := paginationParams(c)

	audits, total, err := h.eventRepo.ListSubmissions(c.Request.Context(), c.Param("form_name"), perPage, (page-1)*perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("List submissions failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"submissions": audits},
		buildPagination(page, perPage, total))
}

// GetSubmission godoc
// GET /api/v1/admin/forms/:form_name/submissions/:email
// Returns one respondent's submission audit.
func (h *AdminHandler) GetSubmission(c *gin.Context) {
	audit, err := h.eventRepo.GetSubmission(c.Request.Context(), c.Param("form_name"), c.Param("email"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Get submission failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": audit})
}

func paginationParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "25"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}
	return page, perPage
}

func buildPagination(page, perPage, total int) *response.Pagination {
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	return &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
