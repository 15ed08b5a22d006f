package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gdhanush27/Form-Pulse/internal/middleware"
	"github.com/gdhanush27/Form-Pulse/internal/model"
	"github.com/gdhanush27/Form-Pulse/internal/response"
	"github.com/gdhanush27/Form-Pulse/internal/service"
	"github.com/gdhanush27/Form-Pulse/internal/session"
	ws "github.com/gdhanush27/Form-Pulse/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams proctoring signals and answers for a live session.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// connNotifier pushes session events to one WebSocket connection. Events
// originate on handler and monitor goroutines, so writes are serialized.
type connNotifier struct {
	mu   sync.Mutex
	conn *websocket.Conn
	log  zerolog.Logger
}

func (n *connNotifier) write(v interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := ws.WriteTyped(n.conn, v); err != nil {
		n.log.Debug().Err(err).Msg("Event write failed")
	}
}

func (n *connNotifier) ViolationWarning(count, remaining int) {
	n.write(ws.ViolationWarningResponse{Event: ws.EventViolationWarning, Count: count, Remaining: remaining})
}

func (n *connNotifier) FullscreenRequired() {
	n.write(ws.FullscreenRequiredResponse{Event: ws.EventFullscreenRequired})
}

func (n *connNotifier) Submitted(res model.SubmissionResult) {
	n.write(ws.SubmittedResponse{
		Event:         ws.EventSubmitted,
		MarksEarned:   res.MarksEarned,
		MaxMarks:      res.MaxMarks,
		AutoSubmitted: res.Auto,
	})
}

// SessionStream godoc
// WS /ws/v1/forms/:form_name/stream?token=...
// Upgrades to WebSocket for answers, proctoring signals, and live
// session events. The respondent must have joined the form first.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	formName := c.Param("form_name")
	ctrl, err := h.sessionService.Get(formName, claims.Email)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("form", formName).
		Str("respondent", claims.Email).
		Logger()

	notifier := &connNotifier{conn: conn, log: wsLog}
	ctrl.SetNotifier(notifier)
	defer ctrl.SetNotifier(nil)

	wsLog.Info().Msg("Respondent connected")

	for {
		var raw []byte
		conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		_, raw, err = conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var envelope ws.RequestEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			ws.WriteError(conn, string(response.ErrInvalidPayload), "malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, ctrl, raw)
		case ws.ActionVisibility:
			h.handleVisibility(conn, ctrl, raw)
		case ws.ActionFullscreen:
			h.handleFullscreen(conn, ctrl, raw)
		case ws.ActionSubmit:
			h.handleSubmit(conn, ctrl, claims)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(envelope.Action))
		}
	}
}

func (h *WSHandler) handleAnswer(conn *websocket.Conn, ctrl *session.Controller, raw []byte) {
	var req ws.AnswerRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		ws.WriteError(conn, string(response.ErrInvalidPayload), "malformed answer")
		return
	}

	ctx, cancel := timeoutCtx()
	defer cancel()

	if err := h.sessionService.Answer(ctx, ctrl, req.Index, req.Value); err != nil {
		writeSessionError(conn, err)
		return
	}
	ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, Index: req.Index})
}

func (h *WSHandler) handleVisibility(conn *websocket.Conn, ctrl *session.Controller, raw []byte) {
	var req ws.VisibilityRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		ws.WriteError(conn, string(response.ErrInvalidPayload), "malformed visibility signal")
		return
	}
	ctrl.VisibilityChanged(req.Hidden)
}

func (h *WSHandler) handleFullscreen(conn *websocket.Conn, ctrl *session.Controller, raw []byte) {
	var req ws.FullscreenRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		ws.WriteError(conn, string(response.ErrInvalidPayload), "malformed fullscreen signal")
		return
	}
	ctrl.FullscreenChanged(req.Active)
}

// handleSubmit finalizes the session. The submitted event itself is
// emitted through the notifier, so only failures are written here.
func (h *WSHandler) handleSubmit(conn *websocket.Conn, ctrl *session.Controller, claims *service.Claims) {
	ctx, cancel := timeoutCtx()
	defer cancel()

	if _, err := h.sessionService.Submit(ctx, ctrl, claims); err != nil {
		writeSessionError(conn, err)
	}
}

func writeSessionError(conn *websocket.Conn, err error) {
	code := sessionErrCode(err)
	ws.WriteError(conn, string(code), response.GetMessage(code))
}
