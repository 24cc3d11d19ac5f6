package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/robotics-league/internal/auth"
	"github.com/sakif/robotics-league/internal/service"
	"github.com/sakif/robotics-league/internal/storage"
	"github.com/sakif/robotics-league/internal/websocket"
)

// NotificationHandler exposes the browser's notification log and its live feed.
type NotificationHandler struct {
	notes   *service.NotificationLog
	backend storage.Backend
	hub     *websocket.Hub
	logger  *slog.Logger
}

// NewNotificationHandler creates a NotificationHandler. hub may be nil, in
// which case the live feed answers 503.
func NewNotificationHandler(notes *service.NotificationLog, backend storage.Backend, hub *websocket.Hub, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notes: notes, backend: backend, hub: hub, logger: logger}
}

// HandleList returns the log, newest first.
//
// HTTP: GET /api/notifications
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.notes.List(r.Context(), local)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleMarkAllRead flags every entry read.
//
// HTTP: POST /api/notifications/read
func (h *NotificationHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.notes.MarkAllRead(r.Context(), local); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkRead flags one entry read.
//
// HTTP: POST /api/notifications/{id}/read
func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	local, err := profileStore(r, h.backend)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.notes.MarkRead(r.Context(), local, chiParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStream upgrades to a websocket that receives new notifications
// for this browser as they are recorded.
//
// HTTP: GET /api/notifications/ws
func (h *NotificationHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "live notifications are disabled",
		})
		return
	}
	profileID, ok := auth.ProfileIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}
	websocket.ServeWs(h.hub, profileID, h.logger, w, r)
}
