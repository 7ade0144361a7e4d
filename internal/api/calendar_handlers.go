package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GabeCabrera/aisle-board-sub002/internal/models"
	"github.com/GabeCabrera/aisle-board-sub002/internal/repositories"
	"github.com/GabeCabrera/aisle-board-sub002/internal/services"
)

type eventRequest struct {
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	StartTime   time.Time            `json:"start_time"`
	EndTime     *time.Time           `json:"end_time"`
	AllDay      bool                 `json:"all_day"`
	Location    *string              `json:"location"`
	Category    models.EventCategory `json:"category"`
	Color       *string              `json:"color"`
	VendorID    *uuid.UUID           `json:"vendor_id"`
	TaskID      *uuid.UUID           `json:"task_id"`
}

type connectRequest struct {
	CalendarID     string    `json:"calendar_id"`
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
}

func (req *eventRequest) toModel(tenantID uuid.UUID) *models.CalendarEvent {
	return &models.CalendarEvent{
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AllDay:      req.AllDay,
		Location:    req.Location,
		Category:    req.Category,
		Color:       req.Color,
		VendorID:    req.VendorID,
		TaskID:      req.TaskID,
	}
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event := req.toModel(tenantID)
	if err := h.calendar.CreateEvent(r.Context(), event); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.calendar.GetEvent(r.Context(), tenantID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load event")
		return
	}

	respondJSON(w, http.StatusOK, event)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())

	events, err := h.calendar.ListEvents(r.Context(), tenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event := req.toModel(tenantID)
	event.ID = id
	err = h.calendar.UpdateEvent(r.Context(), event)
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, event)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	err = h.calendar.DeleteEvent(r.Context(), tenantID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(w, http.StatusNotFound, "event not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CalendarID == "" || req.AccessToken == "" || req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "calendar_id, access_token and refresh_token are required")
		return
	}

	conn := &models.CalendarConnection{
		TenantID:       tenantID,
		CalendarID:     req.CalendarID,
		AccessToken:    req.AccessToken,
		RefreshToken:   req.RefreshToken,
		TokenExpiresAt: req.TokenExpiresAt,
	}
	err := h.calendar.Connect(r.Context(), conn)
	if errors.Is(err, services.ErrAlreadyConnected) {
		respondError(w, http.StatusConflict, "calendar already connected")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to connect calendar")
		return
	}

	respondJSON(w, http.StatusCreated, conn)
}

func (h *Handler) disconnect(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())

	err := h.calendar.Disconnect(r.Context(), tenantID)
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no calendar connected")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to disconnect calendar")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "disconnected"})
}

func (h *Handler) synchronize(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())

	result, err := h.sync.Synchronize(r.Context(), tenantID)
	switch {
	case errors.Is(err, services.ErrNotConnected):
		respondError(w, http.StatusPreconditionFailed, "no sync-enabled calendar connection")
		return
	case errors.Is(err, services.ErrSyncInProgress):
		respondError(w, http.StatusConflict, "a sync pass is already running")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "sync failed to start")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) syncHistory(w http.ResponseWriter, r *http.Request) {
	tenantID := tenantFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.calendar.SyncHistory(r.Context(), tenantID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load sync history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}
