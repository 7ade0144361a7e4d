// Package api wires the HTTP surface: tenant auth, calendar event CRUD,
// connection management, and the on-demand sync trigger.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/GabeCabrera/aisle-board-sub002/internal/services"
)

type contextKey string

const tenantIDKey contextKey = "tenant_id"

type Handler struct {
	auth     *services.AuthService
	calendar *services.CalendarService
	sync     *services.SyncService
}

func NewHandler(auth *services.AuthService, calendar *services.CalendarService, sync *services.SyncService) *Handler {
	return &Handler{auth: auth, calendar: calendar, sync: sync}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Post("/auth/logout", h.logout)

			r.Route("/calendar", func(r chi.Router) {
				r.Post("/sync", h.synchronize)
				r.Get("/sync/log", h.syncHistory)

				r.Post("/connection", h.connect)
				r.Delete("/connection", h.disconnect)

				r.Route("/events", func(r chi.Router) {
					r.Get("/", h.listEvents)
					r.Post("/", h.createEvent)
					r.Get("/{eventID}", h.getEvent)
					r.Put("/{eventID}", h.updateEvent)
					r.Delete("/{eventID}", h.deleteEvent)
				})
			})
		})
	})

	return r
}

// requireAuth validates the bearer token and stashes the tenant id in the
// request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		claims, err := h.auth.VerifyToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), tenantIDKey, claims.TenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func tenantFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(tenantIDKey).(uuid.UUID)
	return id
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
