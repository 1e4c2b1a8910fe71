package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tour-booking/internal/apperr"
	"tour-booking/internal/models"
	"tour-booking/internal/service"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// IdentityContextKey is the context key for the authenticated caller.
	IdentityContextKey contextKey = "identity"

	maxBodyBytes  = 1 << 20
	healthTimeout = 2 * time.Second
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	auth     *service.AuthService
	tours    *service.TourService
	bookings *service.BookingService
	store    Pinger
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authSvc *service.AuthService, tours *service.TourService, bookings *service.BookingService, store Pinger, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		auth:     authSvc,
		tours:    tours,
		bookings: bookings,
		store:    store,
		logger:   logger,
	}
}

// RegisterRoutes mounts the API routes on mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.Handle("GET /auth/me", h.AuthMiddleware(http.HandlerFunc(h.Me)))

	mux.HandleFunc("GET /tours", h.ListTours)
	mux.HandleFunc("GET /tours/{id}", h.GetTour)
	mux.Handle("POST /tours", h.adminOnly(h.CreateTour))
	mux.Handle("PUT /tours/{id}", h.adminOnly(h.UpdateTour))
	mux.Handle("DELETE /tours/{id}", h.adminOnly(h.DeleteTour))

	mux.Handle("POST /bookings", h.signedIn(h.CreateBooking))
	mux.Handle("GET /bookings/my", h.signedIn(h.MyBookings))
	mux.Handle("GET /bookings", h.adminOnly(h.ListBookings))
	mux.Handle("GET /bookings/{id}", h.signedIn(h.GetBooking))
	mux.Handle("PUT /bookings/{id}", h.signedIn(h.UpdateBooking))
	mux.Handle("DELETE /bookings/{id}", h.signedIn(h.DeleteBooking))
}

// GetIdentityFromContext retrieves the authenticated caller from request context.
func GetIdentityFromContext(r *http.Request) *models.Identity {
	if id, ok := r.Context().Value(IdentityContextKey).(*models.Identity); ok {
		return id
	}
	return nil
}

// AuthMiddleware wraps handlers to require a valid bearer token whose subject
// still exists. The stored identity is attached to the request context.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), IdentityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly rejects callers without the admin role. It must run after AuthMiddleware.
func (h *Handlers) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := service.RequireAdmin(GetIdentityFromContext(r)); err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) signedIn(fn http.HandlerFunc) http.Handler {
	return h.AuthMiddleware(fn)
}

func (h *Handlers) adminOnly(fn http.HandlerFunc) http.Handler {
	return h.AuthMiddleware(h.AdminOnly(fn))
}

// Health reports 200 while the store answers a ping and 503 otherwise.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, messageResponse{Message: apperr.Message(err)})
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched
// so that missing-field validation reports the real problem.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("Invalid request body")
	}
	return nil
}
