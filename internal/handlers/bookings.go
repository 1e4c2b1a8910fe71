package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"tour-booking/internal/models"
	"tour-booking/internal/service"
)

// partySize accepts a JSON number or a numeric string.
// Anything that is not a whole number decodes to 0 and fails validation later.
type partySize int

func (p *partySize) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	*p = 0
	if n, err := strconv.Atoi(raw); err == nil {
		*p = partySize(n)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		*p = partySize(f)
	}
	return nil
}

type bookingRequest struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	NumberOfPeople partySize `json:"numberOfPeople"`
	TourID         string    `json:"tourId"`
	Date           string    `json:"date"`
}

type bookingResponse struct {
	Message string          `json:"message"`
	Booking *models.Booking `json:"booking"`
}

// CreateBooking books a tour for the caller.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	b, err := h.bookings.Create(r.Context(), GetIdentityFromContext(r), service.BookingInput{
		Name:           req.Name,
		Email:          req.Email,
		NumberOfPeople: int(req.NumberOfPeople),
		TourID:         req.TourID,
		Date:           req.Date,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse{Message: "Booking created successfully", Booking: b})
}

// MyBookings lists the caller's bookings.
func (h *Handlers) MyBookings(w http.ResponseWriter, r *http.Request) {
	views, err := h.bookings.ListMine(r.Context(), GetIdentityFromContext(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// ListBookings lists every booking. Admin only.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	views, err := h.bookings.ListAll(r.Context(), GetIdentityFromContext(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// GetBooking returns one booking to its owner or an admin.
func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	v, err := h.bookings.Get(r.Context(), GetIdentityFromContext(r), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// UpdateBooking changes a booking. Owner only.
func (h *Handlers) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	b, err := h.bookings.Update(r.Context(), GetIdentityFromContext(r), r.PathValue("id"), service.BookingUpdate{
		Name:           req.Name,
		Email:          req.Email,
		NumberOfPeople: int(req.NumberOfPeople),
		Date:           req.Date,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Message: "Booking updated successfully", Booking: b})
}

// DeleteBooking removes a booking for its owner or an admin.
func (h *Handlers) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.bookings.Delete(r.Context(), GetIdentityFromContext(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Booking deleted successfully"})
}
