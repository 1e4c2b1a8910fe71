package handlers

import (
	"net/http"

	"tour-booking/internal/models"
	"tour-booking/internal/service"
)

// ListTours returns the whole catalog.
func (h *Handlers) ListTours(w http.ResponseWriter, r *http.Request) {
	tours, err := h.tours.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tours)
}

// GetTour returns one tour.
func (h *Handlers) GetTour(w http.ResponseWriter, r *http.Request) {
	tour, err := h.tours.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tour)
}

// CreateTour adds a tour. Admin only.
func (h *Handlers) CreateTour(w http.ResponseWriter, r *http.Request) {
	var in service.TourInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	tour, err := h.tours.Create(r.Context(), GetIdentityFromContext(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tour)
}

// UpdateTour merges the supplied fields into a tour. Admin only.
func (h *Handlers) UpdateTour(w http.ResponseWriter, r *http.Request) {
	var patch models.TourPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	tour, err := h.tours.Update(r.Context(), GetIdentityFromContext(r), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tour)
}

// DeleteTour removes a tour. Admin only.
func (h *Handlers) DeleteTour(w http.ResponseWriter, r *http.Request) {
	if err := h.tours.Delete(r.Context(), GetIdentityFromContext(r), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Tour deleted successfully"})
}
