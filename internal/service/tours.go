package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"tour-booking/internal/apperr"
	"tour-booking/internal/models"
	"tour-booking/internal/storage"
)

// TourInput is the payload of a tour creation.
type TourInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// TourService manages the tour catalog. Reads are public; writes require an admin.
type TourService struct {
	tours  TourStore
	logger *slog.Logger
	now    func() time.Time
}

// NewTourService creates a TourService.
func NewTourService(tours TourStore, logger *slog.Logger) *TourService {
	return &TourService{tours: tours, logger: resolveLogger(logger), now: time.Now}
}

// List returns every tour.
func (s *TourService) List(ctx context.Context) ([]models.Tour, error) {
	tours, err := s.tours.ListTours(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tours, nil
}

// Get returns one tour. Malformed and unknown ids are both not found.
func (s *TourService) Get(ctx context.Context, id string) (*models.Tour, error) {
	return s.load(ctx, id)
}

// Create adds a tour to the catalog.
func (s *TourService) Create(ctx context.Context, caller *models.Identity, in TourInput) (*models.Tour, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}

	t := &models.Tour{
		ID:          models.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		CreatedAt:   s.now().UTC(),
	}
	if err := validateTour(t); err != nil {
		return nil, err
	}
	if err := s.tours.CreateTour(ctx, t); err != nil {
		return nil, apperr.Internal(err)
	}

	s.logger.Info("tour created", "event", "tour_created", "tour_id", t.ID, "admin_id", caller.ID)
	return t, nil
}

// Update merges the supplied fields into an existing tour.
func (s *TourService) Update(ctx context.Context, caller *models.Identity, id string, patch models.TourPatch) (*models.Tour, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(t)
	t.Title = strings.TrimSpace(t.Title)
	t.Image = strings.TrimSpace(t.Image)
	if err := validateTour(t); err != nil {
		return nil, err
	}

	if err := s.tours.UpdateTour(ctx, t); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("Tour not found")
		}
		return nil, apperr.Internal(err)
	}

	s.logger.Info("tour updated", "event", "tour_updated", "tour_id", t.ID, "admin_id", caller.ID)
	return t, nil
}

// Delete removes a tour. Bookings referencing it keep a dangling reference.
func (s *TourService) Delete(ctx context.Context, caller *models.Identity, id string) error {
	if err := RequireAdmin(caller); err != nil {
		return err
	}

	canonical, ok := models.CanonicalID(id)
	if !ok {
		return apperr.NotFound("Tour not found")
	}
	if err := s.tours.DeleteTour(ctx, canonical); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("Tour not found")
		}
		return apperr.Internal(err)
	}

	s.logger.Info("tour deleted", "event", "tour_deleted", "tour_id", canonical, "admin_id", caller.ID)
	return nil
}

func (s *TourService) load(ctx context.Context, id string) (*models.Tour, error) {
	canonical, ok := models.CanonicalID(id)
	if !ok {
		return nil, apperr.NotFound("Tour not found")
	}
	t, err := s.tours.GetTour(ctx, canonical)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("Tour not found")
		}
		return nil, apperr.Internal(err)
	}
	return t, nil
}

func validateTour(t *models.Tour) error {
	if t.Title == "" {
		return apperr.Validation("Tour title is required")
	}
	if t.Price < 0 || math.IsNaN(t.Price) || math.IsInf(t.Price, 0) {
		return apperr.Validation("Tour price must be a non-negative number")
	}
	return nil
}
