// Package service implements the account, tour catalog and booking rules
// on top of injected stores.
package service

import (
	"context"
	"log/slog"

	"tour-booking/internal/apperr"
	"tour-booking/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TourStore persists the tour catalog.
type TourStore interface {
	CreateTour(ctx context.Context, t *models.Tour) error
	GetTour(ctx context.Context, id string) (*models.Tour, error)
	ListTours(ctx context.Context) ([]models.Tour, error)
	UpdateTour(ctx context.Context, t *models.Tour) error
	DeleteTour(ctx context.Context, id string) error
}

// BookingStore persists bookings and their joined views.
type BookingStore interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingView(ctx context.Context, id string) (*models.BookingView, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]models.BookingView, error)
	ListBookings(ctx context.Context) ([]models.BookingView, error)
	UpdateBooking(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, id string) error
}

// Recorder receives domain events worth counting.
type Recorder interface {
	LoginAttempt(success bool)
	AuthRejected(reason string)
	BookingChanged(op string)
}

type nopRecorder struct{}

func (nopRecorder) LoginAttempt(bool)     {}
func (nopRecorder) AuthRejected(string)   {}
func (nopRecorder) BookingChanged(string) {}

// RequireAdmin is the role gate: it admits only identities holding the admin role.
func RequireAdmin(id *models.Identity) error {
	if id == nil {
		return apperr.Unauthenticated("Not authenticated")
	}
	if !id.IsAdmin() {
		return apperr.Forbidden("Admin access required")
	}
	return nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func resolveRecorder(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
