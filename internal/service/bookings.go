package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tour-booking/internal/apperr"
	"tour-booking/internal/models"
	"tour-booking/internal/storage"
)

// BookingInput is the payload of a booking creation.
type BookingInput struct {
	Name           string
	Email          string
	NumberOfPeople int
	TourID         string
	Date           string
}

// BookingUpdate carries the owner-mutable fields of a booking.
type BookingUpdate struct {
	Name           string
	Email          string
	NumberOfPeople int
	Date           string
}

// BookingService implements the booking lifecycle with ownership and role checks.
//
// Ownership policy: the owner may read, update and delete a booking; an admin may
// read and delete any booking but never update it. A booking whose owner no longer
// resolves has no owner, so every owner check on it fails with a validation error,
// while admin reads and deletes still succeed. Admin reads of an orphan return the
// booking with a null user instead of the validation error an owner gets.
type BookingService struct {
	bookings BookingStore
	users    UserStore
	logger   *slog.Logger
	rec      Recorder
	now      func() time.Time
}

// NewBookingService creates a BookingService.
func NewBookingService(bookings BookingStore, users UserStore, logger *slog.Logger, rec Recorder) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		logger:   resolveLogger(logger),
		rec:      resolveRecorder(rec),
		now:      time.Now,
	}
}

// Create records a booking owned by the caller. The tour is not re-checked for existence.
func (s *BookingService) Create(ctx context.Context, caller *models.Identity, in BookingInput) (*models.Booking, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated("Not authenticated")
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || strings.TrimSpace(in.TourID) == "" || strings.TrimSpace(in.Date) == "" {
		return nil, apperr.Validation("Please provide all required fields")
	}
	if in.NumberOfPeople < 1 {
		return nil, apperr.Validation("Number of people must be greater than 0")
	}
	tourID, ok := models.CanonicalID(in.TourID)
	if !ok {
		return nil, apperr.Validation("Invalid tour ID format")
	}
	date, err := ParseBookingDate(in.Date)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:             models.NewID(),
		UserID:         caller.ID,
		TourID:         tourID,
		Name:           name,
		Email:          email,
		NumberOfPeople: in.NumberOfPeople,
		Date:           date,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.bookings.CreateBooking(ctx, b); err != nil {
		return nil, apperr.Internal(err)
	}

	s.rec.BookingChanged("create")
	s.logger.Info("booking created", "event", "booking_created", "booking_id", b.ID, "user_id", caller.ID, "tour_id", tourID)
	return b, nil
}

// ListMine returns the caller's bookings with tour display fields.
func (s *BookingService) ListMine(ctx context.Context, caller *models.Identity) ([]models.BookingView, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	views, err := s.bookings.ListBookingsByUser(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return views, nil
}

// ListAll returns every booking with tour and owner display fields. Admin only.
func (s *BookingService) ListAll(ctx context.Context, caller *models.Identity) ([]models.BookingView, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	views, err := s.bookings.ListBookings(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return views, nil
}

// Get returns one booking joined with its tour and owner. Owner or admin.
func (s *BookingService) Get(ctx context.Context, caller *models.Identity, id string) (*models.BookingView, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}

	v, err := s.bookings.GetBookingView(ctx, bookingID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}

	if caller.IsAdmin() {
		return v, nil
	}
	if v.User == nil {
		return nil, errOwnerMissing
	}
	if !models.SameID(v.User.ID, caller.ID) {
		s.logger.Info("booking access denied", "event", "booking_forbidden", "op", "get", "booking_id", bookingID, "user_id", caller.ID)
		return nil, apperr.Forbidden("Not authorized to view this booking")
	}
	return v, nil
}

// Update overwrites the contact, party size and date of a booking. Owner only;
// admins get no override here.
func (s *BookingService) Update(ctx context.Context, caller *models.Identity, id string, upd BookingUpdate) (*models.Booking, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated("Not authenticated")
	}
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(upd.Name)
	email := strings.TrimSpace(upd.Email)
	if name == "" || email == "" || strings.TrimSpace(upd.Date) == "" {
		return nil, apperr.Validation("Please provide all required fields")
	}
	if upd.NumberOfPeople < 1 {
		return nil, apperr.Validation("Number of people must be greater than 0")
	}
	date, err := ParseBookingDate(upd.Date)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	owner, err := s.resolveOwner(ctx, b)
	if err != nil {
		return nil, err
	}
	if !models.SameID(owner.ID, caller.ID) {
		s.logger.Info("booking access denied", "event", "booking_forbidden", "op", "update", "booking_id", bookingID, "user_id", caller.ID)
		return nil, apperr.Forbidden("Not authorized to update this booking")
	}

	b.Name = name
	b.Email = email
	b.NumberOfPeople = upd.NumberOfPeople
	b.Date = date
	if err := s.bookings.UpdateBooking(ctx, b); err != nil {
		return nil, notFoundOrInternal(err)
	}

	s.rec.BookingChanged("update")
	s.logger.Info("booking updated", "event", "booking_updated", "booking_id", bookingID, "user_id", caller.ID)
	return b, nil
}

// Delete removes a booking permanently. Owner or admin.
func (s *BookingService) Delete(ctx context.Context, caller *models.Identity, id string) error {
	if caller == nil {
		return apperr.Unauthenticated("Not authenticated")
	}
	bookingID, err := parseBookingID(id)
	if err != nil {
		return err
	}

	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return notFoundOrInternal(err)
	}

	if !caller.IsAdmin() {
		owner, err := s.resolveOwner(ctx, b)
		if err != nil {
			return err
		}
		if !models.SameID(owner.ID, caller.ID) {
			s.logger.Info("booking access denied", "event", "booking_forbidden", "op", "delete", "booking_id", bookingID, "user_id", caller.ID)
			return apperr.Forbidden("Not authorized to delete this booking")
		}
	}

	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		return notFoundOrInternal(err)
	}

	s.rec.BookingChanged("delete")
	s.logger.Info("booking deleted", "event", "booking_deleted", "booking_id", bookingID, "user_id", caller.ID, "as_admin", caller.IsAdmin())
	return nil
}

var errOwnerMissing = apperr.Validation("Booking user info missing")

func (s *BookingService) resolveOwner(ctx context.Context, b *models.Booking) (*models.User, error) {
	owner, err := s.users.GetUserByID(ctx, b.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errOwnerMissing
		}
		return nil, apperr.Internal(err)
	}
	return owner, nil
}

func parseBookingID(id string) (string, error) {
	canonical, ok := models.CanonicalID(id)
	if !ok {
		return "", apperr.Validation("Invalid booking ID format")
	}
	return canonical, nil
}

func notFoundOrInternal(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("Booking not found")
	}
	return apperr.Internal(err)
}

// ParseBookingDate normalizes a reservation date to YYYY-MM-DD.
// RFC 3339 timestamps are accepted and truncated to their calendar date.
func ParseBookingDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(models.DateLayout, s); err == nil {
		return d.Format(models.DateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Format(models.DateLayout), nil
	}
	return "", apperr.Validation("Date must be an ISO calendar date (YYYY-MM-DD)")
}
