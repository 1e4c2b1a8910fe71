package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tour-booking/internal/models"
)

const bookingColumns = "id, user_id, tour_id, name, email, number_of_people, date, created_at"

// bookingViewQuery joins bookings with their tour and owner.
// LEFT JOINs keep bookings whose references dangle.
const bookingViewQuery = `
	SELECT b.id, b.user_id, b.tour_id, b.name, b.email, b.number_of_people, b.date, b.created_at,
		t.id AS tour_ref, t.title AS tour_title, t.description AS tour_description,
		t.price AS tour_price, t.image AS tour_image,
		u.id AS user_ref, u.name AS user_name, u.email AS user_email
	FROM bookings b
	LEFT JOIN tours t ON t.id = b.tour_id
	LEFT JOIN users u ON u.id = b.user_id`

type bookingViewRow struct {
	ID              string          `db:"id"`
	UserID          string          `db:"user_id"`
	TourID          string          `db:"tour_id"`
	Name            string          `db:"name"`
	Email           string          `db:"email"`
	NumberOfPeople  int             `db:"number_of_people"`
	Date            string          `db:"date"`
	CreatedAt       time.Time       `db:"created_at"`
	TourRef         sql.NullString  `db:"tour_ref"`
	TourTitle       sql.NullString  `db:"tour_title"`
	TourDescription sql.NullString  `db:"tour_description"`
	TourPrice       sql.NullFloat64 `db:"tour_price"`
	TourImage       sql.NullString  `db:"tour_image"`
	UserRef         sql.NullString  `db:"user_ref"`
	UserName        sql.NullString  `db:"user_name"`
	UserEmail       sql.NullString  `db:"user_email"`
}

func (r bookingViewRow) view(withDescription bool) models.BookingView {
	v := models.BookingView{
		ID:             r.ID,
		UserID:         r.UserID,
		TourID:         r.TourID,
		Name:           r.Name,
		Email:          r.Email,
		NumberOfPeople: r.NumberOfPeople,
		Date:           r.Date,
		CreatedAt:      r.CreatedAt,
	}
	if r.TourRef.Valid {
		v.Tour = &models.TourSummary{
			ID:    r.TourRef.String,
			Title: r.TourTitle.String,
			Price: r.TourPrice.Float64,
			Image: r.TourImage.String,
		}
		if withDescription {
			v.Tour.Description = r.TourDescription.String
		}
	}
	if r.UserRef.Valid {
		v.User = &models.UserSummary{
			ID:    r.UserRef.String,
			Name:  r.UserName.String,
			Email: r.UserEmail.String,
		}
	}
	return v
}

// CreateBooking inserts b. ID and CreatedAt must already be set.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(
		"INSERT INTO bookings ("+bookingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		b.ID, b.UserID, b.TourID, b.Name, b.Email, b.NumberOfPeople, b.Date, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// GetBooking retrieves a single booking by ID without joins.
func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := db.conn.GetContext(ctx, &b, db.rebind("SELECT "+bookingColumns+" FROM bookings WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

// GetBookingView retrieves a booking joined with its full tour and owner.
func (db *DB) GetBookingView(ctx context.Context, id string) (*models.BookingView, error) {
	var row bookingViewRow
	err := db.conn.GetContext(ctx, &row, db.rebind(bookingViewQuery+" WHERE b.id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking view: %w", err)
	}
	v := row.view(true)
	return &v, nil
}

// ListBookingsByUser retrieves the bookings owned by userID, newest first.
func (db *DB) ListBookingsByUser(ctx context.Context, userID string) ([]models.BookingView, error) {
	views, err := db.listBookingViews(ctx, bookingViewQuery+" WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC", userID)
	if err != nil {
		return nil, err
	}
	// Owners already know who they are.
	for i := range views {
		views[i].User = nil
	}
	return views, nil
}

// ListBookings retrieves every booking, newest first.
func (db *DB) ListBookings(ctx context.Context) ([]models.BookingView, error) {
	return db.listBookingViews(ctx, bookingViewQuery+" ORDER BY b.created_at DESC, b.id DESC")
}

func (db *DB) listBookingViews(ctx context.Context, query string, args ...any) ([]models.BookingView, error) {
	var rows []bookingViewRow
	if err := db.conn.SelectContext(ctx, &rows, db.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	views := make([]models.BookingView, 0, len(rows))
	for _, r := range rows {
		views = append(views, r.view(false))
	}
	return views, nil
}

// UpdateBooking overwrites the contact, party size and date of an existing booking.
func (db *DB) UpdateBooking(ctx context.Context, b *models.Booking) error {
	res, err := db.conn.ExecContext(ctx, db.rebind(
		"UPDATE bookings SET name = ?, email = ?, number_of_people = ?, date = ? WHERE id = ?"),
		b.Name, b.Email, b.NumberOfPeople, b.Date, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return affectedOne(res)
}

// DeleteBooking removes a booking permanently.
func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.rebind("DELETE FROM bookings WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return affectedOne(res)
}
