package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tour-booking/internal/models"
)

const tourColumns = "id, title, description, price, image, created_at"

// CreateTour inserts t. ID and CreatedAt must already be set.
func (db *DB) CreateTour(ctx context.Context, t *models.Tour) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(
		"INSERT INTO tours (id, title, description, price, image, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
		t.ID, t.Title, t.Description, t.Price, t.Image, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tour: %w", err)
	}
	return nil
}

// GetTour retrieves a single tour by ID.
func (db *DB) GetTour(ctx context.Context, id string) (*models.Tour, error) {
	var t models.Tour
	err := db.conn.GetContext(ctx, &t, db.rebind("SELECT "+tourColumns+" FROM tours WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tour: %w", err)
	}
	return &t, nil
}

// ListTours retrieves every tour, oldest first.
func (db *DB) ListTours(ctx context.Context) ([]models.Tour, error) {
	tours := []models.Tour{}
	if err := db.conn.SelectContext(ctx, &tours, "SELECT "+tourColumns+" FROM tours ORDER BY created_at, id"); err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}
	return tours, nil
}

// UpdateTour overwrites the mutable fields of an existing tour.
func (db *DB) UpdateTour(ctx context.Context, t *models.Tour) error {
	res, err := db.conn.ExecContext(ctx, db.rebind(
		"UPDATE tours SET title = ?, description = ?, price = ?, image = ? WHERE id = ?"),
		t.Title, t.Description, t.Price, t.Image, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update tour: %w", err)
	}
	return affectedOne(res)
}

// DeleteTour removes a tour. Bookings that reference it are left in place.
func (db *DB) DeleteTour(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.rebind("DELETE FROM tours WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete tour: %w", err)
	}
	return affectedOne(res)
}
