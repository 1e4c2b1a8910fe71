package models

import "time"

// Tour is a bookable product in the catalog.
type Tour struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Image       string    `json:"image" db:"image"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TourPatch carries the fields supplied to a partial tour update.
// Nil fields keep their stored value.
type TourPatch struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
}

// Apply merges the supplied fields into t.
func (p TourPatch) Apply(t *Tour) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Image != nil {
		t.Image = *p.Image
	}
}
