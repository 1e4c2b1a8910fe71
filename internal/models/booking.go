package models

import "time"

// DateLayout is the wire and storage format of a reservation date.
const DateLayout = time.DateOnly

// Booking records one reservation of a tour.
type Booking struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user" db:"user_id"`
	TourID         string    `json:"tour" db:"tour_id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	NumberOfPeople int       `json:"numberOfPeople" db:"number_of_people"`
	Date           string    `json:"date" db:"date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// TourSummary is the tour part of a joined booking.
type TourSummary struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// UserSummary is the owner part of a joined booking.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingView is a booking joined with its tour and owner.
// Tour or User is nil when the reference does not resolve.
type BookingView struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	TourID         string       `json:"tourId"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	NumberOfPeople int          `json:"numberOfPeople"`
	Date           string       `json:"date"`
	CreatedAt      time.Time    `json:"created_at"`
	Tour           *TourSummary `json:"tour"`
	User           *UserSummary `json:"user,omitempty"`
}
