package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"tour-booking/internal/models"
	"tour-booking/internal/storage"
)

// memStore is an in-memory UserStore, TourStore and BookingStore.
type memStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	tours    map[string]models.Tour
	bookings map[string]models.Booking
	calls    int
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]models.User{},
		tours:    map[string]models.Tour{},
		bookings: map[string]models.Booking{},
	}
}

func (m *memStore) enter() error {
	m.mu.Lock()
	m.calls++
	return m.failWith
}

func (m *memStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return storage.ErrDuplicateEmail
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) setRole(id string, role models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.Role = role
	m.users[id] = u
}

func (m *memStore) deleteUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *memStore) CreateTour(_ context.Context, t *models.Tour) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	m.tours[t.ID] = *t
	return nil
}

func (m *memStore) GetTour(_ context.Context, id string) (*models.Tour, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	t, ok := m.tours[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) ListTours(_ context.Context) ([]models.Tour, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	tours := make([]models.Tour, 0, len(m.tours))
	for _, t := range m.tours {
		tours = append(tours, t)
	}
	sort.Slice(tours, func(i, j int) bool { return tours[i].ID < tours[j].ID })
	return tours, nil
}

func (m *memStore) UpdateTour(_ context.Context, t *models.Tour) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.tours[t.ID]; !ok {
		return storage.ErrNotFound
	}
	m.tours[t.ID] = *t
	return nil
}

func (m *memStore) DeleteTour(_ context.Context, id string) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.tours[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.tours, id)
	return nil
}

func (m *memStore) CreateBooking(_ context.Context, b *models.Booking) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

// view joins a booking; the caller holds the lock.
func (m *memStore) view(b models.Booking, withOwner bool) models.BookingView {
	v := models.BookingView{
		ID:             b.ID,
		UserID:         b.UserID,
		TourID:         b.TourID,
		Name:           b.Name,
		Email:          b.Email,
		NumberOfPeople: b.NumberOfPeople,
		Date:           b.Date,
		CreatedAt:      b.CreatedAt,
	}
	if t, ok := m.tours[b.TourID]; ok {
		v.Tour = &models.TourSummary{ID: t.ID, Title: t.Title, Price: t.Price, Image: t.Image}
	}
	if u, ok := m.users[b.UserID]; ok && withOwner {
		v.User = &models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return v
}

func (m *memStore) GetBookingView(_ context.Context, id string) (*models.BookingView, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	v := m.view(b, true)
	return &v, nil
}

func (m *memStore) ListBookingsByUser(_ context.Context, userID string) ([]models.BookingView, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	views := []models.BookingView{}
	for _, b := range m.bookings {
		if b.UserID == userID {
			views = append(views, m.view(b, false))
		}
	}
	return views, nil
}

func (m *memStore) ListBookings(_ context.Context) ([]models.BookingView, error) {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	views := []models.BookingView{}
	for _, b := range m.bookings {
		views = append(views, m.view(b, true))
	}
	return views, nil
}

func (m *memStore) UpdateBooking(_ context.Context, b *models.Booking) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.bookings[b.ID]; !ok {
		return storage.ErrNotFound
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) DeleteBooking(_ context.Context, id string) error {
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.bookings[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

var errStoreDown = errors.New("store unavailable")

// countingRecorder records domain events for assertions.
type countingRecorder struct {
	mu       sync.Mutex
	logins   map[bool]int
	rejected map[string]int
	changes  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{logins: map[bool]int{}, rejected: map[string]int{}, changes: map[string]int{}}
}

func (r *countingRecorder) LoginAttempt(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins[success]++
}

func (r *countingRecorder) AuthRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[reason]++
}

func (r *countingRecorder) BookingChanged(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[op]++
}
