package service

import (
	"context"
	"math"
	"testing"

	"tour-booking/internal/apperr"
	"tour-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAdmin = &models.Identity{ID: models.NewID(), Name: "Root", Role: models.RoleAdmin}
	testUser  = &models.Identity{ID: models.NewID(), Name: "Ann", Role: models.RoleUser}
)

func ptr[T any](v T) *T { return &v }

func TestTourService_CreateRequiresAdmin(t *testing.T) {
	svc := NewTourService(newMemStore(), nil)
	in := TourInput{Title: "Alps", Price: 100}

	_, err := svc.Create(context.Background(), nil, in)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Create(context.Background(), testUser, in)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	tour, err := svc.Create(context.Background(), testAdmin, in)
	require.NoError(t, err)
	assert.Equal(t, "Alps", tour.Title)
}

func TestTourService_CreateValidation(t *testing.T) {
	svc := NewTourService(newMemStore(), nil)

	for _, in := range []TourInput{
		{Title: "", Price: 10},
		{Title: "   ", Price: 10},
		{Title: "Alps", Price: -1},
		{Title: "Alps", Price: math.Inf(1)},
	} {
		_, err := svc.Create(context.Background(), testAdmin, in)
		assert.ErrorIs(t, err, apperr.ErrValidation, "input %+v", in)
	}
}

func TestTourService_PublicReads(t *testing.T) {
	store := newMemStore()
	svc := NewTourService(store, nil)
	ctx := context.Background()

	tours, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tours)

	created, err := svc.Create(ctx, testAdmin, TourInput{Title: "Alps", Description: "Peaks", Price: 100, Image: "alps.jpg"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Peaks", got.Description)

	_, err = svc.Get(ctx, models.NewID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	tours, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tours, 1)
}

func TestTourService_UpdateMergesPartialFields(t *testing.T) {
	svc := NewTourService(newMemStore(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, testAdmin, TourInput{Title: "Alps", Description: "Peaks", Price: 100, Image: "alps.jpg"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, testAdmin, created.ID, models.TourPatch{Price: ptr(150.0)})
	require.NoError(t, err)
	assert.Equal(t, 150.0, updated.Price)
	assert.Equal(t, "Alps", updated.Title)
	assert.Equal(t, "Peaks", updated.Description)
	assert.Equal(t, "alps.jpg", updated.Image)

	updated, err = svc.Update(ctx, testAdmin, created.ID, models.TourPatch{Title: ptr("Alps Deluxe"), Image: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Alps Deluxe", updated.Title)
	assert.Equal(t, 150.0, updated.Price)
	assert.Empty(t, updated.Image)

	_, err = svc.Update(ctx, testAdmin, created.ID, models.TourPatch{Title: ptr("")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTourService_UpdateAndDeleteErrors(t *testing.T) {
	svc := NewTourService(newMemStore(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, testAdmin, TourInput{Title: "Alps", Price: 100})
	require.NoError(t, err)

	_, err = svc.Update(ctx, testUser, created.ID, models.TourPatch{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, testUser, created.ID), apperr.ErrForbidden)

	_, err = svc.Update(ctx, testAdmin, models.NewID(), models.TourPatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, testAdmin, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, testAdmin, created.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, testAdmin, "bogus"), apperr.ErrNotFound)
}

func TestTourService_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.failWith = errStoreDown
	svc := NewTourService(store, nil)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, apperr.ErrInternal)
}
