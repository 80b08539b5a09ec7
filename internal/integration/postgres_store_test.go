//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/adapter/postgres"
	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
	"github.com/couchcryptid/delivery-point-map/internal/points"
	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(ctx context.Context, t *testing.T) *postgres.Store {
	t.Helper()

	pool, err := postgres.NewPool(ctx, startPostgres(ctx, t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	// Applying twice must be a no-op.
	require.NoError(t, postgres.Migrate(ctx, pool))

	return postgres.NewStore(pool)
}

func TestPostgresStore_CRUD(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := openStore(ctx, t)
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	legacy := domain.DeliveryPoint{
		ID:        uuid.NewString(),
		ShopCode:  "FR-69002-07",
		Name:      "Consigne Bellecour",
		City:      "Lyon",
		Address:   "Place Bellecour",
		Latitude:  domain.TextCoordinate("45,7578"),
		Longitude: domain.NumberCoordinate(4.8320),
		IsActive:  true,
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now.Add(-time.Hour),
	}
	broken := domain.DeliveryPoint{
		ID:        uuid.NewString(),
		ShopCode:  "FR-00000-00",
		Name:      "Sans position",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Create(ctx, legacy))
	require.NoError(t, store.Create(ctx, broken))

	got, err := store.Get(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, legacy, got, "raw coordinates survive storage unchanged")

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, broken.ID, all[0].ID, "newest first")
	assert.True(t, all[0].Latitude.IsNull())

	legacy.Name = "Consigne Bellecour Nord"
	require.NoError(t, store.Update(ctx, legacy))
	got, err = store.Get(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Consigne Bellecour Nord", got.Name)

	require.NoError(t, store.Delete(ctx, broken.ID))
	_, err = store.Get(ctx, broken.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, broken.ID), domain.ErrNotFound)
	require.ErrorIs(t, store.Update(ctx, broken), domain.ErrNotFound)

	require.NoError(t, store.Ping(ctx))
}

func TestPostgresStore_ServiceAndViewport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := openStore(ctx, t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := points.NewService(store, nil, observability.NewMetricsForTesting(), logger)

	created, err := svc.Create(ctx, domain.PointForm{
		ShopCode:  "FR-75011-01",
		Name:      "Relais Voltaire",
		City:      "Paris",
		Address:   "12 Boulevard Voltaire",
		Latitude:  domain.TextCoordinate("48,8638"),
		Longitude: domain.TextCoordinate("2.3703"),
	})
	require.NoError(t, err)

	pts, err := svc.List(ctx)
	require.NoError(t, err)

	state := viewport.NewResolver(viewport.DefaultConfig(), nil).Resolve(pts, created.ID)
	assert.Equal(t, viewport.ModeFocus, state.Mode)
	assert.Equal(t, domain.Coordinate{Lat: 48.8638, Lng: 2.3703}, state.Center)
}
