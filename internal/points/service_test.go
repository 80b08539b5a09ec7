package points

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type memStore struct {
	mu      sync.Mutex
	points  map[string]domain.DeliveryPoint
	err     error
	pingErr error
}

func newMemStore(pts ...domain.DeliveryPoint) *memStore {
	s := &memStore{points: make(map[string]domain.DeliveryPoint)}
	for _, p := range pts {
		s.points[p.ID] = p
	}
	return s
}

func (s *memStore) List(_ context.Context) ([]domain.DeliveryPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.DeliveryPoint, 0, len(s.points))
	for _, p := range s.points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) Get(_ context.Context, id string) (domain.DeliveryPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.DeliveryPoint{}, s.err
	}
	p, ok := s.points[id]
	if !ok {
		return domain.DeliveryPoint{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *memStore) Create(_ context.Context, p domain.DeliveryPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.points[p.ID] = p
	return nil
}

func (s *memStore) Update(_ context.Context, p domain.DeliveryPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.points[p.ID]; !ok {
		return domain.ErrNotFound
	}
	s.points[p.ID] = p
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.points[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.points, id)
	return nil
}

func (s *memStore) Ping(_ context.Context) error { return s.pingErr }

type recordingPublisher struct {
	changes []domain.PointChange
	err     error
}

func (p *recordingPublisher) PublishChange(_ context.Context, c domain.PointChange) error {
	p.changes = append(p.changes, c)
	return p.err
}

// --- helpers ---

var fixedNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func freezeClock(t *testing.T) *clockwork.FakeClock {
	t.Helper()
	fc := clockwork.NewFakeClockAt(fixedNow)
	domain.SetClock(fc)
	t.Cleanup(func() { domain.SetClock(nil) })
	return fc
}

func newTestService(store Store, pub Publisher) *Service {
	return NewService(store, pub, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validForm() domain.PointForm {
	return domain.PointForm{
		ShopCode:  " FR-75011-01 ",
		Name:      "Relais Voltaire",
		City:      "Paris",
		Address:   "12 Boulevard Voltaire",
		Latitude:  domain.TextCoordinate("48,8638"),
		Longitude: domain.NumberCoordinate(2.3703),
	}
}

// --- tests ---

func TestService_Create(t *testing.T) {
	freezeClock(t)
	store := newMemStore()
	pub := &recordingPublisher{}
	svc := newTestService(store, pub)

	p, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "FR-75011-01", p.ShopCode)
	assert.Equal(t, domain.NumberCoordinate(48.8638), p.Latitude, "stored coordinates are normalized")
	assert.Equal(t, domain.NumberCoordinate(2.3703), p.Longitude)
	assert.True(t, p.IsActive, "active by default")
	assert.Equal(t, fixedNow, p.CreatedAt)
	assert.Equal(t, fixedNow, p.UpdatedAt)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, stored)

	require.Len(t, pub.changes, 1)
	assert.Equal(t, domain.OpCreated, pub.changes[0].Op)
	assert.Equal(t, p.ID, pub.changes[0].PointID)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.PointChanges.WithLabelValues(domain.OpCreated, "published")))
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.PointForm)
		field  string
		reason string
	}{
		{"missing name", func(f *domain.PointForm) { f.Name = "   " }, "name", "is required"},
		{"missing shop code", func(f *domain.PointForm) { f.ShopCode = "" }, "shop_code", "is required"},
		{"null latitude", func(f *domain.PointForm) { f.Latitude = domain.RawCoordinate{} }, "latitude", "is required"},
		{"garbage longitude", func(f *domain.PointForm) { f.Longitude = domain.TextCoordinate("east") }, "longitude", "must be a number"},
		{"latitude out of range", func(f *domain.PointForm) { f.Latitude = domain.NumberCoordinate(999) }, "latitude", "must be at most 90"},
		{"longitude out of range", func(f *domain.PointForm) { f.Longitude = domain.TextCoordinate("-181") }, "longitude", "must be at least -180"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			pub := &recordingPublisher{}
			svc := newTestService(store, pub)

			form := validForm()
			tt.mutate(&form)
			_, err := svc.Create(context.Background(), form)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.reason, verr.Fields[tt.field])
			assert.Len(t, verr.Fields, 1)
			assert.Empty(t, store.points, "nothing written")
			assert.Empty(t, pub.changes, "nothing published")
			assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.ValidationFails))
		})
	}
}

func TestService_Create_PublishFailureDoesNotFailWrite(t *testing.T) {
	store := newMemStore()
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	svc := newTestService(store, pub)

	p, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)

	assert.Contains(t, store.points, p.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.PointChanges.WithLabelValues(domain.OpCreated, "error")))
}

func TestService_Create_WithoutPublisher(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	_, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)
}

func TestService_Create_StoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	pub := &recordingPublisher{}
	svc := newTestService(store, pub)

	_, err := svc.Create(context.Background(), validForm())
	require.Error(t, err)
	assert.Empty(t, pub.changes)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.StoreErrors.WithLabelValues("create")))
}

func TestService_Update_PreservesCreatedAt(t *testing.T) {
	fc := freezeClock(t)
	created := fixedNow.Add(-48 * time.Hour)
	store := newMemStore(domain.DeliveryPoint{ID: "pt-1", Name: "Old", CreatedAt: created, UpdatedAt: created})
	pub := &recordingPublisher{}
	svc := newTestService(store, pub)

	fc.Advance(time.Minute)
	form := validForm()
	inactive := false
	form.IsActive = &inactive

	p, err := svc.Update(context.Background(), "pt-1", form)
	require.NoError(t, err)

	assert.Equal(t, "Relais Voltaire", p.Name)
	assert.False(t, p.IsActive)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, fixedNow.Add(time.Minute), p.UpdatedAt)
	require.Len(t, pub.changes, 1)
	assert.Equal(t, domain.OpUpdated, pub.changes[0].Op)
}

func TestService_Update_NotFound(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	_, err := svc.Update(context.Background(), "missing", validForm())
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(svc.metrics.StoreErrors.WithLabelValues("get")))
}

func TestService_Delete(t *testing.T) {
	store := newMemStore(domain.DeliveryPoint{ID: "pt-1"})
	pub := &recordingPublisher{}
	svc := newTestService(store, pub)

	require.NoError(t, svc.Delete(context.Background(), "pt-1"))
	assert.Empty(t, store.points)
	require.Len(t, pub.changes, 1)
	assert.Equal(t, domain.OpDeleted, pub.changes[0].Op)
	assert.Equal(t, "pt-1", pub.changes[0].PointID)

	err := svc.Delete(context.Background(), "pt-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_List_NewestFirst(t *testing.T) {
	store := newMemStore(
		domain.DeliveryPoint{ID: "old", CreatedAt: fixedNow.Add(-time.Hour)},
		domain.DeliveryPoint{ID: "new", CreatedAt: fixedNow},
	)
	svc := newTestService(store, nil)

	pts, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "new", pts[0].ID)
}

func TestService_CheckReadiness(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, nil)
	require.NoError(t, svc.CheckReadiness(context.Background()))

	store.pingErr = errors.New("pool closed")
	require.Error(t, svc.CheckReadiness(context.Background()))
}

func TestSearch(t *testing.T) {
	pts := []domain.DeliveryPoint{
		{ID: "1", Name: "Relais Voltaire", ShopCode: "FR-75011-01"},
		{ID: "2", Name: "Consigne Bellecour", ShopCode: "FR-69002-07"},
		{ID: "3", Name: "Tabac du Port", ShopCode: "FR-13002-03"},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"  ", []string{"1", "2", "3"}},
		{"voltaire", []string{"1"}},
		{"BELLE", []string{"2"}},
		{"fr-13", []string{"3"}},
		{"fr-", []string{"1", "2", "3"}},
		{"lille", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			var ids []string
			for _, p := range Search(pts, tt.term) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required", "latitude": "must be a number"}}
	assert.Equal(t, "invalid point: latitude: must be a number, name: is required", err.Error())
}
