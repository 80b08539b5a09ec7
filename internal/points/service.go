// Package points manages the delivery-point directory: listing and searching
// for the public map, and validated writes for the admin form.
package points

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Store persists delivery points. Get, Update and Delete return
// domain.ErrNotFound for an unknown id.
type Store interface {
	List(ctx context.Context) ([]domain.DeliveryPoint, error)
	Get(ctx context.Context, id string) (domain.DeliveryPoint, error)
	Create(ctx context.Context, p domain.DeliveryPoint) error
	Update(ctx context.Context, p domain.DeliveryPoint) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Publisher announces point changes to downstream consumers.
type Publisher interface {
	PublishChange(ctx context.Context, change domain.PointChange) error
}

// Service coordinates validation, persistence and change publication.
type Service struct {
	store     Store
	publisher Publisher
	validate  *validator.Validate
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService creates a Service. A nil publisher disables change events.
func NewService(store Store, publisher Publisher, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		validate:  newValidator(),
		metrics:   metrics,
		logger:    logger,
	}
}

// List returns every point, newest first.
func (s *Service) List(ctx context.Context) ([]domain.DeliveryPoint, error) {
	pts, err := s.store.List(ctx)
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("list points: %w", err)
	}
	return pts, nil
}

// Get returns one point or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (domain.DeliveryPoint, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.metrics.StoreErrors.WithLabelValues("get").Inc()
		}
		return domain.DeliveryPoint{}, fmt.Errorf("get point %s: %w", id, err)
	}
	return p, nil
}

// Create validates form and stores it as a new point.
func (s *Service) Create(ctx context.Context, form domain.PointForm) (domain.DeliveryPoint, error) {
	in, err := s.normalize(form)
	if err != nil {
		return domain.DeliveryPoint{}, err
	}

	now := domain.Now()
	p := domain.DeliveryPoint{ID: uuid.NewString(), CreatedAt: now}
	apply(&p, in, now)

	if err := s.store.Create(ctx, p); err != nil {
		s.metrics.StoreErrors.WithLabelValues("create").Inc()
		return domain.DeliveryPoint{}, fmt.Errorf("create point: %w", err)
	}
	s.logger.Info("point created", "point_id", p.ID, "shop_code", p.ShopCode)
	s.publish(ctx, domain.OpCreated, p)
	return p, nil
}

// Update validates form and replaces the point's editable fields. CreatedAt
// is preserved.
func (s *Service) Update(ctx context.Context, id string, form domain.PointForm) (domain.DeliveryPoint, error) {
	in, err := s.normalize(form)
	if err != nil {
		return domain.DeliveryPoint{}, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return domain.DeliveryPoint{}, err
	}
	apply(&p, in, domain.Now())

	if err := s.store.Update(ctx, p); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.metrics.StoreErrors.WithLabelValues("update").Inc()
		}
		return domain.DeliveryPoint{}, fmt.Errorf("update point %s: %w", id, err)
	}
	s.logger.Info("point updated", "point_id", p.ID)
	s.publish(ctx, domain.OpUpdated, p)
	return p, nil
}

// Delete removes a point.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.metrics.StoreErrors.WithLabelValues("delete").Inc()
		}
		return fmt.Errorf("delete point %s: %w", id, err)
	}
	s.logger.Info("point deleted", "point_id", id)
	s.publish(ctx, domain.OpDeleted, domain.DeliveryPoint{ID: id})
	return nil
}

// CheckReadiness reports whether the store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("point store not ready: %w", err)
	}
	return nil
}

func (s *Service) normalize(form domain.PointForm) (formInput, error) {
	in, err := normalizeForm(s.validate, form)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.ValidationFails.Inc()
		}
		return formInput{}, err
	}
	return in, nil
}

// publish sends a change event. The write has already succeeded, so a
// failure here is logged and counted, never returned.
func (s *Service) publish(ctx context.Context, op string, p domain.DeliveryPoint) {
	if s.publisher == nil {
		return
	}
	change := domain.PointChange{Op: op, PointID: p.ID, Point: p, At: domain.Now()}
	if err := s.publisher.PublishChange(ctx, change); err != nil {
		s.metrics.PointChanges.WithLabelValues(op, "error").Inc()
		s.logger.Warn("point change not published", "op", op, "point_id", p.ID, "error", err)
		return
	}
	s.metrics.PointChanges.WithLabelValues(op, "published").Inc()
}

func apply(p *domain.DeliveryPoint, in formInput, now time.Time) {
	p.ShopCode = in.ShopCode
	p.Name = in.Name
	p.City = in.City
	p.Address = in.Address
	p.Latitude = domain.NumberCoordinate(in.Latitude)
	p.Longitude = domain.NumberCoordinate(in.Longitude)
	p.IsActive = in.IsActive
	p.UpdatedAt = now
}

// Search filters points whose name or shop code contains term, ignoring
// case. A blank term returns points unchanged.
func Search(points []domain.DeliveryPoint, term string) []domain.DeliveryPoint {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return points
	}
	out := make([]domain.DeliveryPoint, 0, len(points))
	for i := range points {
		if strings.Contains(strings.ToLower(points[i].Name), term) ||
			strings.Contains(strings.ToLower(points[i].ShopCode), term) {
			out = append(out, points[i])
		}
	}
	return out
}
