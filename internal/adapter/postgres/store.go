// Package postgres stores delivery points in Postgres through a pgx pool and
// owns the schema migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a connection pool and verifies it with a ping.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Store implements points.Store on the delivery_points table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectColumns = `id::text, shop_code, name, city, address, latitude, longitude, is_active, created_at, updated_at`

func (s *Store) List(ctx context.Context) ([]domain.DeliveryPoint, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM delivery_points ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pts := make([]domain.DeliveryPoint, 0)
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pts, nil
}

func (s *Store) Get(ctx context.Context, id string) (domain.DeliveryPoint, error) {
	if !validID(id) {
		return domain.DeliveryPoint{}, domain.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM delivery_points WHERE id = $1`, id)
	p, err := scanPoint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DeliveryPoint{}, domain.ErrNotFound
	}
	return p, err
}

func (s *Store) Create(ctx context.Context, p domain.DeliveryPoint) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO delivery_points (id, shop_code, name, city, address, latitude, longitude, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.ShopCode, p.Name, p.City, p.Address,
		encodeCoordinate(p.Latitude), encodeCoordinate(p.Longitude),
		p.IsActive, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *Store) Update(ctx context.Context, p domain.DeliveryPoint) error {
	if !validID(p.ID) {
		return domain.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE delivery_points
		SET shop_code = $2, name = $3, city = $4, address = $5,
		    latitude = $6, longitude = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`, p.ID, p.ShopCode, p.Name, p.City, p.Address,
		encodeCoordinate(p.Latitude), encodeCoordinate(p.Longitude),
		p.IsActive, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM delivery_points WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// validID reports whether id can name a row. Anything else would fail the
// uuid cast in Postgres and surface as a server error instead of a miss.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanPoint(row pgx.Row) (domain.DeliveryPoint, error) {
	var (
		p        domain.DeliveryPoint
		lat, lng *string
	)
	if err := row.Scan(&p.ID, &p.ShopCode, &p.Name, &p.City, &p.Address,
		&lat, &lng, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.DeliveryPoint{}, err
	}
	p.Latitude = decodeCoordinate(lat)
	p.Longitude = decodeCoordinate(lng)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// encodeCoordinate stores numbers in their shortest exact form and text as
// typed. Non-finite numbers have no text form that reads back as a number
// and are stored verbatim.
func encodeCoordinate(r domain.RawCoordinate) *string {
	var s string
	switch r.Kind {
	case domain.KindNumber:
		s = strconv.FormatFloat(r.Number, 'g', -1, 64)
	case domain.KindString:
		s = r.Text
	default:
		return nil
	}
	return &s
}

// decodeCoordinate reads a column back: anything the strict float grammar
// accepts becomes a number, everything else stays text for the normalizer.
func decodeCoordinate(s *string) domain.RawCoordinate {
	if s == nil {
		return domain.RawCoordinate{}
	}
	if v, err := strconv.ParseFloat(*s, 64); err == nil {
		return domain.NumberCoordinate(v)
	}
	return domain.TextCoordinate(*s)
}
