package domain

import (
	"errors"
	"time"
)

// DeliveryPoint is a locker or relay point record as stored.
type DeliveryPoint struct {
	ID        string        `json:"id"`
	ShopCode  string        `json:"shop_code"`
	Name      string        `json:"name"`
	City      string        `json:"city"`
	Address   string        `json:"address"`
	Latitude  RawCoordinate `json:"latitude"`
	Longitude RawCoordinate `json:"longitude"`
	IsActive  bool          `json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PointForm is the admin create/update payload. Coordinates stay raw until
// the service normalizes them, since the form posts whatever was typed.
type PointForm struct {
	ShopCode  string        `json:"shop_code"`
	Name      string        `json:"name"`
	City      string        `json:"city"`
	Address   string        `json:"address"`
	Latitude  RawCoordinate `json:"latitude"`
	Longitude RawCoordinate `json:"longitude"`
	IsActive  *bool         `json:"is_active,omitempty"` // nil means active
}

// Change operations published when a point is written.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// PointChange describes a single write to the directory.
type PointChange struct {
	Op      string        `json:"op"`
	PointID string        `json:"point_id"`
	Point   DeliveryPoint `json:"point"`
	At      time.Time     `json:"at"`
}

// ErrNotFound is returned when no point has the requested id.
var ErrNotFound = errors.New("delivery point not found")
