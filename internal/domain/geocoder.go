package domain

import "context"

// AddressMatch is one address suggestion returned by a mapping provider.
type AddressMatch struct {
	FormattedAddress string     `json:"formatted_address"`
	City             string     `json:"city"`
	Coordinate       Coordinate `json:"coordinate"`
	Relevance        float64    `json:"relevance"` // 0.0–1.0 provider confidence score
}

// AddressSearcher backs address autocomplete in the admin form.
type AddressSearcher interface {
	// SearchAddress returns suggestions for free-text input, best match first.
	SearchAddress(ctx context.Context, query string) ([]AddressMatch, error)

	// ReverseGeocode returns the closest address to a coordinate. An empty
	// FormattedAddress means nothing was found.
	ReverseGeocode(ctx context.Context, c Coordinate) (AddressMatch, error)
}
