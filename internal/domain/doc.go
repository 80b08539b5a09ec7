// Package domain models the delivery point directory: lockers and relay
// points a carrier hands parcels over at.
//
// # Records
//
// Points are stored in a hosted Postgres table and edited from an admin
// console. Each record carries a shop code, a display name, a postal address
// and a latitude/longitude pair:
//
//	{"id": "6f1c...", "shop_code": "FR-75011-004", "name": "Relais Voltaire",
//	 "city": "Paris", "address": "12 Bd Voltaire, 75011 Paris",
//	 "latitude": 48.8638, "longitude": 2.3703, "is_active": true}
//
// # Coordinate conventions
//
// Coordinates are WGS-84 decimal degrees, but the data is not trustworthy:
//
//   - Values arrive as JSON numbers or as strings ("48.85", " 48,85 ").
//     French locale input uses a comma decimal separator; the first comma is
//     read as the decimal point.
//   - Legacy rows and half-filled forms carry null coordinates.
//   - Hand-edited values are occasionally out of range (lat 999) or swapped.
//
// Normalization is total: anything that does not parse becomes 0.0 and the
// caller decides whether the point is renderable. A 0,0 coordinate is in
// range but lies in the Gulf of Guinea, so "parsed" never means "meaningful".
//
// # Address lookup
//
// Address autocomplete goes through an AddressSearcher so the mapping
// provider's response shapes never leak past the adapter layer.
package domain
