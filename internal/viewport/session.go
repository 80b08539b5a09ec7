package viewport

import (
	"math"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/couchcryptid/delivery-point-map/internal/domain"
)

// Session keeps the last resolved State and recomputes it only when the
// point set or the selection changed. A changed input replaces the previous
// State outright.
type Session struct {
	resolver *Resolver

	mu          sync.Mutex
	has         bool
	fingerprint uint64
	state       State
	index       *Index
}

// NewSession wraps a resolver.
func NewSession(r *Resolver) *Session {
	return &Session{resolver: r}
}

// Resolve returns the State for (points, selectedID) and whether it was
// recomputed. Callers must treat the returned slices as read-only.
func (s *Session) Resolve(points []domain.DeliveryPoint, selectedID string) (State, bool) {
	fp := Fingerprint(points, selectedID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(points, selectedID, fp)
}

// Visible resolves (points, selectedID) and returns its markers inside b.
// The lookup uses the index of that exact State even when other callers
// replace the session's State concurrently.
func (s *Session) Visible(points []domain.DeliveryPoint, selectedID string, b Bounds) ([]Marker, State, bool, error) {
	fp := Fingerprint(points, selectedID)

	s.mu.Lock()
	state, recomputed := s.resolveLocked(points, selectedID, fp)
	if s.index == nil {
		s.index = NewIndex(state.Markers)
	}
	idx := s.index
	s.mu.Unlock()

	markers, err := idx.Within(b)
	return markers, state, recomputed, err
}

// resolveLocked must be called with s.mu held. The index is dropped on
// recomputation and rebuilt on the next Visible.
func (s *Session) resolveLocked(points []domain.DeliveryPoint, selectedID string, fp uint64) (State, bool) {
	if s.has && s.fingerprint == fp {
		return s.state, false
	}
	s.state = s.resolver.Resolve(points, selectedID)
	s.index = nil
	s.fingerprint = fp
	s.has = true
	return s.state, true
}

// Fingerprint hashes everything Resolve depends on: point ids, raw
// coordinates and the selection.
func Fingerprint(points []domain.DeliveryPoint, selectedID string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(selectedID)
	for i := range points {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(points[i].ID)
		writeRaw(d, points[i].Latitude)
		writeRaw(d, points[i].Longitude)
	}
	return d.Sum64()
}

func writeRaw(d *xxhash.Digest, r domain.RawCoordinate) {
	_, _ = d.WriteString("\x1f")
	_, _ = d.WriteString(r.Kind.String())
	_, _ = d.WriteString("\x1f")
	switch r.Kind {
	case domain.KindNumber:
		_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(r.Number), 16))
	case domain.KindString:
		_, _ = d.WriteString(r.Text)
	}
}
