package mapbox

import (
	"errors"
	"sync"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
)

// ErrDisabled is returned by a Provider built without a token.
var ErrDisabled = errors.New("address search is disabled")

// Provider hands out the process-wide AddressSearcher. The searcher is
// built on first use and the same instance (or the same error) is returned
// for the lifetime of the process.
type Provider struct {
	get func() (domain.AddressSearcher, error)
}

// NewProvider memoizes build. A nil build yields a provider that always
// returns ErrDisabled.
func NewProvider(build func() (domain.AddressSearcher, error)) *Provider {
	if build == nil {
		build = func() (domain.AddressSearcher, error) { return nil, ErrDisabled }
	}
	return &Provider{get: sync.OnceValues(build)}
}

// Searcher returns the shared searcher, building it on the first call.
func (p *Provider) Searcher() (domain.AddressSearcher, error) {
	return p.get()
}
