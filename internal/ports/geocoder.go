package ports

import (
	"context"
	"errors"

	"github.com/Nour0506/LogistiCo/internal/domain"
)

// ErrGeocodeNoMatch is returned when the upstream resolves nothing for an
// address. It is recoverable: the caller keeps the sentinel position and
// schedules a retry.
var ErrGeocodeNoMatch = errors.New("geocode: no match for address")

// Geocoder resolves a free-text address to coordinates. Implementations are
// rate-limited and may block the caller for the minimum inter-call delay;
// callers must not assume sub-second latency.
type Geocoder interface {
	Resolve(ctx context.Context, address, nameHint string) (domain.Coordinates, error)
}

// GeocodeCache caches resolved coordinates by normalized address text.
type GeocodeCache interface {
	Get(ctx context.Context, address string) (domain.Coordinates, bool, error)
	Put(ctx context.Context, address string, pos domain.Coordinates) error
}
