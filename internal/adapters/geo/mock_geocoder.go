package geo

import (
	"context"
	"fmt"

	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/ports"
)

// MockGeocoder resolves from a fixed address table. Unknown addresses fail
// with ErrGeocodeNoMatch.
type MockGeocoder struct {
	Positions map[string]domain.Coordinates
	Calls     int
}

func (m *MockGeocoder) Resolve(_ context.Context, address, nameHint string) (domain.Coordinates, error) {
	m.Calls++
	pos, ok := m.Positions[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("geocode %q (%q): %w", nameHint, address, ports.ErrGeocodeNoMatch)
	}
	return pos, nil
}
