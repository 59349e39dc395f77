package ports

import (
	"context"

	"github.com/Nour0506/LogistiCo/internal/domain"
)

// Port: a boundary for retrieving trucks and transporters available for
// assignment.
type FleetRepository interface {
	// ListAvailableTrucks returns trucks currently in "available" status.
	ListAvailableTrucks(ctx context.Context) ([]*domain.Truck, error)

	// ListAvailableTransporters returns transporters currently available.
	ListAvailableTransporters(ctx context.Context) ([]*domain.Transporter, error)
}
