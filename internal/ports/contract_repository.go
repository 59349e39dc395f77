package ports

import (
	"context"

	"github.com/Nour0506/LogistiCo/internal/domain"
)

// Port: a boundary for retrieving supply contracts.
type ContractRepository interface {
	// GetContract retrieves one contract by id, or ErrNotFound.
	GetContract(ctx context.Context, id string) (*domain.Contract, error)
}
