// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
)

// MovementRepository is the persistence boundary for the append-only
// movement log. Records are never updated or deleted.
type MovementRepository interface {
	Record(ctx context.Context, movement domain.StockMovement) error
	Recent(ctx context.Context, limit int) ([]domain.StockMovement, error)
}

// LocationRepository reads the durable fleet state used to seed the
// in-memory registry at startup.
type LocationRepository interface {
	ListLocations(ctx context.Context) ([]domain.Location, error)
	GetDemandHistory(ctx context.Context, name string, window int) ([]float64, error)
	SaveLocation(ctx context.Context, loc domain.Location) error
	AppendDemand(ctx context.Context, name string, consumed float64) error
}
