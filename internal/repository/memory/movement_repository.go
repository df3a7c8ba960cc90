// internal/repository/memory/movement_repository.go
package memory

import (
	"context"
	"sync"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository"
)

// movementRepository is the in-memory movement log used by the monitor
// daemon and in tests.
type movementRepository struct {
	mu        sync.Mutex
	movements []domain.StockMovement
}

// NewMovementRepository returns an empty in-memory movement log.
func NewMovementRepository() repository.MovementRepository {
	return &movementRepository{}
}

func (r *movementRepository) Record(ctx context.Context, movement domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, movement)
	return nil
}

func (r *movementRepository) Recent(ctx context.Context, limit int) ([]domain.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	if limit > len(r.movements) {
		limit = len(r.movements)
	}

	// Newest first.
	recent := make([]domain.StockMovement, 0, limit)
	for i := len(r.movements) - 1; i >= len(r.movements)-limit; i-- {
		recent = append(recent, r.movements[i])
	}
	return recent, nil
}
