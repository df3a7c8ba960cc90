// internal/repository/postgres/location_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository"
)

type locationRepository struct {
	db *DB
}

// NewLocationRepository returns the Postgres fleet store.
func NewLocationRepository(db *DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	err := r.db.SelectContext(ctx, &locations, `
		SELECT name, location_type, population_served, current_stock, reorder_threshold
		FROM locations
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing locations: %w", err)
	}
	return locations, nil
}

func (r *locationRepository) GetDemandHistory(ctx context.Context, name string, window int) ([]float64, error) {
	if window <= 0 {
		window = 7
	}

	// Most recent entries first, then flipped back to chronological order.
	var recent []float64
	err := r.db.SelectContext(ctx, &recent, `
		SELECT consumed
		FROM demand_history
		WHERE location_name = $1
		ORDER BY recorded_at DESC
		LIMIT $2`, name, window)
	if err != nil {
		return nil, fmt.Errorf("error getting demand history for %s: %w", name, err)
	}

	history := make([]float64, len(recent))
	for i, v := range recent {
		history[len(recent)-1-i] = v
	}
	return history, nil
}

func (r *locationRepository) SaveLocation(ctx context.Context, loc domain.Location) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO locations (name, location_type, population_served, current_stock, reorder_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			location_type = EXCLUDED.location_type,
			population_served = EXCLUDED.population_served,
			current_stock = EXCLUDED.current_stock,
			reorder_threshold = EXCLUDED.reorder_threshold,
			updated_at = NOW()`,
		loc.Name, string(loc.Type), loc.PopulationServed, loc.CurrentStock, loc.Threshold,
	)
	if err != nil {
		return fmt.Errorf("error saving location %s: %w", loc.Name, err)
	}
	return nil
}

func (r *locationRepository) AppendDemand(ctx context.Context, name string, consumed float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO demand_history (location_name, consumed, recorded_at)
		VALUES ($1, $2, NOW())`,
		name, consumed,
	)
	if err != nil {
		return fmt.Errorf("error appending demand for %s: %w", name, err)
	}
	return nil
}
