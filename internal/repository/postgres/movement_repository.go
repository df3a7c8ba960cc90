// internal/repository/postgres/movement_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository"
)

type movementRow struct {
	ID             string         `db:"id"`
	MovementType   string         `db:"movement_type"`
	QuantityChange int            `db:"quantity_change"`
	FromLocation   sql.NullString `db:"from_location"`
	ToLocation     sql.NullString `db:"to_location"`
	Actor          string         `db:"actor"`
	CreatedAt      time.Time      `db:"created_at"`
}

type movementRepository struct {
	db *DB
}

// NewMovementRepository returns the Postgres movement log. Record also
// advances the persisted stock counters in the same transaction, so the
// durable counters never drift from the movement history.
func NewMovementRepository(db *DB) repository.MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Record(ctx context.Context, m domain.StockMovement) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stock_movements (id, movement_type, quantity_change, from_location, to_location, actor, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, string(m.Type), m.QuantityChange,
			nullIfEmpty(m.FromLocation), nullIfEmpty(m.ToLocation),
			m.Actor, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		switch m.Type {
		case domain.MovementTransfer:
			if err := addStock(ctx, tx, m.FromLocation, -m.QuantityChange); err != nil {
				return err
			}
			if err := addStock(ctx, tx, m.ToLocation, m.QuantityChange); err != nil {
				return err
			}
		case domain.MovementProduction:
			if err := addStock(ctx, tx, m.ToLocation, m.QuantityChange); err != nil {
				return err
			}
		case domain.MovementAdjustment:
			if err := addStock(ctx, tx, m.ToLocation, m.QuantityChange); err != nil {
				return err
			}
		default:
			// distribution and disposal carry a negative delta at the source
			if err := addStock(ctx, tx, m.FromLocation, m.QuantityChange); err != nil {
				return err
			}
		}

		return nil
	})
}

func addStock(ctx context.Context, tx *sql.Tx, name string, delta int) error {
	if name == "" || delta == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE locations
		SET current_stock = GREATEST(current_stock + $1, 0), updated_at = NOW()
		WHERE name = $2`,
		delta, name,
	)
	if err != nil {
		return fmt.Errorf("update stock for %s: %w", name, err)
	}
	return nil
}

func (r *movementRepository) Recent(ctx context.Context, limit int) ([]domain.StockMovement, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []movementRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, movement_type, quantity_change, from_location, to_location, actor, created_at
		FROM stock_movements
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error getting recent movements: %w", err)
	}

	movements := make([]domain.StockMovement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, domain.StockMovement{
			ID:             row.ID,
			Type:           domain.MovementType(row.MovementType),
			QuantityChange: row.QuantityChange,
			FromLocation:   row.FromLocation.String,
			ToLocation:     row.ToLocation.String,
			Actor:          row.Actor,
			CreatedAt:      row.CreatedAt,
		})
	}

	return movements, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
