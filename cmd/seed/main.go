// cmd/seed/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Create the schema and seed the sample medicine network",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Create tables (idempotent)",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: func(c *cli.Context) error {
					return withDB(c, createSchema)
				},
			},
			{
				Name:  "fleet",
				Usage: "Insert the sample locations and their demand history",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: func(c *cli.Context) error {
					return withDB(c, seedFleet)
				},
			},
			{
				Name:  "all",
				Usage: "Create the schema, then seed the sample fleet",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: func(c *cli.Context) error {
					return withDB(c, func(ctx context.Context, db *sql.DB) error {
						if err := createSchema(ctx, db); err != nil {
							return err
						}
						return seedFleet(ctx, db)
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withDB(c *cli.Context, fn func(context.Context, *sql.DB) error) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return fn(c.Context, db)
}

func createSchema(ctx context.Context, db *sql.DB) error {
	log.Println("Creating schema...")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			name              TEXT PRIMARY KEY,
			location_type     TEXT NOT NULL,
			population_served INTEGER NOT NULL DEFAULT 0,
			current_stock     INTEGER NOT NULL DEFAULT 0,
			reorder_threshold INTEGER NOT NULL DEFAULT 0,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS demand_history (
			id            BIGSERIAL PRIMARY KEY,
			location_name TEXT NOT NULL REFERENCES locations(name) ON DELETE CASCADE,
			consumed      DOUBLE PRECISION NOT NULL,
			recorded_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_demand_history_location
			ON demand_history (location_name, recorded_at DESC)`,
		`CREATE TABLE IF NOT EXISTS stock_movements (
			id              UUID PRIMARY KEY,
			movement_type   TEXT NOT NULL,
			quantity_change INTEGER NOT NULL,
			from_location   TEXT REFERENCES locations(name),
			to_location     TEXT REFERENCES locations(name),
			actor           TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_movements_created
			ON stock_movements (created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	log.Println("Schema created successfully!")
	return nil
}

type fleetEntry struct {
	name       string
	kind       string
	population int
	stock      int
	threshold  int
	history    []float64
}

func seedFleet(ctx context.Context, db *sql.DB) error {
	log.Println("Seeding sample fleet...")

	fleet := []fleetEntry{
		{"City_Hospital", "hospital", 50000, 150, 100, []float64{20, 25, 22, 28, 24, 26, 23}},
		{"Central_Pharmacy", "pharmacy", 20000, 80, 50, []float64{15, 18, 16, 14, 17, 19, 16}},
		{"Rural_Clinic", "clinic", 5000, 25, 40, []float64{8, 12, 10, 9, 11, 13, 10}},
		{"District_Hospital", "hospital", 80000, 200, 120, []float64{30, 35, 32, 38, 34, 36, 33}},
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range fleet {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO locations (name, location_type, population_served, current_stock, reorder_threshold)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO UPDATE SET
				location_type = EXCLUDED.location_type,
				population_served = EXCLUDED.population_served,
				current_stock = EXCLUDED.current_stock,
				reorder_threshold = EXCLUDED.reorder_threshold,
				updated_at = NOW()`,
			entry.name, entry.kind, entry.population, entry.stock, entry.threshold,
		); err != nil {
			return fmt.Errorf("failed to seed location %s: %w", entry.name, err)
		}

		// Re-seeding replaces the history rather than stacking duplicates.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM demand_history WHERE location_name = $1`, entry.name,
		); err != nil {
			return fmt.Errorf("failed to clear history for %s: %w", entry.name, err)
		}

		// Oldest observation first, spaced one day apart ending yesterday.
		days := len(entry.history)
		for i, consumed := range entry.history {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO demand_history (location_name, consumed, recorded_at)
				VALUES ($1, $2, NOW() - make_interval(days => $3))`,
				entry.name, consumed, days-i,
			); err != nil {
				return fmt.Errorf("failed to seed history for %s: %w", entry.name, err)
			}
		}

		log.Printf("Seeded %s (%d history points)\n", entry.name, days)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Sample fleet seeded successfully!")
	return nil
}
