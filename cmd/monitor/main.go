// cmd/monitor/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/engine"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/forecast"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/ledger"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/planner"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository/memory"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/risk"
	"github.com/AmanS2501/Tech-Alpha-Hack/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// reportHolder keeps the latest report for the status endpoint.
type reportHolder struct {
	mu     sync.RWMutex
	report *domain.CycleReport
}

func (h *reportHolder) set(r *domain.CycleReport) {
	h.mu.Lock()
	h.report = r
	h.mu.Unlock()
}

func (h *reportHolder) get() *domain.CycleReport {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "monitor",
		Usage: "Run the in-memory fleet simulator and evaluation loop",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "interval",
				Usage:   "Seconds between simulated days",
				Value:   5,
				EnvVars: []string{"MONITOR_INTERVAL_SECONDS"},
			},
			&cli.IntFlag{
				Name:    "cycles",
				Usage:   "Number of cycles to run (0 runs until interrupted)",
				Value:   0,
				EnvVars: []string{"MONITOR_CYCLES"},
			},
			&cli.Int64Flag{
				Name:    "seed",
				Usage:   "Random seed for the demand simulator",
				Value:   42,
				EnvVars: []string{"MONITOR_SEED"},
			},
			&cli.StringFlag{
				Name:    "medicine",
				Usage:   "Commodity name stamped on transfer proposals",
				Value:   "paracetamol-500mg",
				EnvVars: []string{"ENGINE_MEDICINE"},
			},
			&cli.StringFlag{
				Name:    "status-port",
				Usage:   "Port for the status HTTP server",
				Value:   "8081",
				EnvVars: []string{"MONITOR_STATUS_PORT"},
			},
		},
		Action: runMonitor,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("monitor exited")
	}
}

func runMonitor(c *cli.Context) error {
	registry := ledger.NewRegistry(forecast.DefaultWindow)
	if err := engine.SampleFleet(registry); err != nil {
		return err
	}

	movements := memory.NewMovementRepository()
	led := ledger.NewLedger(registry, movements)
	adapter := forecast.NewAdapter(registry, forecast.NewSeasonalModel(), forecast.DefaultWindow)
	scorer := risk.NewScorer(adapter)
	pl := planner.NewPlanner(c.String("medicine"))

	eng := engine.New(registry, led, adapter, scorer, pl, engine.Options{
		Actor: "monitor",
	})

	holder := &reportHolder{}
	srv := startStatusServer(c.String("status-port"), holder)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := engine.NewSimulator(registry, led, c.Int64("seed"))
	interval := time.Duration(c.Int("interval")) * time.Second
	maxCycles := c.Int("cycles")

	logger.Log.Info().
		Int("locations", len(registry.Snapshot())).
		Int64("seed", c.Int64("seed")).
		Msg("starting fleet monitor")

	for cycle := 1; maxCycles == 0 || cycle <= maxCycles; cycle++ {
		events, err := sim.Step(ctx)
		if err != nil {
			return err
		}
		for _, ev := range events {
			logger.Log.Info().
				Str("location", ev.Location).
				Int("consumed", ev.Consumed).
				Int("stock", ev.StockAfter).
				Msg("daily consumption")
		}

		report, err := eng.RunCycle(ctx)
		if err != nil {
			return err
		}
		holder.set(report)

		if critical := report.CriticalLocations(); len(critical) > 0 {
			logger.Log.Warn().
				Strs("locations", critical).
				Msg("critical shortage risk detected")

			for i, p := range report.Proposals {
				if i >= 2 {
					break
				}
				logger.Log.Warn().
					Str("from", p.From).
					Str("to", p.To).
					Int("amount", p.Amount).
					Msg("recommended transfer")
			}
		}

		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("monitor interrupted")
			return nil
		case <-time.After(interval):
		}
	}

	logger.Log.Info().Msg("monitor finished")
	return nil
}

func startStatusServer(port string, holder *reportHolder) *http.Server {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		report := holder.get()
		if report == nil {
			http.Error(w, `{"error":"no cycle has run yet"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Info().Str("port", port).Msg("status server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error().Err(err).Msg("status server stopped")
		}
	}()

	return srv
}
