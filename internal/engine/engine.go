// internal/engine/engine.go
package engine

import (
	"context"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/cache"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/forecast"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/ledger"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/planner"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/risk"
	"github.com/rs/zerolog/log"
)

// ReportSink receives finished cycle reports (object storage uploader).
type ReportSink interface {
	Upload(ctx context.Context, report *domain.CycleReport) (string, error)
}

// Engine drives one evaluation cycle: snapshot the fleet, forecast and
// score every location, plan redistributions, and publish the report.
type Engine struct {
	registry *ledger.Registry
	ledger   *ledger.Ledger
	adapter  *forecast.Adapter
	scorer   *risk.Scorer
	planner  *planner.Planner
	reports  cache.ReportCache
	sink     ReportSink
	horizon  int
	actor    string
}

// Options configures optional engine collaborators.
type Options struct {
	ReportCache cache.ReportCache
	ReportSink  ReportSink
	HorizonDays int
	Actor       string
}

// New assembles an engine over the shared registry and ledger.
func New(registry *ledger.Registry, led *ledger.Ledger, adapter *forecast.Adapter, scorer *risk.Scorer, pl *planner.Planner, opts Options) *Engine {
	reports := opts.ReportCache
	if reports == nil {
		reports = cache.NewNoopReportCache()
	}
	horizon := opts.HorizonDays
	if horizon <= 0 {
		horizon = risk.DefaultHorizonDays
	}
	actor := opts.Actor
	if actor == "" {
		actor = "engine"
	}

	return &Engine{
		registry: registry,
		ledger:   led,
		adapter:  adapter,
		scorer:   scorer,
		planner:  pl,
		reports:  reports,
		sink:     opts.ReportSink,
		horizon:  horizon,
		actor:    actor,
	}
}

// RunCycle executes one full evaluation pass against a consistent snapshot
// and caches the resulting report. Planning never fails; locations without
// enough data are simply absent from the assessment list.
func (e *Engine) RunCycle(ctx context.Context) (*domain.CycleReport, error) {
	started := time.Now().UTC()
	snapshot := e.registry.Snapshot()

	assessments := e.scorer.AssessAll(ctx, snapshot)
	proposals := e.planner.Plan(assessments, snapshot)

	report := &domain.CycleReport{
		RunAt:       started,
		Statuses:    make([]domain.InventoryStatus, 0, len(snapshot)),
		Predictions: make([]domain.DemandPrediction, 0, len(snapshot)),
		Assessments: assessments,
		Proposals:   proposals,
		LowStock:    make([]domain.LowStockAlert, 0),
	}

	for _, loc := range snapshot {
		report.Statuses = append(report.Statuses, domain.InventoryStatus{
			Location:     loc.Name,
			Type:         loc.Type,
			CurrentStock: loc.CurrentStock,
			Threshold:    loc.Threshold,
			Condition:    domain.ConditionFor(loc.CurrentStock, loc.Threshold),
		})

		if loc.CurrentStock < loc.Threshold {
			report.LowStock = append(report.LowStock, domain.LowStockAlert{
				Location:     loc.Name,
				CurrentStock: loc.CurrentStock,
				Threshold:    loc.Threshold,
			})
		}

		daily, err := e.adapter.Predict(loc.Name, e.horizon)
		if err != nil || len(daily) == 0 {
			continue
		}
		var total float64
		for _, v := range daily {
			total += v
		}
		report.Predictions = append(report.Predictions, domain.DemandPrediction{
			Location: loc.Name,
			Daily:    daily,
			Total:    total,
			AvgDaily: total / float64(len(daily)),
		})
	}

	if err := e.reports.SetLatest(ctx, report); err != nil {
		log.Warn().Err(err).Msg("engine: cache set report failed")
	}

	if e.sink != nil {
		if key, err := e.sink.Upload(ctx, report); err != nil {
			log.Warn().Err(err).Msg("engine: report upload failed")
		} else {
			log.Debug().Str("key", key).Msg("engine: report uploaded")
		}
	}

	log.Info().
		Int("locations", len(snapshot)).
		Int("assessed", len(assessments)).
		Int("proposals", len(proposals)).
		Dur("elapsed", time.Since(started)).
		Msg("evaluation cycle complete")

	return report, nil
}

// LatestReport returns the cached report, falling back to a fresh cycle
// when the cache is cold.
func (e *Engine) LatestReport(ctx context.Context) (*domain.CycleReport, error) {
	if report, ok, err := e.reports.GetLatest(ctx); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("engine: cache get report failed")
	}

	return e.RunCycle(ctx)
}

// ApplyProposal accepts a transfer proposal and applies it through the
// ledger. The cached report is invalidated since stock levels changed.
func (e *Engine) ApplyProposal(ctx context.Context, proposal domain.TransferProposal, actor string) (domain.StockMovement, error) {
	if actor == "" {
		actor = e.actor
	}

	movement, err := e.ledger.ApplyTransfer(ctx, proposal, actor)
	if err != nil {
		return domain.StockMovement{}, err
	}

	if err := e.reports.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("engine: cache invalidate failed")
	}

	return movement, nil
}

// Predict exposes the forecast view for one location.
func (e *Engine) Predict(location string, horizonDays int) ([]float64, error) {
	return e.adapter.Predict(location, horizonDays)
}

// Ledger returns the underlying ledger for direct mutations.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// Registry returns the underlying location registry.
func (e *Engine) Registry() *ledger.Registry {
	return e.registry
}
