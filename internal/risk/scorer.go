// internal/risk/scorer.go
package risk

import (
	"context"
	"errors"
	"math"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultHorizonDays is the forecast horizon risk scoring looks at.
const DefaultHorizonDays = 7

// Scoring weights. Components are additive, not mutually exclusive.
const (
	weightBelowThreshold = 50
	weightShortRunway    = 30
	weightDemandExceeds  = 20
	maxScore             = 100
)

// Forecaster is the slice of the forecast adapter the scorer needs.
type Forecaster interface {
	Predict(location string, horizonDays int) ([]float64, error)
}

// Scorer computes shortage risk assessments. It is a pure reader: no state
// is mutated, and assessing the same inputs twice yields identical output.
type Scorer struct {
	forecaster Forecaster
	horizon    int
}

// NewScorer builds a Scorer over the given forecaster.
func NewScorer(forecaster Forecaster) *Scorer {
	return &Scorer{
		forecaster: forecaster,
		horizon:    DefaultHorizonDays,
	}
}

// Assess scores one location from its snapshot state and forecast demand.
// Returns ErrInsufficientData (wrapped) when no usable forecast exists.
func (s *Scorer) Assess(loc domain.Location) (domain.RiskAssessment, error) {
	predicted, err := s.forecaster.Predict(loc.Name, s.horizon)
	if err != nil {
		return domain.RiskAssessment{}, err
	}
	if len(predicted) == 0 {
		return domain.RiskAssessment{}, domain.ErrInsufficientData
	}

	var total float64
	for _, v := range predicted {
		total += v
	}
	avgDaily := total / float64(len(predicted))

	daysUntilShortage := math.Inf(1)
	if avgDaily > 0 {
		daysUntilShortage = float64(loc.CurrentStock) / avgDaily
	}

	score := 0
	if loc.CurrentStock < loc.Threshold {
		score += weightBelowThreshold
	}
	if daysUntilShortage < float64(s.horizon) {
		score += weightShortRunway
	}
	if total > float64(loc.CurrentStock) {
		score += weightDemandExceeds
	}
	if score > maxScore {
		score = maxScore
	}

	return domain.RiskAssessment{
		Location:          loc.Name,
		RiskScore:         score,
		Status:            domain.StatusForScore(score),
		CurrentStock:      loc.CurrentStock,
		PredictedDemand:   total,
		DaysUntilShortage: daysUntilShortage,
	}, nil
}

// AssessAll scores a snapshot of locations in parallel. Output order follows
// the snapshot. Locations without enough demand data are excluded from the
// result set; an unknown location fails only its own slot.
func (s *Scorer) AssessAll(ctx context.Context, snapshot []domain.Location) []domain.RiskAssessment {
	slots := make([]*domain.RiskAssessment, len(snapshot))

	g, _ := errgroup.WithContext(ctx)
	for i, loc := range snapshot {
		g.Go(func() error {
			assessment, err := s.Assess(loc)
			if err != nil {
				if !errors.Is(err, domain.ErrInsufficientData) {
					log.Warn().Err(err).Str("location", loc.Name).Msg("risk assessment skipped")
				}
				return nil
			}
			slots[i] = &assessment
			return nil
		})
	}
	_ = g.Wait()

	assessments := make([]domain.RiskAssessment, 0, len(snapshot))
	for _, slot := range slots {
		if slot != nil {
			assessments = append(assessments, *slot)
		}
	}

	return assessments
}
