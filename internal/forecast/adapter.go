// internal/forecast/adapter.go
package forecast

import (
	"fmt"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
)

// DefaultWindow is the demand history window size fed to the model.
const DefaultWindow = 7

// HistorySource supplies a location's record and its trailing consumption
// window. The ledger registry implements it.
type HistorySource interface {
	LocationHistory(name string) (domain.Location, []float64, error)
}

// Adapter turns the one-step Predictor into a multi-day forecast. Each
// predicted day is appended to the rolling window so later days feed on
// earlier predictions.
type Adapter struct {
	source HistorySource
	model  Predictor
	window int
}

// NewAdapter builds an Adapter over a history source and a predictor. The
// window must match the history source's demand window so the trailing trim
// and the source's eviction agree; non-positive falls back to DefaultWindow.
func NewAdapter(source HistorySource, model Predictor, window int) *Adapter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Adapter{
		source: source,
		model:  model,
		window: window,
	}
}

// Predict returns horizonDays daily demand estimates for the location.
// Estimates are clamped to a minimum of 1: demand is never modeled as zero.
// A non-positive horizon yields an empty sequence, not an error.
func (a *Adapter) Predict(name string, horizonDays int) ([]float64, error) {
	if horizonDays <= 0 {
		return []float64{}, nil
	}

	loc, history, err := a.source.LocationHistory(name)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no demand history for %s: %w", name, domain.ErrInsufficientData)
	}

	window := append([]float64(nil), history...)
	predictions := make([]float64, 0, horizonDays)

	for day := 0; day < horizonDays; day++ {
		tail := window
		if len(tail) > a.window {
			tail = tail[len(tail)-a.window:]
		}

		estimate := a.model.PredictOne(Features{
			Window:           tail,
			DayOfWeek:        day % 7,
			DayOfYear:        (day + 180) % 365,
			PopulationServed: loc.PopulationServed,
			LocationType:     loc.Type,
		})
		if estimate < 1 {
			estimate = 1
		}

		predictions = append(predictions, estimate)
		window = append(window, estimate)
	}

	return predictions, nil
}
