// internal/forecast/model.go
package forecast

import (
	"math"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
)

// Features is the one-step input vector the forecasting collaborator sees:
// the trailing demand window plus calendar and static location features.
type Features struct {
	Window           []float64
	DayOfWeek        int
	DayOfYear        int
	PopulationServed int
	LocationType     domain.LocationType
}

// Predictor produces a single-day demand estimate from a feature vector.
// Implementations must be deterministic at prediction time.
type Predictor interface {
	PredictOne(f Features) float64
}

// SeasonalModel is the built-in forecasting collaborator. It projects the
// trailing-window mean through an annual sine cycle and a weekend dampener,
// with a small uplift for facility types that front larger catchments.
type SeasonalModel struct {
	SeasonalAmplitude float64
	WeekendFactor     float64
	HospitalUplift    float64
}

// NewSeasonalModel returns a model with the calibrated defaults.
func NewSeasonalModel() *SeasonalModel {
	return &SeasonalModel{
		SeasonalAmplitude: 0.3,
		WeekendFactor:     0.7,
		HospitalUplift:    1.05,
	}
}

func (m *SeasonalModel) PredictOne(f Features) float64 {
	if len(f.Window) == 0 {
		return 0
	}

	var sum float64
	for _, v := range f.Window {
		sum += v
	}
	base := sum / float64(len(f.Window))

	seasonal := 1 + m.SeasonalAmplitude*math.Sin(2*math.Pi*float64(f.DayOfYear)/365)

	weekday := 1.0
	if f.DayOfWeek >= 5 {
		weekday = m.WeekendFactor
	}

	uplift := 1.0
	if f.LocationType == domain.LocationHospital {
		uplift = m.HospitalUplift
	}

	return base * seasonal * weekday * uplift
}
