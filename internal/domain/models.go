// internal/domain/models.go
package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Location represents a stocked facility in the distribution network.
type Location struct {
	Name             string       `json:"name" db:"name"`
	Type             LocationType `json:"type" db:"location_type"`
	PopulationServed int          `json:"population_served" db:"population_served"`
	CurrentStock     int          `json:"current_stock" db:"current_stock"`
	Threshold        int          `json:"reorder_threshold" db:"reorder_threshold"`
}

// RiskAssessment is the per-cycle shortage evaluation of one location.
// It is derived data: recomputed every cycle, never the source of truth.
type RiskAssessment struct {
	Location           string     `json:"location"`
	RiskScore          int        `json:"risk_score"`
	Status             RiskStatus `json:"status"`
	CurrentStock       int        `json:"current_stock"`
	PredictedDemand    float64    `json:"predicted_7day_demand"`
	DaysUntilShortage  float64    `json:"-"`
}

// riskAssessmentJSON mirrors RiskAssessment for wire encoding; a location
// with zero average demand has an infinite runway, which JSON numbers
// cannot carry, so days_until_shortage becomes null in that case.
type riskAssessmentJSON struct {
	Location          string     `json:"location"`
	RiskScore         int        `json:"risk_score"`
	Status            RiskStatus `json:"status"`
	CurrentStock      int        `json:"current_stock"`
	PredictedDemand   float64    `json:"predicted_7day_demand"`
	DaysUntilShortage *float64   `json:"days_until_shortage"`
}

func (r RiskAssessment) MarshalJSON() ([]byte, error) {
	out := riskAssessmentJSON{
		Location:        r.Location,
		RiskScore:       r.RiskScore,
		Status:          r.Status,
		CurrentStock:    r.CurrentStock,
		PredictedDemand: r.PredictedDemand,
	}
	if !math.IsInf(r.DaysUntilShortage, 1) {
		d := r.DaysUntilShortage
		out.DaysUntilShortage = &d
	}
	return json.Marshal(out)
}

func (r *RiskAssessment) UnmarshalJSON(data []byte) error {
	var in riskAssessmentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Location = in.Location
	r.RiskScore = in.RiskScore
	r.Status = in.Status
	r.CurrentStock = in.CurrentStock
	r.PredictedDemand = in.PredictedDemand
	if in.DaysUntilShortage != nil {
		r.DaysUntilShortage = *in.DaysUntilShortage
	} else {
		r.DaysUntilShortage = math.Inf(1)
	}
	return nil
}

// TransferProposal is a recommended stock transfer. Proposals are advisory,
// not reservations: stock may have moved by the time one is applied.
type TransferProposal struct {
	From     string     `json:"from"`
	To       string     `json:"to"`
	Medicine string     `json:"medicine"`
	Amount   int        `json:"amount"`
	Urgency  RiskStatus `json:"urgency"`
	Reason   string     `json:"reason"`
}

// StockMovement is an immutable audit record of a stock quantity change.
// QuantityChange is signed: negative for consumption and disposal, the
// moved amount for transfers (from/to populated), the delta for adjustments.
type StockMovement struct {
	ID             string       `json:"id" db:"id"`
	Type           MovementType `json:"movement_type" db:"movement_type"`
	QuantityChange int          `json:"quantity_change" db:"quantity_change"`
	FromLocation   string       `json:"from_location,omitempty" db:"from_location"`
	ToLocation     string       `json:"to_location,omitempty" db:"to_location"`
	Actor          string       `json:"actor" db:"actor"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// DemandPrediction is the forecast view for one location over the horizon.
type DemandPrediction struct {
	Location string    `json:"location"`
	Daily    []float64 `json:"daily"`
	Total    float64   `json:"total"`
	AvgDaily float64   `json:"avg_daily"`
}

// InventoryStatus is the dashboard line for one location.
type InventoryStatus struct {
	Location     string         `json:"location"`
	Type         LocationType   `json:"type"`
	CurrentStock int            `json:"current_stock"`
	Threshold    int            `json:"reorder_threshold"`
	Condition    StockCondition `json:"condition"`
}

// LowStockAlert flags a location whose stock has fallen under its threshold.
type LowStockAlert struct {
	Location     string `json:"location"`
	CurrentStock int    `json:"current_stock"`
	Threshold    int    `json:"reorder_threshold"`
}

// CycleReport bundles everything one evaluation cycle produced for the
// reporting boundary: inventory status, predictions, assessments, proposals.
type CycleReport struct {
	RunAt       time.Time          `json:"run_at"`
	Statuses    []InventoryStatus  `json:"statuses"`
	Predictions []DemandPrediction `json:"predictions"`
	Assessments []RiskAssessment   `json:"assessments"`
	Proposals   []TransferProposal `json:"proposals"`
	LowStock    []LowStockAlert    `json:"low_stock_alerts"`
}

// CriticalLocations lists the locations the cycle classified CRITICAL.
func (r *CycleReport) CriticalLocations() []string {
	var names []string
	for _, a := range r.Assessments {
		if a.Status == StatusCritical {
			names = append(names, a.Location)
		}
	}
	return names
}
