package domain

import "strings"

// RiskStatus classifies a location's shortage risk.
type RiskStatus string

const (
	StatusSafe     RiskStatus = "SAFE"
	StatusWarning  RiskStatus = "WARNING"
	StatusCritical RiskStatus = "CRITICAL"
)

// StatusForScore maps a risk score to its status band. Cutoffs are strict:
// a score of exactly 70 is WARNING, exactly 40 is SAFE.
func StatusForScore(score int) RiskStatus {
	switch {
	case score > 70:
		return StatusCritical
	case score > 40:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// AtRisk reports whether the status marks a location as a deficit candidate.
func (s RiskStatus) AtRisk() bool {
	return s == StatusWarning || s == StatusCritical
}

// LocationType identifies the kind of facility a location is.
type LocationType string

const (
	LocationHospital    LocationType = "hospital"
	LocationPharmacy    LocationType = "pharmacy"
	LocationClinic      LocationType = "clinic"
	LocationWarehouse   LocationType = "warehouse"
	LocationColdStorage LocationType = "cold_storage"
	LocationShelf       LocationType = "shelf"
)

var locationTypes = map[string]LocationType{
	"hospital":     LocationHospital,
	"pharmacy":     LocationPharmacy,
	"clinic":       LocationClinic,
	"warehouse":    LocationWarehouse,
	"cold_storage": LocationColdStorage,
	"shelf":        LocationShelf,
}

// ParseLocationType returns the location type for a given label (case-insensitive).
func ParseLocationType(label string) (LocationType, bool) {
	t, ok := locationTypes[strings.ToLower(strings.TrimSpace(label))]

	return t, ok
}

// MovementType identifies the kind of stock movement recorded in the ledger.
type MovementType string

const (
	MovementProduction   MovementType = "production"
	MovementDistribution MovementType = "distribution"
	MovementTransfer     MovementType = "transfer"
	MovementAdjustment   MovementType = "adjustment"
	MovementDisposal     MovementType = "disposal"
)

// StockCondition is the coarse inventory status shown on dashboards.
// Unlike RiskStatus it looks only at stock vs threshold, no forecast.
type StockCondition string

const (
	ConditionNormal   StockCondition = "NORMAL"
	ConditionLow      StockCondition = "LOW"
	ConditionCritical StockCondition = "CRITICAL"
)

// ConditionFor classifies current stock against the reorder threshold:
// under half the threshold is CRITICAL, under the threshold is LOW.
func ConditionFor(currentStock, threshold int) StockCondition {
	switch {
	case float64(currentStock) < float64(threshold)*0.5:
		return ConditionCritical
	case currentStock < threshold:
		return ConditionLow
	default:
		return ConditionNormal
	}
}
