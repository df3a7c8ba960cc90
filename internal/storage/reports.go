package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
)

// ReportUploader renders cycle reports to CSV and pushes them to object
// storage under a timestamped key.
type ReportUploader struct {
	store ObjectStorage
}

// NewReportUploader builds an uploader over the given storage backend.
func NewReportUploader(store ObjectStorage) *ReportUploader {
	return &ReportUploader{store: store}
}

// Upload writes one report as reports/cycle_<timestamp>.csv.
func (u *ReportUploader) Upload(ctx context.Context, report *domain.CycleReport) (string, error) {
	body, err := RenderReportCSV(report)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reports/cycle_%s.csv", report.RunAt.UTC().Format("20060102T150405Z"))
	if err := u.store.Upload(ctx, key, body, "text/csv"); err != nil {
		return "", err
	}
	return key, nil
}

// RenderReportCSV flattens a cycle report into one row per location plus
// one row per proposal.
func RenderReportCSV(report *domain.CycleReport) ([]byte, error) {
	assessmentsByName := make(map[string]domain.RiskAssessment, len(report.Assessments))
	for _, a := range report.Assessments {
		assessmentsByName[a.Location] = a
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"record", "location", "current_stock", "reorder_threshold", "condition",
		"risk_score", "status", "predicted_7day_demand", "days_until_shortage",
		"from", "to", "amount", "urgency"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, s := range report.Statuses {
		row := []string{"location", s.Location,
			strconv.Itoa(s.CurrentStock), strconv.Itoa(s.Threshold), string(s.Condition),
			"", "", "", "", "", "", "", ""}
		if a, ok := assessmentsByName[s.Location]; ok {
			row[5] = strconv.Itoa(a.RiskScore)
			row[6] = string(a.Status)
			row[7] = strconv.FormatFloat(a.PredictedDemand, 'f', 1, 64)
			if !math.IsInf(a.DaysUntilShortage, 1) {
				row[8] = strconv.FormatFloat(a.DaysUntilShortage, 'f', 1, 64)
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	for _, p := range report.Proposals {
		row := []string{"proposal", "", "", "", "", "", "", "", "",
			p.From, p.To, strconv.Itoa(p.Amount), string(p.Urgency)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
