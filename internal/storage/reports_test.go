package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"testing"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	key         string
	body        []byte
	contentType string
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, body []byte, contentType string) error {
	f.key = key
	f.body = body
	f.contentType = contentType
	return nil
}

func (f *fakeObjectStore) ListObjects(context.Context, string) ([]ObjectInfo, error) {
	return nil, nil
}

func sampleReport() *domain.CycleReport {
	return &domain.CycleReport{
		RunAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Statuses: []domain.InventoryStatus{
			{Location: "Depot", CurrentStock: 200, Threshold: 100, Condition: domain.ConditionNormal},
			{Location: "Rural_Clinic", CurrentStock: 25, Threshold: 40, Condition: domain.ConditionLow},
		},
		Assessments: []domain.RiskAssessment{
			{Location: "Rural_Clinic", RiskScore: 100, Status: domain.StatusCritical,
				CurrentStock: 25, PredictedDemand: 70, DaysUntilShortage: 2.5},
			{Location: "Depot", RiskScore: 0, Status: domain.StatusSafe,
				CurrentStock: 200, DaysUntilShortage: math.Inf(1)},
		},
		Proposals: []domain.TransferProposal{
			{From: "Depot", To: "Rural_Clinic", Amount: 15, Urgency: domain.StatusCritical},
		},
	}
}

func TestRenderReportCSV(t *testing.T) {
	body, err := RenderReportCSV(sampleReport())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)

	// Header, two location rows, one proposal row.
	require.Len(t, records, 4)
	assert.Equal(t, "record", records[0][0])
	assert.Equal(t, "location", records[0][1])

	depot := records[1]
	assert.Equal(t, "location", depot[0])
	assert.Equal(t, "Depot", depot[1])
	assert.Equal(t, "200", depot[2])
	assert.Equal(t, "NORMAL", depot[4])
	assert.Equal(t, "0", depot[5])
	// Infinite runway renders as an empty cell.
	assert.Empty(t, depot[8])

	clinic := records[2]
	assert.Equal(t, "Rural_Clinic", clinic[1])
	assert.Equal(t, "100", clinic[5])
	assert.Equal(t, "CRITICAL", clinic[6])
	assert.Equal(t, "70.0", clinic[7])
	assert.Equal(t, "2.5", clinic[8])

	proposal := records[3]
	assert.Equal(t, "proposal", proposal[0])
	assert.Equal(t, "Depot", proposal[9])
	assert.Equal(t, "Rural_Clinic", proposal[10])
	assert.Equal(t, "15", proposal[11])
	assert.Equal(t, "CRITICAL", proposal[12])
}

func TestUploadUsesTimestampedKey(t *testing.T) {
	store := &fakeObjectStore{}
	uploader := NewReportUploader(store)

	key, err := uploader.Upload(context.Background(), sampleReport())
	require.NoError(t, err)

	assert.Equal(t, "reports/cycle_20260314T093000Z.csv", key)
	assert.Equal(t, key, store.key)
	assert.Equal(t, "text/csv", store.contentType)
	assert.NotEmpty(t, store.body)
}
