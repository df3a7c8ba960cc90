package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/engine"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/forecast"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/ledger"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/planner"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/repository/memory"
	"github.com/AmanS2501/Tech-Alpha-Hack/internal/risk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := ledger.NewRegistry(forecast.DefaultWindow)
	require.NoError(t, engine.SampleFleet(registry))

	movements := memory.NewMovementRepository()
	led := ledger.NewLedger(registry, movements)
	adapter := forecast.NewAdapter(registry, forecast.NewSeasonalModel(), forecast.DefaultWindow)

	eng := engine.New(registry, led, adapter, risk.NewScorer(adapter), planner.NewPlanner("paracetamol-500mg"), engine.Options{
		Actor: "api-test",
	})

	return NewRouter(&Services{Engine: eng, Movements: movements}, nil)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRunCycleEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/engine/cycle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		Statuses    []json.RawMessage `json:"statuses"`
		Assessments []json.RawMessage `json:"assessments"`
		Proposals   []json.RawMessage `json:"proposals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Len(t, report.Statuses, 4)
	assert.Len(t, report.Assessments, 4)
	assert.NotEmpty(t, report.Proposals)
}

func TestProposalsTopQuery(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/engine/proposals?top=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Proposals []struct {
			To string `json:"to"`
		} `json:"proposals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Proposals, 1)
	assert.Equal(t, "Rural_Clinic", resp.Proposals[0].To)
}

func TestPredictionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/engine/predictions/City_Hospital?days=3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Location string    `json:"location"`
		Daily    []float64 `json:"daily"`
		Total    float64   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "City_Hospital", resp.Location)
	assert.Len(t, resp.Daily, 3)
	assert.Greater(t, resp.Total, 0.0)

	w = doJSON(t, router, http.MethodGet, "/api/v1/engine/predictions/Ghost_Town", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransferEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/transfers", map[string]any{
		"from": "District_Hospital", "to": "Rural_Clinic", "amount": 15,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var movement struct {
		Type           string `json:"movement_type"`
		QuantityChange int    `json:"quantity_change"`
		Actor          string `json:"actor"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movement))
	assert.Equal(t, "transfer", movement.Type)
	assert.Equal(t, 15, movement.QuantityChange)
	assert.Equal(t, "api-test", movement.Actor)
}

func TestTransferEndpointErrorMapping(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name     string
		payload  map[string]any
		wantCode int
	}{
		{
			name:     "unknown location",
			payload:  map[string]any{"from": "Ghost_Town", "to": "Rural_Clinic", "amount": 10},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "insufficient stock",
			payload:  map[string]any{"from": "Rural_Clinic", "to": "City_Hospital", "amount": 500},
			wantCode: http.StatusConflict,
		},
		{
			name:     "negative amount",
			payload:  map[string]any{"from": "City_Hospital", "to": "Rural_Clinic", "amount": -5},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing fields",
			payload:  map[string]any{"from": "City_Hospital"},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/transfers", tt.payload)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestConsumptionAndMovementsEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/consumption", map[string]any{
		"location": "Central_Pharmacy", "amount": 20, "actor": "nurse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/ledger/movements", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Movements []struct {
			Type           string `json:"movement_type"`
			QuantityChange int    `json:"quantity_change"`
			FromLocation   string `json:"from_location"`
		} `json:"movements"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Movements, 1)
	assert.Equal(t, "distribution", resp.Movements[0].Type)
	assert.Equal(t, -20, resp.Movements[0].QuantityChange)
	assert.Equal(t, "Central_Pharmacy", resp.Movements[0].FromLocation)
}

func TestAdjustmentEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/ledger/adjustments", map[string]any{
		"location": "Rural_Clinic", "new_quantity": 60, "actor": "auditor",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var movement struct {
		Type           string `json:"movement_type"`
		QuantityChange int    `json:"quantity_change"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &movement))
	assert.Equal(t, "adjustment", movement.Type)
	assert.Equal(t, 35, movement.QuantityChange)
}

func TestLocationEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/locations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Locations []struct {
			Name string `json:"name"`
		} `json:"locations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Locations, 4)
	assert.Equal(t, "Central_Pharmacy", list.Locations[0].Name)

	w = doJSON(t, router, http.MethodGet, "/api/v1/locations/Rural_Clinic", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Location struct {
			CurrentStock int `json:"current_stock"`
		} `json:"location"`
		DemandHistory []float64 `json:"demand_history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, 25, detail.Location.CurrentStock)
	assert.Len(t, detail.DemandHistory, 7)

	w = doJSON(t, router, http.MethodGet, "/api/v1/locations/Ghost_Town", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// fleetStore is an in-memory LocationRepository capturing writes.
type fleetStore struct {
	saved   []domain.Location
	history map[string][]float64
}

func newFleetStore() *fleetStore {
	return &fleetStore{history: map[string][]float64{}}
}

func (s *fleetStore) ListLocations(context.Context) ([]domain.Location, error) {
	return append([]domain.Location(nil), s.saved...), nil
}

func (s *fleetStore) GetDemandHistory(_ context.Context, name string, _ int) ([]float64, error) {
	return s.history[name], nil
}

func (s *fleetStore) SaveLocation(_ context.Context, loc domain.Location) error {
	s.saved = append(s.saved, loc)
	return nil
}

func (s *fleetStore) AppendDemand(_ context.Context, name string, consumed float64) error {
	s.history[name] = append(s.history[name], consumed)
	return nil
}

func TestRegisterLocationPersistsToStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := ledger.NewRegistry(forecast.DefaultWindow)
	movements := memory.NewMovementRepository()
	led := ledger.NewLedger(registry, movements)
	adapter := forecast.NewAdapter(registry, forecast.NewSeasonalModel(), forecast.DefaultWindow)
	eng := engine.New(registry, led, adapter, risk.NewScorer(adapter), planner.NewPlanner("paracetamol-500mg"), engine.Options{
		Actor: "api-test",
	})

	store := newFleetStore()
	router := NewRouter(&Services{Engine: eng, Movements: movements, Locations: store}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/locations", map[string]any{
		"name":              "Harbor_Warehouse",
		"type":              "warehouse",
		"current_stock":     400,
		"reorder_threshold": 150,
		"demand_history":    []float64{12, 14, 13},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// The registration reached the durable store, history included.
	require.Len(t, store.saved, 1)
	assert.Equal(t, "Harbor_Warehouse", store.saved[0].Name)
	assert.Equal(t, 400, store.saved[0].CurrentStock)
	assert.Equal(t, 150, store.saved[0].Threshold)
	assert.Equal(t, []float64{12, 14, 13}, store.history["Harbor_Warehouse"])
}

func TestRegisterLocationEndpoint(t *testing.T) {
	router := newTestRouter(t)

	payload := map[string]any{
		"name":              "Harbor_Warehouse",
		"type":              "warehouse",
		"population_served": 0,
		"current_stock":     400,
		"reorder_threshold": 150,
		"demand_history":    []float64{12, 14, 13},
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/locations", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Same name again conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/v1/locations", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown facility type is rejected.
	payload["name"] = "Weird_Site"
	payload["type"] = "submarine"
	w = doJSON(t, router, http.MethodPost, "/api/v1/locations", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
