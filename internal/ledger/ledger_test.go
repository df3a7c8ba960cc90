package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingRecorder keeps every accepted movement; fail switches it into a
// recorder that rejects everything.
type capturingRecorder struct {
	mu        sync.Mutex
	movements []domain.StockMovement
	fail      bool
}

func (r *capturingRecorder) Record(_ context.Context, m domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("recorder down")
	}
	r.movements = append(r.movements, m)
	return nil
}

func (r *capturingRecorder) last(t *testing.T) domain.StockMovement {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.movements)
	return r.movements[len(r.movements)-1]
}

func newTestLedger(t *testing.T) (*Ledger, *Registry, *capturingRecorder) {
	t.Helper()

	registry := NewRegistry(7)
	require.NoError(t, registry.Register(
		domain.Location{Name: "Depot", Type: domain.LocationWarehouse, CurrentStock: 200, Threshold: 100},
		[]float64{10, 10, 10},
	))
	require.NoError(t, registry.Register(
		domain.Location{Name: "Clinic", Type: domain.LocationClinic, CurrentStock: 30, Threshold: 40},
		[]float64{5, 5, 5},
	))

	recorder := &capturingRecorder{}
	return NewLedger(registry, recorder), registry, recorder
}

func stockOf(t *testing.T, r *Registry, name string) int {
	t.Helper()
	loc, err := r.Get(name)
	require.NoError(t, err)
	return loc.CurrentStock
}

func TestApplyTransferConservesStock(t *testing.T) {
	led, registry, recorder := newTestLedger(t)
	before := registry.TotalStock()

	movement, err := led.ApplyTransfer(context.Background(), domain.TransferProposal{
		From: "Depot", To: "Clinic", Amount: 50,
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, 150, stockOf(t, registry, "Depot"))
	assert.Equal(t, 80, stockOf(t, registry, "Clinic"))
	assert.Equal(t, before, registry.TotalStock())

	assert.Equal(t, domain.MovementTransfer, movement.Type)
	assert.Equal(t, 50, movement.QuantityChange)
	assert.Equal(t, "Depot", movement.FromLocation)
	assert.Equal(t, "Clinic", movement.ToLocation)
	assert.Equal(t, "tester", movement.Actor)
	assert.NotEmpty(t, movement.ID)
	assert.Equal(t, movement, recorder.last(t))
}

func TestApplyTransferInsufficientStock(t *testing.T) {
	led, registry, recorder := newTestLedger(t)

	_, err := led.ApplyTransfer(context.Background(), domain.TransferProposal{
		From: "Clinic", To: "Depot", Amount: 50,
	}, "tester")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Neither side moved and nothing was recorded.
	assert.Equal(t, 30, stockOf(t, registry, "Clinic"))
	assert.Equal(t, 200, stockOf(t, registry, "Depot"))
	assert.Empty(t, recorder.movements)
}

func TestApplyTransferInvalidAmount(t *testing.T) {
	led, _, _ := newTestLedger(t)

	for _, amount := range []int{0, -10} {
		_, err := led.ApplyTransfer(context.Background(), domain.TransferProposal{
			From: "Depot", To: "Clinic", Amount: amount,
		}, "tester")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
}

func TestApplyTransferSelfTransfer(t *testing.T) {
	led, _, _ := newTestLedger(t)

	_, err := led.ApplyTransfer(context.Background(), domain.TransferProposal{
		From: "Depot", To: "Depot", Amount: 10,
	}, "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestApplyTransferUnknownLocation(t *testing.T) {
	led, _, _ := newTestLedger(t)

	_, err := led.ApplyTransfer(context.Background(), domain.TransferProposal{
		From: "Ghost_Town", To: "Clinic", Amount: 10,
	}, "tester")
	assert.ErrorIs(t, err, domain.ErrUnknownLocation)
}

func TestApplyTransferRollsBackOnRecorderFailure(t *testing.T) {
	led, registry, recorder := newTestLedger(t)
	recorder.fail = true

	_, err := led.ApplyTransfer(context.Background(), domain.TransferProposal{
		From: "Depot", To: "Clinic", Amount: 50,
	}, "tester")
	require.Error(t, err)

	assert.Equal(t, 200, stockOf(t, registry, "Depot"))
	assert.Equal(t, 30, stockOf(t, registry, "Clinic"))
}

func TestApplyConsumption(t *testing.T) {
	led, registry, recorder := newTestLedger(t)

	movement, err := led.ApplyConsumption(context.Background(), "Clinic", 12, "nurse")
	require.NoError(t, err)

	assert.Equal(t, 18, stockOf(t, registry, "Clinic"))
	assert.Equal(t, domain.MovementDistribution, movement.Type)
	assert.Equal(t, -12, movement.QuantityChange)
	assert.Equal(t, "Clinic", movement.FromLocation)
	assert.Empty(t, movement.ToLocation)

	_, history, err := registry.LocationHistory("Clinic")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5, 12}, history)
	assert.Len(t, recorder.movements, 1)
}

func TestApplyConsumptionClampsAtZero(t *testing.T) {
	led, registry, _ := newTestLedger(t)

	// Demand of 45 against 30 on hand: stock floors at zero but the full
	// observed demand enters the window.
	movement, err := led.ApplyConsumption(context.Background(), "Clinic", 45, "nurse")
	require.NoError(t, err)

	assert.Equal(t, 0, stockOf(t, registry, "Clinic"))
	assert.Equal(t, -30, movement.QuantityChange)

	_, history, err := registry.LocationHistory("Clinic")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5, 45}, history)
}

func TestApplyConsumptionNegativeAmount(t *testing.T) {
	led, _, _ := newTestLedger(t)

	_, err := led.ApplyConsumption(context.Background(), "Clinic", -5, "nurse")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestApplyConsumptionEvictsOldestObservation(t *testing.T) {
	registry := NewRegistry(3)
	require.NoError(t, registry.Register(
		domain.Location{Name: "Depot", CurrentStock: 1000},
		[]float64{1, 2, 3},
	))
	led := NewLedger(registry, nil)

	_, err := led.ApplyConsumption(context.Background(), "Depot", 4, "tester")
	require.NoError(t, err)

	_, history, err := registry.LocationHistory("Depot")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, history)
}

func TestApplyConsumptionRollsBackOnRecorderFailure(t *testing.T) {
	led, registry, recorder := newTestLedger(t)
	recorder.fail = true

	_, err := led.ApplyConsumption(context.Background(), "Clinic", 12, "nurse")
	require.Error(t, err)

	assert.Equal(t, 30, stockOf(t, registry, "Clinic"))
	_, history, err := registry.LocationHistory("Clinic")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5}, history)
}

// capturingSink records durable demand appends; fail switches it into a sink
// that rejects everything.
type capturingSink struct {
	mu      sync.Mutex
	appends []struct {
		name     string
		consumed float64
	}
	fail bool
}

func (s *capturingSink) AppendDemand(_ context.Context, name string, consumed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.appends = append(s.appends, struct {
		name     string
		consumed float64
	}{name, consumed})
	return nil
}

func TestApplyConsumptionAppendsToDemandSink(t *testing.T) {
	led, _, _ := newTestLedger(t)
	sink := &capturingSink{}
	led.SetDemandSink(sink)

	// Demand over the 30 on hand: the sink gets the observed demand, not the
	// clamped stock delta.
	_, err := led.ApplyConsumption(context.Background(), "Clinic", 45, "nurse")
	require.NoError(t, err)

	require.Len(t, sink.appends, 1)
	assert.Equal(t, "Clinic", sink.appends[0].name)
	assert.Equal(t, 45.0, sink.appends[0].consumed)
}

func TestApplyConsumptionSinkFailureIsNotFatal(t *testing.T) {
	led, registry, _ := newTestLedger(t)
	sink := &capturingSink{fail: true}
	led.SetDemandSink(sink)

	_, err := led.ApplyConsumption(context.Background(), "Clinic", 12, "nurse")
	require.NoError(t, err)

	// The in-memory state applied despite the sink rejection.
	assert.Equal(t, 18, stockOf(t, registry, "Clinic"))
	_, history, err := registry.LocationHistory("Clinic")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5, 12}, history)
}

func TestApplyAdjustment(t *testing.T) {
	led, registry, recorder := newTestLedger(t)

	movement, err := led.ApplyAdjustment(context.Background(), "Clinic", 75, "auditor")
	require.NoError(t, err)

	assert.Equal(t, 75, stockOf(t, registry, "Clinic"))
	assert.Equal(t, domain.MovementAdjustment, movement.Type)
	assert.Equal(t, 45, movement.QuantityChange)
	assert.Equal(t, "Clinic", movement.ToLocation)
	assert.Len(t, recorder.movements, 1)

	// Adjusting downward records a negative delta.
	movement, err = led.ApplyAdjustment(context.Background(), "Clinic", 60, "auditor")
	require.NoError(t, err)
	assert.Equal(t, -15, movement.QuantityChange)
}

func TestApplyAdjustmentNegativeTarget(t *testing.T) {
	led, _, _ := newTestLedger(t)

	_, err := led.ApplyAdjustment(context.Background(), "Clinic", -1, "auditor")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestApplyProduction(t *testing.T) {
	led, registry, _ := newTestLedger(t)

	movement, err := led.ApplyProduction(context.Background(), "Depot", 100, "plant")
	require.NoError(t, err)

	assert.Equal(t, 300, stockOf(t, registry, "Depot"))
	assert.Equal(t, domain.MovementProduction, movement.Type)
	assert.Equal(t, 100, movement.QuantityChange)
	assert.Equal(t, "Depot", movement.ToLocation)
}

func TestApplyDisposal(t *testing.T) {
	led, registry, _ := newTestLedger(t)

	movement, err := led.ApplyDisposal(context.Background(), "Depot", 40, "pharmacist")
	require.NoError(t, err)

	assert.Equal(t, 160, stockOf(t, registry, "Depot"))
	assert.Equal(t, domain.MovementDisposal, movement.Type)
	assert.Equal(t, -40, movement.QuantityChange)
	assert.Equal(t, "Depot", movement.FromLocation)
}

func TestApplyDisposalInsufficientStock(t *testing.T) {
	led, registry, _ := newTestLedger(t)

	// Unlike consumption, disposal never clamps.
	_, err := led.ApplyDisposal(context.Background(), "Clinic", 31, "pharmacist")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 30, stockOf(t, registry, "Clinic"))
}

func TestApplyConsumptionBusyLocation(t *testing.T) {
	led, registry, _ := newTestLedger(t)
	led.lockTimeout = 20 * time.Millisecond

	state, err := registry.state("Clinic")
	require.NoError(t, err)
	require.NoError(t, state.lock.Acquire(context.Background(), 1))
	defer state.lock.Release(1)

	_, err = led.ApplyConsumption(context.Background(), "Clinic", 5, "nurse")
	assert.ErrorIs(t, err, domain.ErrBusy)
}

func TestApplyTransferBusyReleasesHeldLock(t *testing.T) {
	led, registry, _ := newTestLedger(t)
	led.lockTimeout = 20 * time.Millisecond

	// Hold the second lock in acquisition order; the first must come back.
	state, err := registry.state("Depot")
	require.NoError(t, err)
	require.NoError(t, state.lock.Acquire(context.Background(), 1))

	_, err = led.ApplyTransfer(context.Background(), domain.TransferProposal{
		From: "Depot", To: "Clinic", Amount: 10,
	}, "tester")
	require.ErrorIs(t, err, domain.ErrBusy)
	state.lock.Release(1)

	// The failed attempt must not leave Clinic locked.
	_, err = led.ApplyConsumption(context.Background(), "Clinic", 5, "nurse")
	assert.NoError(t, err)
}

func TestConcurrentCrossingTransfers(t *testing.T) {
	registry := NewRegistry(7)
	require.NoError(t, registry.Register(domain.Location{Name: "A", CurrentStock: 1000}, nil))
	require.NoError(t, registry.Register(domain.Location{Name: "B", CurrentStock: 1000}, nil))
	led := NewLedger(registry, &capturingRecorder{})

	var wg sync.WaitGroup
	transfer := func(from, to string) {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := led.ApplyTransfer(context.Background(), domain.TransferProposal{
				From: from, To: to, Amount: 1,
			}, "tester")
			assert.NoError(t, err)
		}
	}

	wg.Add(2)
	go transfer("A", "B")
	go transfer("B", "A")
	wg.Wait()

	assert.Equal(t, 2000, registry.TotalStock())
	assert.Equal(t, 1000, stockOf(t, registry, "A"))
	assert.Equal(t, 1000, stockOf(t, registry, "B"))
}
