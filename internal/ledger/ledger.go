// internal/ledger/ledger.go
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultLockTimeout bounds lock acquisition for a single mutation. A
// transfer that cannot take both location locks inside the bound fails
// fast with ErrBusy instead of risking deadlock.
const DefaultLockTimeout = 2 * time.Second

// Recorder receives every accepted stock movement. The postgres
// implementation also advances the persisted stock counters in the same
// transaction.
type Recorder interface {
	Record(ctx context.Context, movement domain.StockMovement) error
}

// DemandSink receives each observed consumption amount for durable
// demand-history storage. The in-memory window stays authoritative
// mid-run; a sink failure is logged, not rolled back.
type DemandSink interface {
	AppendDemand(ctx context.Context, name string, consumed float64) error
}

// Ledger applies stock mutations to the registry and appends one immutable
// movement record per accepted mutation. All mutations are all-or-nothing:
// a recorder failure rolls the stock change back.
type Ledger struct {
	registry    *Registry
	recorder    Recorder
	demand      DemandSink
	lockTimeout time.Duration
}

// NewLedger builds a Ledger over the registry and movement recorder.
func NewLedger(registry *Registry, recorder Recorder) *Ledger {
	return &Ledger{
		registry:    registry,
		recorder:    recorder,
		lockTimeout: DefaultLockTimeout,
	}
}

// SetDemandSink attaches the durable demand-history store. Without one,
// observed consumption lives only in the in-memory window.
func (l *Ledger) SetDemandSink(sink DemandSink) {
	l.demand = sink
}

// acquire takes the location locks in lexicographic name order, the fixed
// global order that keeps two crossing transfers from deadlocking.
func (l *Ledger) acquire(ctx context.Context, states ...*locationState) (release func(), err error) {
	ctx, cancel := context.WithTimeout(ctx, l.lockTimeout)
	defer cancel()

	ordered := append([]*locationState(nil), states...)
	if len(ordered) == 2 && ordered[0].loc.Name > ordered[1].loc.Name {
		ordered[0], ordered[1] = ordered[1], ordered[0]
	}

	held := make([]*locationState, 0, len(ordered))
	for _, state := range ordered {
		if err := state.lock.Acquire(ctx, 1); err != nil {
			for _, h := range held {
				h.lock.Release(1)
			}
			return nil, fmt.Errorf("lock %s: %w", state.loc.Name, domain.ErrBusy)
		}
		held = append(held, state)
	}

	return func() {
		for _, h := range held {
			h.lock.Release(1)
		}
	}, nil
}

func (l *Ledger) record(ctx context.Context, movement domain.StockMovement) error {
	if l.recorder == nil {
		return nil
	}
	return l.recorder.Record(ctx, movement)
}

func newMovement(t domain.MovementType, change int, from, to, actor string) domain.StockMovement {
	return domain.StockMovement{
		ID:             uuid.NewString(),
		Type:           t,
		QuantityChange: change,
		FromLocation:   from,
		ToLocation:     to,
		Actor:          actor,
		CreatedAt:      time.Now().UTC(),
	}
}

// ApplyTransfer moves proposal.Amount units from source to destination.
// Stock is conserved: the two counters change by equal and opposite
// amounts or not at all.
func (l *Ledger) ApplyTransfer(ctx context.Context, proposal domain.TransferProposal, actor string) (domain.StockMovement, error) {
	if proposal.Amount <= 0 {
		return domain.StockMovement{}, fmt.Errorf("transfer amount %d: %w", proposal.Amount, domain.ErrInvalidAmount)
	}

	src, err := l.registry.state(proposal.From)
	if err != nil {
		return domain.StockMovement{}, err
	}
	dst, err := l.registry.state(proposal.To)
	if err != nil {
		return domain.StockMovement{}, err
	}
	if src == dst {
		return domain.StockMovement{}, fmt.Errorf("transfer to self: %w", domain.ErrInvalidAmount)
	}

	release, err := l.acquire(ctx, src, dst)
	if err != nil {
		return domain.StockMovement{}, err
	}
	defer release()

	// Both sides move under both field locks so no snapshot ever sees a
	// half-applied transfer.
	moveBoth := func(amount int) error {
		src.mu.Lock()
		dst.mu.Lock()
		defer src.mu.Unlock()
		defer dst.mu.Unlock()

		if src.loc.CurrentStock+amount < 0 || dst.loc.CurrentStock-amount < 0 {
			return fmt.Errorf("%s holds %d, need %d: %w",
				proposal.From, src.loc.CurrentStock, -amount, domain.ErrInsufficientStock)
		}
		src.loc.CurrentStock += amount
		dst.loc.CurrentStock -= amount
		return nil
	}

	// Proposals are advisory, not reservations: stock may have moved since
	// issuance, so the check runs at application time.
	if err := moveBoth(-proposal.Amount); err != nil {
		return domain.StockMovement{}, err
	}

	movement := newMovement(domain.MovementTransfer, proposal.Amount, proposal.From, proposal.To, actor)
	if err := l.record(ctx, movement); err != nil {
		_ = moveBoth(proposal.Amount)
		return domain.StockMovement{}, fmt.Errorf("record transfer: %w", err)
	}

	log.Debug().
		Str("from", proposal.From).
		Str("to", proposal.To).
		Int("amount", proposal.Amount).
		Msg("transfer applied")

	return movement, nil
}

// ApplyConsumption records a consumption event: stock drops by amount,
// clamped at zero, and the observed amount enters the demand window.
func (l *Ledger) ApplyConsumption(ctx context.Context, name string, amount int, actor string) (domain.StockMovement, error) {
	if amount < 0 {
		return domain.StockMovement{}, fmt.Errorf("consumption amount %d: %w", amount, domain.ErrInvalidAmount)
	}

	state, err := l.registry.state(name)
	if err != nil {
		return domain.StockMovement{}, err
	}

	release, err := l.acquire(ctx, state)
	if err != nil {
		return domain.StockMovement{}, err
	}
	defer release()

	state.mu.Lock()
	applied := amount
	if applied > state.loc.CurrentStock {
		applied = state.loc.CurrentStock
	}
	prevHistory := append([]float64(nil), state.history...)
	state.loc.CurrentStock -= applied
	state.appendObservation(float64(amount), l.registry.window)
	state.mu.Unlock()

	movement := newMovement(domain.MovementDistribution, -applied, name, "", actor)
	if err := l.record(ctx, movement); err != nil {
		state.mu.Lock()
		state.loc.CurrentStock += applied
		state.history = prevHistory
		state.mu.Unlock()
		return domain.StockMovement{}, fmt.Errorf("record consumption: %w", err)
	}

	// The durable history mirrors the in-memory window: the observed
	// demand, not the clamped delta.
	if l.demand != nil {
		if err := l.demand.AppendDemand(ctx, name, float64(amount)); err != nil {
			log.Warn().Err(err).Str("location", name).Msg("durable demand append failed")
		}
	}

	return movement, nil
}

// ApplyAdjustment sets an absolute stock level and records the delta.
func (l *Ledger) ApplyAdjustment(ctx context.Context, name string, newQuantity int, actor string) (domain.StockMovement, error) {
	if newQuantity < 0 {
		return domain.StockMovement{}, fmt.Errorf("adjustment to %d: %w", newQuantity, domain.ErrInvalidAmount)
	}

	state, err := l.registry.state(name)
	if err != nil {
		return domain.StockMovement{}, err
	}

	release, err := l.acquire(ctx, state)
	if err != nil {
		return domain.StockMovement{}, err
	}
	defer release()

	state.mu.Lock()
	delta := newQuantity - state.loc.CurrentStock
	previous := state.loc.CurrentStock
	state.loc.CurrentStock = newQuantity
	state.mu.Unlock()

	movement := newMovement(domain.MovementAdjustment, delta, "", name, actor)
	if err := l.record(ctx, movement); err != nil {
		state.mu.Lock()
		state.loc.CurrentStock = previous
		state.mu.Unlock()
		return domain.StockMovement{}, fmt.Errorf("record adjustment: %w", err)
	}

	return movement, nil
}

// ApplyProduction adds newly produced stock at a location.
func (l *Ledger) ApplyProduction(ctx context.Context, name string, amount int, actor string) (domain.StockMovement, error) {
	if amount <= 0 {
		return domain.StockMovement{}, fmt.Errorf("production amount %d: %w", amount, domain.ErrInvalidAmount)
	}

	state, err := l.registry.state(name)
	if err != nil {
		return domain.StockMovement{}, err
	}

	release, err := l.acquire(ctx, state)
	if err != nil {
		return domain.StockMovement{}, err
	}
	defer release()

	state.mu.Lock()
	state.loc.CurrentStock += amount
	state.mu.Unlock()

	movement := newMovement(domain.MovementProduction, amount, "", name, actor)
	if err := l.record(ctx, movement); err != nil {
		state.mu.Lock()
		state.loc.CurrentStock -= amount
		state.mu.Unlock()
		return domain.StockMovement{}, fmt.Errorf("record production: %w", err)
	}

	return movement, nil
}

// ApplyDisposal removes expired or damaged stock. Unlike consumption,
// disposing more than is on hand is an error rather than a clamp.
func (l *Ledger) ApplyDisposal(ctx context.Context, name string, amount int, actor string) (domain.StockMovement, error) {
	if amount <= 0 {
		return domain.StockMovement{}, fmt.Errorf("disposal amount %d: %w", amount, domain.ErrInvalidAmount)
	}

	state, err := l.registry.state(name)
	if err != nil {
		return domain.StockMovement{}, err
	}

	release, err := l.acquire(ctx, state)
	if err != nil {
		return domain.StockMovement{}, err
	}
	defer release()

	state.mu.Lock()
	if state.loc.CurrentStock < amount {
		held := state.loc.CurrentStock
		state.mu.Unlock()
		return domain.StockMovement{}, fmt.Errorf("%s holds %d, disposing %d: %w",
			name, held, amount, domain.ErrInsufficientStock)
	}
	state.loc.CurrentStock -= amount
	state.mu.Unlock()

	movement := newMovement(domain.MovementDisposal, -amount, name, "", actor)
	if err := l.record(ctx, movement); err != nil {
		state.mu.Lock()
		state.loc.CurrentStock += amount
		state.mu.Unlock()
		return domain.StockMovement{}, fmt.Errorf("record disposal: %w", err)
	}

	return movement, nil
}
