// internal/ledger/registry.go
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"golang.org/x/sync/semaphore"
)

// locationState is the single logical owner of one location's stock counter
// and demand window. The semaphore serializes whole mutations (bounded
// acquisition, see Ledger.acquire); mu guards field access so snapshot
// readers never observe a half-applied update.
type locationState struct {
	lock *semaphore.Weighted

	mu      sync.Mutex
	loc     domain.Location
	history []float64
}

func (s *locationState) snapshotLoc() domain.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

// Registry is the in-memory working set of locations the engine operates
// on. It is seeded from the persistence boundary at startup and mutated
// only through the Ledger.
type Registry struct {
	mu        sync.RWMutex
	locations map[string]*locationState
	window    int
}

// NewRegistry creates an empty registry with the given demand window size.
func NewRegistry(window int) *Registry {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Registry{
		locations: make(map[string]*locationState),
		window:    window,
	}
}

// DefaultWindow is the demand history window size.
const DefaultWindow = 7

// Register adds a location with its recent consumption history. History
// longer than the window is trimmed to the most recent entries.
func (r *Registry) Register(loc domain.Location, history []float64) error {
	if loc.Name == "" {
		return fmt.Errorf("location name required: %w", domain.ErrUnknownLocation)
	}
	if loc.CurrentStock < 0 || loc.Threshold < 0 || loc.PopulationServed < 0 {
		return fmt.Errorf("negative fields for %s: %w", loc.Name, domain.ErrInvalidAmount)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.locations[loc.Name]; exists {
		return fmt.Errorf("%s: %w", loc.Name, domain.ErrDuplicateLocation)
	}

	h := append([]float64(nil), history...)
	if len(h) > r.window {
		h = h[len(h)-r.window:]
	}

	r.locations[loc.Name] = &locationState{
		lock:    semaphore.NewWeighted(1),
		loc:     loc,
		history: h,
	}
	return nil
}

// Get returns a copy of the location record.
func (r *Registry) Get(name string) (domain.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.locations[name]
	if !ok {
		return domain.Location{}, fmt.Errorf("%s: %w", name, domain.ErrUnknownLocation)
	}
	return state.snapshotLoc(), nil
}

// LocationHistory returns the location record and a copy of its demand
// window. Implements forecast.HistorySource.
func (r *Registry) LocationHistory(name string) (domain.Location, []float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.locations[name]
	if !ok {
		return domain.Location{}, nil, fmt.Errorf("%s: %w", name, domain.ErrUnknownLocation)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.loc, append([]float64(nil), state.history...), nil
}

// Snapshot returns a consistent copy of every location, ordered by name.
// Planning passes run against a snapshot so concurrent consumption cannot
// corrupt a single pass.
func (r *Registry) Snapshot() []domain.Location {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]domain.Location, 0, len(r.locations))
	for _, state := range r.locations {
		snapshot = append(snapshot, state.snapshotLoc())
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Name < snapshot[j].Name })
	return snapshot
}

// TotalStock sums current stock across all locations.
func (r *Registry) TotalStock() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, state := range r.locations {
		total += state.snapshotLoc().CurrentStock
	}
	return total
}

func (r *Registry) state(name string) (*locationState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.locations[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrUnknownLocation)
	}
	return state, nil
}

// appendObservation pushes one consumed amount into the demand window,
// evicting the oldest entry once the window is full. Caller holds s.mu.
func (s *locationState) appendObservation(amount float64, window int) {
	s.history = append(s.history, amount)
	if len(s.history) > window {
		s.history = s.history[len(s.history)-window:]
	}
}
