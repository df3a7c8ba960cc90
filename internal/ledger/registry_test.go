package ledger

import (
	"testing"

	"github.com/AmanS2501/Tech-Alpha-Hack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry(7)

	err := r.Register(domain.Location{Name: ""}, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownLocation)

	err = r.Register(domain.Location{Name: "Bad", CurrentStock: -1}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	require.NoError(t, r.Register(domain.Location{Name: "Depot", CurrentStock: 10}, nil))
	err = r.Register(domain.Location{Name: "Depot", CurrentStock: 20}, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateLocation)
}

func TestRegisterTrimsHistoryToWindow(t *testing.T) {
	r := NewRegistry(3)
	require.NoError(t, r.Register(
		domain.Location{Name: "Depot", CurrentStock: 10},
		[]float64{1, 2, 3, 4, 5},
	))

	_, history, err := r.LocationHistory("Depot")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 5}, history)
}

func TestGetUnknownLocation(t *testing.T) {
	r := NewRegistry(7)

	_, err := r.Get("Ghost_Town")
	assert.ErrorIs(t, err, domain.ErrUnknownLocation)

	_, _, err = r.LocationHistory("Ghost_Town")
	assert.ErrorIs(t, err, domain.ErrUnknownLocation)
}

func TestSnapshotOrderedByName(t *testing.T) {
	r := NewRegistry(7)
	for _, name := range []string{"Zulu", "Alpha", "Mike"} {
		require.NoError(t, r.Register(domain.Location{Name: name, CurrentStock: 5}, nil))
	}

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "Alpha", snapshot[0].Name)
	assert.Equal(t, "Mike", snapshot[1].Name)
	assert.Equal(t, "Zulu", snapshot[2].Name)
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry(7)
	require.NoError(t, r.Register(domain.Location{Name: "Depot", CurrentStock: 10}, nil))

	snapshot := r.Snapshot()
	snapshot[0].CurrentStock = 999

	got, err := r.Get("Depot")
	require.NoError(t, err)
	assert.Equal(t, 10, got.CurrentStock)
}

func TestTotalStock(t *testing.T) {
	r := NewRegistry(7)
	require.NoError(t, r.Register(domain.Location{Name: "A", CurrentStock: 10}, nil))
	require.NoError(t, r.Register(domain.Location{Name: "B", CurrentStock: 25}, nil))

	assert.Equal(t, 35, r.TotalStock())
}
