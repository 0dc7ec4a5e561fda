package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxmarkets/lobcore/internal/schema"
)

func TestWriteReadSnapshotRoundTrip(t *testing.T) {
	r := NewExposureReducer()
	r.ApplyOrderAdded(schema.OrderAdded{SymbolID: 5, Side: schema.OrderSideBuy, Flags: schema.FlagOwnOrder, Qty: 12})
	snap := r.SnapshotWithMeta(42, 12345, []schema.LevelSnapshot{
		{SymbolID: 5, Side: schema.OrderSideBuy, Price: 100, Size: 10, OrderCount: 1},
	})

	path := filepath.Join(t.TempDir(), "nested", "snap.json")
	require.NoError(t, WriteSnapshot(path, snap))

	loaded, err := ReadSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, snap.LastSeq, loaded.LastSeq)
	assert.Equal(t, snap.LastEventTs, loaded.LastEventTs)
	require.Len(t, loaded.Exposures, 1)
	assert.EqualValues(t, 12, loaded.Exposures[0].Qty)
	require.Len(t, loaded.Levels, 1)
	assert.Equal(t, schema.Price(100), loaded.Levels[0].Price)
}

func TestCompareSnapshotsMatch(t *testing.T) {
	a := Snapshot{Exposures: []ExposureEntry{{SymbolID: 1, Qty: 10}}}
	b := Snapshot{Exposures: []ExposureEntry{{SymbolID: 1, Qty: 10}}}
	assert.NoError(t, CompareSnapshots(a, b))
}

func TestCompareSnapshotsMismatch(t *testing.T) {
	a := Snapshot{Exposures: []ExposureEntry{{SymbolID: 1, Qty: 10}}}
	b := Snapshot{Exposures: []ExposureEntry{{SymbolID: 1, Qty: 11}}}
	assert.Error(t, CompareSnapshots(a, b))
}

func TestCompareSnapshotsLengthMismatch(t *testing.T) {
	a := Snapshot{Exposures: []ExposureEntry{{SymbolID: 1, Qty: 10}, {SymbolID: 2, Qty: 5}}}
	b := Snapshot{Exposures: []ExposureEntry{{SymbolID: 1, Qty: 10}}}
	assert.Error(t, CompareSnapshots(a, b))
}
