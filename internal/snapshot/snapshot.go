package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/yanun0323/errors"

	"github.com/veloxmarkets/lobcore/internal/schema"
)

// Snapshot captures engine state at a point in time: net resting
// exposure per symbol plus a flattened view of every live Level. A
// cold start (RecoverExposure) restores exposure from it without
// replaying the full WAL from genesis; the Levels are recorded for
// inspection only and are not used to rebuild a book.
type Snapshot struct {
	Timestamp   int64            `json:"timestamp"`
	LastSeq     uint64           `json:"lastSeq"`
	LastEventTs int64            `json:"lastEventTs"`
	Exposures   []ExposureEntry  `json:"exposures"`
	Levels      []schema.LevelSnapshot `json:"levels"`
}

// ExposureEntry is a single symbol's net resting exposure.
type ExposureEntry struct {
	SymbolID uint32          `json:"symbolId"`
	Qty      schema.Quantity `json:"qty"`
}

// Snapshot builds a snapshot from current exposure only (no book
// levels attached).
func (r *ExposureReducer) Snapshot() Snapshot {
	return r.SnapshotWithMeta(0, 0, nil)
}

// SnapshotWithMeta builds a snapshot with event metadata and an
// optional flattened book view.
func (r *ExposureReducer) SnapshotWithMeta(lastSeq uint64, lastEventTs int64, levels []schema.LevelSnapshot) Snapshot {
	entries := make([]ExposureEntry, 0, len(r.bySymbol))
	for symbolID, qty := range r.bySymbol {
		entries = append(entries, ExposureEntry{SymbolID: symbolID, Qty: qty})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SymbolID < entries[j].SymbolID
	})
	return Snapshot{
		Timestamp:   time.Now().UTC().UnixNano(),
		LastSeq:     lastSeq,
		LastEventTs: lastEventTs,
		Exposures:   entries,
		Levels:      levels,
	}
}

// WriteSnapshot writes a snapshot to disk as JSON.
func WriteSnapshot(path string, snapshot Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSnapshot loads a snapshot from disk.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// CompareSnapshots checks if two snapshots match on exposure, the
// quantity most sensitive to a reducer bug.
func CompareSnapshots(expected, actual Snapshot) error {
	if len(expected.Exposures) != len(actual.Exposures) {
		return errors.Errorf("snapshot length mismatch: expected=%d actual=%d", len(expected.Exposures), len(actual.Exposures))
	}
	expectedMap := make(map[uint32]schema.Quantity, len(expected.Exposures))
	for _, entry := range expected.Exposures {
		expectedMap[entry.SymbolID] = entry.Qty
	}
	for _, entry := range actual.Exposures {
		want, ok := expectedMap[entry.SymbolID]
		if !ok {
			return errors.Errorf("snapshot missing symbol: %d", entry.SymbolID)
		}
		if want != entry.Qty {
			return errors.Errorf("snapshot qty mismatch: symbol=%d expected=%d actual=%d", entry.SymbolID, want, entry.Qty)
		}
	}
	return nil
}
