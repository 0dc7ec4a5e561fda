package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxmarkets/lobcore/internal/codec"
	"github.com/veloxmarkets/lobcore/internal/recorder"
	"github.com/veloxmarkets/lobcore/internal/schema"
)

func writeWAL(t *testing.T, dir string, events []schema.EventHeader, payloads [][]byte) {
	t.Helper()
	cfg := recorder.DefaultConfig(dir)
	w, err := recorder.NewWriter(cfg)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	for i, header := range events {
		require.NoError(t, w.TryAppend(header, payloads[i]))
	}
	require.NoError(t, w.Close())
}

func TestRecoverExposureReplaysWAL(t *testing.T) {
	dir := t.TempDir()

	added := schema.OrderAdded{
		OrderID:  1,
		SymbolID: 3,
		Side:     schema.OrderSideBuy,
		Flags:    schema.FlagOwnOrder,
		Price:    100,
		Qty:      10,
		Queue:    0,
	}
	print := schema.Print{
		SymbolID:  3,
		Side:      schema.OrderSideBuy,
		Price:     100,
		Traded:    4,
		OurLifted: 4,
	}

	events := []schema.EventHeader{
		schema.NewHeader(schema.EventOrderAdded, 1, 1, 1000, 1000),
		schema.NewHeader(schema.EventPrint, 1, 2, 2000, 2000),
	}
	payloads := [][]byte{
		codec.EncodeOrderAdded(make([]byte, codec.OrderAddedPayloadSize), added),
		codec.EncodePrint(make([]byte, codec.PrintPayloadSize), print),
	}

	writeWAL(t, dir, events, payloads)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := RecoverExposure(ctx, RecoverConfig{WALDir: dir})
	require.NoError(t, err)

	assert.EqualValues(t, 2, result.LastSeq)
	assert.EqualValues(t, 2000, result.LastEventTs)
	assert.EqualValues(t, 6, result.Exposure.Exposure(3))
}

func TestRecoverExposureSkipsEventsBeforeSnapshot(t *testing.T) {
	dir := t.TempDir()

	r := NewExposureReducer()
	r.ApplyOrderAdded(schema.OrderAdded{SymbolID: 3, Side: schema.OrderSideBuy, Flags: schema.FlagOwnOrder, Qty: 10})
	snap := r.SnapshotWithMeta(5, 5000, nil)
	snapPath := dir + "/snap.json"
	require.NoError(t, WriteSnapshot(snapPath, snap))

	stale := schema.OrderAdded{SymbolID: 3, Side: schema.OrderSideBuy, Flags: schema.FlagOwnOrder, Qty: 99}
	fresh := schema.OrderAdded{SymbolID: 3, Side: schema.OrderSideSell, Flags: schema.FlagOwnOrder, Qty: 2}

	events := []schema.EventHeader{
		schema.NewHeader(schema.EventOrderAdded, 1, 5, 5000, 5000),
		schema.NewHeader(schema.EventOrderAdded, 1, 6, 6000, 6000),
	}
	payloads := [][]byte{
		codec.EncodeOrderAdded(make([]byte, codec.OrderAddedPayloadSize), stale),
		codec.EncodeOrderAdded(make([]byte, codec.OrderAddedPayloadSize), fresh),
	}
	writeWAL(t, dir, events, payloads)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := RecoverExposure(ctx, RecoverConfig{WALDir: dir, SnapshotPath: snapPath})
	require.NoError(t, err)

	// Seq 5 (the snapshot boundary) is skipped; seq 6 (a sell) is applied.
	assert.EqualValues(t, 8, result.Exposure.Exposure(3))
}
