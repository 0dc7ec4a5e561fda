package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxmarkets/lobcore/internal/lob"
	"github.com/veloxmarkets/lobcore/internal/schema"
)

func TestBookConfigResolveAppliesDefaults(t *testing.T) {
	cfg := BookConfig{Shown: true}.Resolve()
	assert.True(t, cfg.Shown)
	assert.Equal(t, 25, cfg.MaxLevels)
	assert.Equal(t, 32, cfg.MaxOrds)
	assert.Equal(t, lob.Linear, cfg.Search)
}

func TestBookConfigResolveHonorsExplicitValues(t *testing.T) {
	cfg := BookConfig{Shown: false, MaxLevels: 10, MaxOrds: 4, Search: "binary"}.Resolve()
	assert.False(t, cfg.Shown)
	assert.Equal(t, 10, cfg.MaxLevels)
	assert.Equal(t, 4, cfg.MaxOrds)
	assert.Equal(t, lob.Binary, cfg.Search)
}

func TestSimConfigResolveFallsBackToDefaults(t *testing.T) {
	cfg := SimConfig{}.Resolve()
	assert.Equal(t, lob.Price(1), cfg.TickSize)
	assert.Equal(t, 5, cfg.LevelsPerSide)
}

func TestSimConfigResolveOverridesSetFields(t *testing.T) {
	cfg := SimConfig{TickSize: 5, LevelsPerSide: 8, OwnOrderProbability: 0.9}.Resolve()
	assert.Equal(t, lob.Price(5), cfg.TickSize)
	assert.Equal(t, 8, cfg.LevelsPerSide)
	assert.Equal(t, 0.9, cfg.OwnOrderProbability)
}

func TestResolveOrderSpecEmptySymbolIsOptional(t *testing.T) {
	reg := newTestRegistry(t)
	spec, err := resolveOrderSpec(OrderConfig{}, reg)
	require.NoError(t, err)
	assert.Equal(t, OrderSpec{}, spec)
}

func TestResolveOrderSpecUnknownSymbolErrors(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := resolveOrderSpec(OrderConfig{Symbol: "nope", Qty: 1, Side: 1, Type: 1, TimeInForce: 1}, reg)
	assert.Error(t, err)
}

func TestLoadEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"registry": {
			"venues": [{"name": "TEST"}],
			"symbols": [{"name": "ABC", "venue": "TEST", "scale": {"priceScale": 2, "quantityScale": 0, "notionalScale": 2, "feeScale": 2}}]
		},
		"book": {"shown": true, "maxLevels": 12, "maxOrds": 16, "search": "binary"},
		"sim": {"seed": 7, "tickSize": 2, "levelsPerSide": 3}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, loaded.Book.MaxLevels)
	assert.Equal(t, lob.Binary, loaded.Book.Search)
	assert.Equal(t, lob.Price(2), loaded.Sim.TickSize)
	assert.Equal(t, 3, loaded.Sim.LevelsPerSide)
	assert.EqualValues(t, 7, loaded.SimSeed)
	assert.Equal(t, OrderSpec{}, loaded.Order)

	_, ok := loaded.Registry.SymbolIDByName("ABC")
	assert.True(t, ok)
}

func newTestRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := buildRegistry(RegistryConfig{
		Venues:  []VenueConfig{{Name: "TEST"}},
		Symbols: nil,
	})
	require.NoError(t, err)
	return reg
}
