package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloxmarkets/lobcore/internal/gateway"
	"github.com/veloxmarkets/lobcore/internal/lob"
)

func newBook() *lob.Lob {
	return lob.New(lob.Config{Shown: true, MaxLevels: 25, MaxOrds: 32, Search: lob.Binary})
}

func TestGeneratorSeedPopulatesBothSides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LevelsPerSide = 4
	g := New(cfg, 42, 1, 1000)
	book := newBook()

	g.Seed(book)

	assert.Len(t, book.Levels(lob.Ask), 4)
	assert.Len(t, book.Levels(lob.Bid), 4)
}

func TestGeneratorSeedIsReproducibleForFixedSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LevelsPerSide = 5

	bookA := newBook()
	New(cfg, 7, 1, 1000).Seed(bookA)

	bookB := newBook()
	New(cfg, 7, 1, 1000).Seed(bookB)

	asksA := bookA.Levels(lob.Ask)
	asksB := bookB.Levels(lob.Ask)
	require.Len(t, asksB, len(asksA))
	for i := range asksA {
		assert.Equal(t, asksA[i].Price(), asksB[i].Price())
		assert.Equal(t, asksA[i].Size(), asksB[i].Size())
	}
}

func TestGeneratorStepIsReproducibleForFixedSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LevelsPerSide = 5

	run := func(seed int64, steps int) []StepResult {
		book := newBook()
		gw := gateway.New()
		g := New(cfg, seed, 1, 1000)
		g.Seed(book)

		results := make([]StepResult, 0, steps)
		for i := 0; i < steps; i++ {
			results = append(results, g.Step(book, gw))
		}
		return results
	}

	a := run(99, 50)
	b := run(99, 50)

	require.Equal(t, len(a), len(b))
	for i := range a {
		if a[i].OwnAdded != nil {
			require.NotNil(t, b[i].OwnAdded, "step %d", i)
			assert.Equal(t, a[i].OwnAdded.ID, b[i].OwnAdded.ID)
			assert.Equal(t, a[i].OwnAdded.Price, b[i].OwnAdded.Price)
		} else {
			assert.Nil(t, b[i].OwnAdded, "step %d", i)
		}
		assert.Equal(t, a[i].OwnCanceled, b[i].OwnCanceled)
	}
}

func TestGeneratorStepNeverPanicsOnEmptyBook(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LevelsPerSide = 0
	cfg.PrintProbability = 1
	cfg.AggressionProbability = 1
	cfg.OwnOrderProbability = 1
	cfg.CancelProbability = 1

	book := newBook()
	gw := gateway.New()
	g := New(cfg, 1, 1, 1000)

	assert.NotPanics(t, func() {
		for i := 0; i < 20; i++ {
			g.Step(book, gw)
		}
	})
}
