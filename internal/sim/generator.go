// Package sim drives internal/lob with synthetic order flow for
// benchmarking and demoing the core. It generates its own reference
// price path (a GBM-style random walk, the way the feed-simulator
// example prices symbols) and its own resting liquidity; it never
// parses a real venue's wire protocol, so it does not fall under the
// feed-parsing or network-transport non-goals of internal/lob.
package sim

import (
	"math"

	"github.com/veloxmarkets/lobcore/internal/gateway"
	"github.com/veloxmarkets/lobcore/internal/lob"
	"github.com/veloxmarkets/lobcore/internal/schema"
)

const ticksPerDay = 86400

// Config controls the statistical shape of the generated order flow.
type Config struct {
	TickSize           lob.Price
	DailyVolatility    float64 // e.g. 0.02 for 2%
	LevelsPerSide      int
	MinLevelSize       lob.Size
	MaxLevelSize       lob.Size
	OwnOrderSize       lob.Size
	OwnOrderProbability    float64 // per Step, probability we add an own order
	CancelProbability      float64 // per Step, probability we cancel an own order
	PrintProbability       float64 // per Step, probability of a reduce_front print
	AggressionProbability  float64 // per Step, probability of a walk_until_lifted
}

// DefaultConfig returns reasonable demo/bench defaults.
func DefaultConfig() Config {
	return Config{
		TickSize:              1,
		DailyVolatility:       0.02,
		LevelsPerSide:         5,
		MinLevelSize:          1,
		MaxLevelSize:          20,
		OwnOrderSize:          3,
		OwnOrderProbability:   0.25,
		CancelProbability:     0.1,
		PrintProbability:      0.4,
		AggressionProbability: 0.1,
	}
}

// Generator produces a stream of add/cancel/print/aggression events
// against one symbol's book.
type Generator struct {
	cfg      Config
	rng      *RNG
	symbolID uint32
	price    float64
	nextID   lob.Id
	tick     lob.Time
	ownAsks  []lob.Id
	ownBids  []lob.Id
}

// New creates a generator seeded with seed (0 for a non-reproducible
// run) starting from basePrice.
func New(cfg Config, seed int64, symbolID uint32, basePrice lob.Price) *Generator {
	return &Generator{
		cfg:      cfg,
		rng:      NewRNG(seed),
		symbolID: symbolID,
		price:    float64(basePrice),
		nextID:   1,
	}
}

// Seed populates book with LevelsPerSide anonymous resting levels on
// each side around the current reference price, spaced one tick apart.
func (g *Generator) Seed(book *lob.Lob) {
	mid := g.roundedPrice()
	for i := 1; i <= g.cfg.LevelsPerSide; i++ {
		askPrice := mid + lob.Price(i)*g.cfg.TickSize
		bidPrice := mid - lob.Price(i)*g.cfg.TickSize
		book.AddOrder(lob.Ask, g.anonOrder(askPrice))
		book.AddOrder(lob.Bid, g.anonOrder(bidPrice))
	}
}

func (g *Generator) anonOrder(price lob.Price) lob.Order {
	size := lob.Size(g.rng.IntRange(int(g.cfg.MinLevelSize), int(g.cfg.MaxLevelSize)))
	order := lob.NewLimitOrder(price, size, g.allocID(), g.tick, lob.Open)
	return order
}

func (g *Generator) allocID() lob.Id {
	g.nextID++
	return g.nextID
}

// roundedPrice snaps the float reference price to the nearest tick.
func (g *Generator) roundedPrice() lob.Price {
	tick := float64(g.cfg.TickSize)
	if tick <= 0 {
		tick = 1
	}
	return lob.Price(math.Round(g.price/tick) * tick)
}

// advancePrice steps the reference price one tick forward via a GBM
// increment, the same shape as the feed-simulator's per-symbol tick.
func (g *Generator) advancePrice() {
	tickVol := g.cfg.DailyVolatility / math.Sqrt(ticksPerDay)
	z := g.rng.Gaussian()
	g.price *= math.Exp(tickVol * z)
	if g.price < float64(g.cfg.TickSize) {
		g.price = float64(g.cfg.TickSize)
	}
}

// StepResult reports what, if anything, happened during one Step.
type StepResult struct {
	OwnAdded    *gateway.Order
	OwnCanceled lob.Id
	Print       *schema.Print
	Aggression  *schema.Aggression
}

// Step advances the simulated tick counter by one and then draws, each
// independently against its configured probability, whether to cancel
// one of our own resting orders, add one, apply a trade print via
// reduce_front, and aggress a level via walk_until_lifted. A single
// Step may therefore perform several of these actions, or none.
func (g *Generator) Step(book *lob.Lob, gw *gateway.Gateway) StepResult {
	g.tick++
	g.advancePrice()

	var result StepResult

	if g.rng.Float64() < g.cfg.CancelProbability {
		if id, side, ok := g.pickOwnOrder(); ok {
			if lvl, found := g.findOwnLevel(book, side, id); found {
				if err := gw.Cancel(book, side, lvl.Price(), id); err == nil {
					result.OwnCanceled = id
					g.forgetOwn(side, id)
				}
			}
		}
	}

	if g.rng.Float64() < g.cfg.OwnOrderProbability {
		side := g.randomSide()
		price := g.ownOrderPrice(side)
		order := lob.NewLimitOrder(price, g.cfg.OwnOrderSize, g.allocID(), g.tick, lob.Open)
		tracked, err := gw.Submit(book, side, g.symbolID, order)
		if err == nil {
			result.OwnAdded = tracked
			g.rememberOwn(side, order.Id)
		}
	}

	if g.rng.Float64() < g.cfg.PrintProbability {
		side := g.randomSide()
		if lvl, ok := book.WorstLevel(side); ok {
			traded := lob.Size(g.rng.IntRange(1, int(lvl.Size())))
			tr := book.ReduceFront(side, lvl.Price(), traded)
			gw.ApplyTradeResult(tr)
			result.Print = &schema.Print{
				SymbolID:     g.symbolID,
				Side:         sideToSchema(side),
				Price:        schema.Price(lvl.Price()),
				Traded:       schema.Quantity(traded),
				MarketVolume: schema.Quantity(tr.MarketVolume),
				OurLifted:    schema.Quantity(sumLifted(tr)),
			}
		}
	}

	if g.rng.Float64() < g.cfg.AggressionProbability {
		side := g.randomSide()
		if lvl, ok := book.BestLevel(side); ok {
			target := lob.Size(g.rng.IntRange(1, int(lvl.Size())+1))
			tr := book.WalkUntilLifted(side, lvl.Price(), target)
			gw.ApplyTradeResult(tr)
			result.Aggression = &schema.Aggression{
				SymbolID:     g.symbolID,
				Side:         sideToSchema(side),
				Price:        schema.Price(lvl.Price()),
				Target:       schema.Quantity(target),
				Lifted:       schema.Quantity(sumLifted(tr)),
				MarketVolume: schema.Quantity(tr.MarketVolume),
				Exhausted:    sumLifted(tr) < target,
			}
		}
	}

	return result
}

func sumLifted(tr lob.TradeResult) lob.Size {
	var total lob.Size
	for _, o := range tr.OurLifted {
		total += o.Size
	}
	return total
}

func (g *Generator) randomSide() lob.Side {
	if g.rng.Intn(2) == 0 {
		return lob.Ask
	}
	return lob.Bid
}

func (g *Generator) ownOrderPrice(side lob.Side) lob.Price {
	mid := g.roundedPrice()
	offset := lob.Price(g.rng.IntRange(1, g.cfg.LevelsPerSide)) * g.cfg.TickSize
	if side == lob.Ask {
		return mid + offset
	}
	return mid - offset
}

func (g *Generator) rememberOwn(side lob.Side, id lob.Id) {
	if side == lob.Ask {
		g.ownAsks = append(g.ownAsks, id)
	} else {
		g.ownBids = append(g.ownBids, id)
	}
}

func (g *Generator) forgetOwn(side lob.Side, id lob.Id) {
	list := &g.ownAsks
	if side == lob.Bid {
		list = &g.ownBids
	}
	for i, v := range *list {
		if v == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

func (g *Generator) pickOwnOrder() (lob.Id, lob.Side, bool) {
	total := len(g.ownAsks) + len(g.ownBids)
	if total == 0 {
		return 0, lob.Ask, false
	}
	idx := g.rng.Intn(total)
	if idx < len(g.ownAsks) {
		return g.ownAsks[idx], lob.Ask, true
	}
	return g.ownBids[idx-len(g.ownAsks)], lob.Bid, true
}

func (g *Generator) findOwnLevel(book *lob.Lob, side lob.Side, id lob.Id) (*lob.Level, bool) {
	for _, lvl := range book.Levels(side) {
		if _, ok := lvl.FindId(id); ok {
			return lvl, true
		}
	}
	return nil, false
}

func sideToSchema(side lob.Side) schema.OrderSide {
	if side == lob.Bid {
		return schema.OrderSideBuy
	}
	return schema.OrderSideSell
}
