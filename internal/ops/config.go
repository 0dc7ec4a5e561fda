package ops

import (
	"encoding/json"
	"os"

	"github.com/yanun0323/errors"

	"github.com/veloxmarkets/lobcore/internal/lob"
	"github.com/veloxmarkets/lobcore/internal/risk"
	"github.com/veloxmarkets/lobcore/internal/schema"
	"github.com/veloxmarkets/lobcore/internal/sim"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Registry RegistryConfig     `json:"registry"`
	Risk     risk.Config        `json:"risk"`
	Order    OrderConfig        `json:"order"`
	Features FeatureFlagsConfig `json:"features"`
	Book     BookConfig         `json:"book"`
	Sim      SimConfig          `json:"sim"`
}

// BookConfig mirrors lob.Config for JSON configuration, using a
// string search-strategy name instead of lob.SearchStrategy's raw
// enum value.
type BookConfig struct {
	Shown     bool   `json:"shown"`
	MaxLevels int    `json:"maxLevels"`
	MaxOrds   int    `json:"maxOrds"`
	Search    string `json:"search"` // "linear" or "binary"
}

// Resolve converts BookConfig into lob.Config, applying defaults for
// zero values.
func (c BookConfig) Resolve() lob.Config {
	cfg := lob.Config{
		Shown:     c.Shown,
		MaxLevels: c.MaxLevels,
		MaxOrds:   c.MaxOrds,
	}
	if cfg.MaxLevels <= 0 {
		cfg.MaxLevels = 25
	}
	if cfg.MaxOrds <= 0 {
		cfg.MaxOrds = 32
	}
	if c.Search == "binary" {
		cfg.Search = lob.Binary
	} else {
		cfg.Search = lob.Linear
	}
	return cfg
}

// SimConfig mirrors sim.Config for JSON configuration.
type SimConfig struct {
	Seed                  int64   `json:"seed"`
	BasePrice             int64   `json:"basePrice"`
	TickSize              int64   `json:"tickSize"`
	DailyVolatility       float64 `json:"dailyVolatility"`
	LevelsPerSide         int     `json:"levelsPerSide"`
	MinLevelSize          int64   `json:"minLevelSize"`
	MaxLevelSize          int64   `json:"maxLevelSize"`
	OwnOrderSize          int64   `json:"ownOrderSize"`
	OwnOrderProbability   float64 `json:"ownOrderProbability"`
	CancelProbability     float64 `json:"cancelProbability"`
	PrintProbability      float64 `json:"printProbability"`
	AggressionProbability float64 `json:"aggressionProbability"`
}

// Resolve converts SimConfig into sim.Config, filling unset fields
// from sim.DefaultConfig().
func (c SimConfig) Resolve() sim.Config {
	def := sim.DefaultConfig()
	cfg := def
	if c.TickSize > 0 {
		cfg.TickSize = lob.Price(c.TickSize)
	}
	if c.DailyVolatility > 0 {
		cfg.DailyVolatility = c.DailyVolatility
	}
	if c.LevelsPerSide > 0 {
		cfg.LevelsPerSide = c.LevelsPerSide
	}
	if c.MinLevelSize > 0 {
		cfg.MinLevelSize = lob.Size(c.MinLevelSize)
	}
	if c.MaxLevelSize > 0 {
		cfg.MaxLevelSize = lob.Size(c.MaxLevelSize)
	}
	if c.OwnOrderSize > 0 {
		cfg.OwnOrderSize = lob.Size(c.OwnOrderSize)
	}
	if c.OwnOrderProbability > 0 {
		cfg.OwnOrderProbability = c.OwnOrderProbability
	}
	if c.CancelProbability > 0 {
		cfg.CancelProbability = c.CancelProbability
	}
	if c.PrintProbability > 0 {
		cfg.PrintProbability = c.PrintProbability
	}
	if c.AggressionProbability > 0 {
		cfg.AggressionProbability = c.AggressionProbability
	}
	return cfg
}

// RegistryConfig defines venue and symbol mappings.
type RegistryConfig struct {
	Venues  []VenueConfig  `json:"venues"`
	Symbols []SymbolConfig `json:"symbols"`
}

// VenueConfig describes a venue entry.
type VenueConfig struct {
	Name string `json:"name"`
}

// SymbolConfig describes a symbol entry.
type SymbolConfig struct {
	Name  string          `json:"name"`
	Venue string          `json:"venue"`
	Scale schema.ScaleSpec `json:"scale"`
}

// OrderConfig describes the dummy order to publish.
type OrderConfig struct {
	OrderID     uint64           `json:"orderId"`
	StrategyID  uint32           `json:"strategyId"`
	Symbol      string           `json:"symbol"`
	Side        schema.OrderSide `json:"side"`
	Type        schema.OrderType `json:"type"`
	TimeInForce schema.TimeInForce `json:"timeInForce"`
	Price       schema.Price     `json:"price"`
	Qty         schema.Quantity  `json:"qty"`
}

// FeatureFlagsConfig captures optional runtime flags.
type FeatureFlagsConfig struct {
	EnableOrderFlow *bool `json:"enableOrderFlow"`
	EnableFills     *bool `json:"enableFills"`
}

// FeatureFlags are resolved runtime flags.
type FeatureFlags struct {
	EnableOrderFlow bool
	EnableFills     bool
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Registry *schema.Registry
	Risk     risk.Config
	Order    OrderSpec
	Features FeatureFlags
	Book     lob.Config
	Sim      sim.Config
	SimSeed  int64
}

// OrderSpec is the resolved order definition.
type OrderSpec struct {
	OrderID     uint64
	StrategyID  uint32
	SymbolID    schema.SymbolID
	Side        schema.OrderSide
	Type        schema.OrderType
	TimeInForce schema.TimeInForce
	Price       schema.Price
	Qty         schema.Quantity
}

// Load reads a JSON config file and builds the registry.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	registry, err := buildRegistry(cfg.Registry)
	if err != nil {
		return Loaded{}, err
	}
	orderSpec, err := resolveOrderSpec(cfg.Order, registry)
	if err != nil {
		return Loaded{}, err
	}
	features := resolveFeatures(cfg.Features)
	return Loaded{
		Registry: registry,
		Risk:     cfg.Risk,
		Order:    orderSpec,
		Features: features,
		Book:     cfg.Book.Resolve(),
		Sim:      cfg.Sim.Resolve(),
		SimSeed:  cfg.Sim.Seed,
	}, nil
}

// LoadRegistry reads a JSON config file and only builds the registry.
func LoadRegistry(path string) (*schema.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return buildRegistry(cfg.Registry)
}

func buildRegistry(cfg RegistryConfig) (*schema.Registry, error) {
	reg := schema.NewRegistry()
	for _, venue := range cfg.Venues {
		if _, err := reg.AddVenue(venue.Name); err != nil {
			return nil, err
		}
	}
	for _, sym := range cfg.Symbols {
		venueID, ok := reg.VenueIDByName(sym.Venue)
		if !ok {
			return nil, errors.Errorf("venue not found: %s", sym.Venue)
		}
		if err := validateScale(sym.Scale); err != nil {
			return nil, errors.Wrapf(err, "invalid scale for %s", sym.Name)
		}
		if _, err := reg.AddSymbol(sym.Name, venueID, sym.Scale); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func validateScale(scale schema.ScaleSpec) error {
	if scale.PriceScale < 0 || scale.QuantityScale < 0 || scale.NotionalScale < 0 || scale.FeeScale < 0 {
		return errors.New("scale must be >= 0")
	}
	return nil
}

func resolveOrderSpec(cfg OrderConfig, reg *schema.Registry) (OrderSpec, error) {
	if cfg.Symbol == "" {
		// Order flow is sim-driven by default; an explicit dummy order
		// to publish is optional.
		return OrderSpec{}, nil
	}
	symbolID, ok := reg.SymbolIDByName(cfg.Symbol)
	if !ok {
		return OrderSpec{}, errors.Errorf("order symbol not found: %s", cfg.Symbol)
	}
	if cfg.Qty <= 0 {
		return OrderSpec{}, errors.New("order qty must be > 0")
	}
	if cfg.Side == schema.OrderSideUnknown {
		return OrderSpec{}, errors.New("order side is unknown")
	}
	if cfg.Type == schema.OrderTypeUnknown {
		return OrderSpec{}, errors.New("order type is unknown")
	}
	if cfg.TimeInForce == schema.TimeInForceUnknown {
		return OrderSpec{}, errors.New("order timeInForce is unknown")
	}
	if cfg.Type == schema.OrderTypeLimit && cfg.Price <= 0 {
		return OrderSpec{}, errors.New("order price must be > 0 for limit orders")
	}
	if cfg.OrderID == 0 {
		cfg.OrderID = 1001
	}
	if cfg.StrategyID == 0 {
		cfg.StrategyID = 1
	}
	return OrderSpec{
		OrderID:     cfg.OrderID,
		StrategyID:  cfg.StrategyID,
		SymbolID:    symbolID,
		Side:        cfg.Side,
		Type:        cfg.Type,
		TimeInForce: cfg.TimeInForce,
		Price:       cfg.Price,
		Qty:         cfg.Qty,
	}, nil
}

func resolveFeatures(cfg FeatureFlagsConfig) FeatureFlags {
	flags := FeatureFlags{
		EnableOrderFlow: true,
		EnableFills:     true,
	}
	if cfg.EnableOrderFlow != nil {
		flags.EnableOrderFlow = *cfg.EnableOrderFlow
	}
	if cfg.EnableFills != nil {
		flags.EnableFills = *cfg.EnableFills
	}
	return flags
}
