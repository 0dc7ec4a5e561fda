package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/rs/zerolog"

	"github.com/veloxmarkets/lobcore/internal/bus"
	"github.com/veloxmarkets/lobcore/internal/codec"
	"github.com/veloxmarkets/lobcore/internal/gateway"
	"github.com/veloxmarkets/lobcore/internal/lob"
	"github.com/veloxmarkets/lobcore/internal/metricsrv"
	"github.com/veloxmarkets/lobcore/internal/obs"
	"github.com/veloxmarkets/lobcore/internal/ops"
	"github.com/veloxmarkets/lobcore/internal/recorder"
	"github.com/veloxmarkets/lobcore/internal/risk"
	"github.com/veloxmarkets/lobcore/internal/schema"
	"github.com/veloxmarkets/lobcore/internal/sim"
	"github.com/veloxmarkets/lobcore/internal/snapshot"
)

type runtimeConfig struct {
	v atomic.Value
}

func newRuntimeConfig(loaded ops.Loaded) *runtimeConfig {
	var rc runtimeConfig
	rc.v.Store(loaded)
	return &rc
}

func (r *runtimeConfig) Load() ops.Loaded { return r.v.Load().(ops.Loaded) }

func (r *runtimeConfig) Update(loaded ops.Loaded) { r.v.Store(loaded) }

func newLogger(pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func main() {
	walDir := flag.String("wal-dir", "testdata/wal", "WAL directory for recording")
	configPath := flag.String("config", "", "Path to JSON config")
	configReload := flag.Duration("config-reload-interval", 2*time.Second, "Config reload interval (0=disable)")
	steps := flag.Int("steps", 1000, "Number of simulated ticks to run in bench mode")
	stepInterval := flag.Duration("step-interval", 0, "Delay between simulated ticks in bench mode")
	seed := flag.Int64("seed", 1, "Simulator PRNG seed (0=non-reproducible)")
	symbolName := flag.String("symbol", "SIM-TEST", "Symbol to benchmark")
	basePrice := flag.Int64("base-price", 10_000, "Starting reference price, in scaled integer units")
	snapshotPath := flag.String("snapshot-path", "", "Exposure snapshot output (default: <wal-dir>/snapshot.json)")
	recoverEnabled := flag.Bool("recover", false, "Recover exposure from snapshot + WAL before running")
	recoverSnapshot := flag.String("recover-snapshot", "", "Snapshot path for recovery (default: <wal-dir>/snapshot.json)")
	recoverPrefix := flag.String("recover-prefix", "", "WAL file prefix for recovery (default: wal)")
	recoverNoChecksum := flag.Bool("recover-no-checksum", false, "Disable checksum validation for recovery")
	recoverMaxPayload := flag.Int("recover-max-payload", 0, "Max payload size in bytes for recovery (0=unlimited)")

	replayDir := flag.String("replay-dir", "", "WAL directory for replay mode")
	replayPrefix := flag.String("replay-prefix", "", "WAL file prefix (default: wal)")
	replaySpeed := flag.Float64("replay-speed", 0, "Playback speed (1=real-time, 0=no pacing)")
	replayUseRecv := flag.Bool("replay-use-recv-time", false, "Use receive timestamp for pacing")
	replayNoChecksum := flag.Bool("replay-no-checksum", false, "Disable checksum validation")
	replayMaxPayload := flag.Int("replay-max-payload", 0, "Max payload size in bytes (0=unlimited)")
	replaySnapshot := flag.String("replay-snapshot", "", "Snapshot path for replay verification (default: <replay-dir>/snapshot.json)")
	replayVerifySnapshot := flag.Bool("replay-verify-snapshot", true, "Verify exposure against snapshot after replay")

	metricsAddr := flag.String("metrics-addr", "", "Address to serve Prometheus /metrics on (empty=disabled)")
	pyroscopeAddr := flag.String("pyroscope-addr", "", "Pyroscope server address for continuous profiling (empty=disabled)")
	prettyLog := flag.Bool("pretty-log", true, "Use a human-readable console log writer")
	flag.Parse()

	logger := newLogger(*prettyLog)

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "lobcore/lobbench",
			ServerAddress:   *pyroscopeAddr,
			Tags:            map[string]string{"symbol": *symbolName},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("pyroscope start failed")
		}
		defer func() { _ = profiler.Stop() }()
	}

	ctx := context.Background()

	if *replayDir != "" {
		cfg := recorder.PlaybackConfig{
			Dir:             *replayDir,
			FilePrefix:      *replayPrefix,
			Speed:           *replaySpeed,
			UseRecvTime:     *replayUseRecv,
			DisableChecksum: *replayNoChecksum,
			MaxPayloadSize:  *replayMaxPayload,
		}
		snapshotIn := resolveSnapshotPath(*replayDir, *replaySnapshot)
		if err := runReplay(ctx, logger, cfg, snapshotIn, *replayVerifySnapshot); err != nil {
			logger.Fatal().Err(err).Msg("replay failed")
		}
		return
	}

	loaded, err := loadConfig(*configPath, *symbolName, *seed, *basePrice)
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}
	runtime := newRuntimeConfig(loaded)
	if *configPath != "" && *configReload > 0 {
		go watchConfig(ctx, logger, *configPath, *configReload, *symbolName, *seed, *basePrice, runtime.Update)
	}

	metrics := obs.NewMetrics()
	if *metricsAddr != "" {
		srv := metricsrv.New(*metricsAddr, metrics, logger)
		srv.Start()
	}

	snapshotOut := resolveSnapshotPath(*walDir, *snapshotPath)
	var recoverCfg *snapshot.RecoverConfig
	if *recoverEnabled {
		recoverPath := resolveSnapshotPath(*walDir, *recoverSnapshot)
		recoverCfg = &snapshot.RecoverConfig{
			WALDir:          *walDir,
			SnapshotPath:    recoverPath,
			FilePrefix:      *recoverPrefix,
			DisableChecksum: *recoverNoChecksum,
			MaxPayloadSize:  *recoverMaxPayload,
		}
	}
	if err := runBench(ctx, logger, *walDir, runtime, *steps, *stepInterval, snapshotOut, recoverCfg, metrics, lob.Price(*basePrice)); err != nil {
		logger.Fatal().Err(err).Msg("bench run failed")
	}
}

func runBench(ctx context.Context, logger zerolog.Logger, dir string, runtime *runtimeConfig, steps int, stepInterval time.Duration, snapshotPath string, recoverCfg *snapshot.RecoverConfig, metrics *obs.Metrics, basePrice lob.Price) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be > 0")
	}
	cfg := recorder.DefaultConfig(dir)
	w, err := recorder.NewWriter(cfg)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}

	queue := bus.NewQueue(1024)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx, func(e bus.Event) {
			if err := w.TryAppend(e.Header, e.Payload); err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		})
	}()

	seq := uint64(0)
	var lastEventTs int64
	exposure := snapshot.NewExposureReducer()
	traceGen := obs.NewTraceGenerator(0)
	if recoverCfg != nil {
		recovered, err := snapshot.RecoverExposure(ctx, *recoverCfg)
		if err != nil {
			return err
		}
		exposure = recovered.Exposure
		seq = recovered.LastSeq
		lastEventTs = recovered.LastEventTs
		logger.Info().Int("symbols", exposure.Count()).Uint64("last_seq", seq).Msg("recovered exposure")
	}

	loaded := runtime.Load()
	book := lob.New(loaded.Book)
	gw := gateway.New()
	generator := sim.New(loaded.Sim, loaded.SimSeed, uint32(loaded.Order.SymbolID), basePrice)
	generator.Seed(book)

	engine := risk.NewEngine(loaded.Risk)
	riskVersion := loaded.Risk.Version
	symbolID := uint32(loaded.Order.SymbolID)

	for i := 0; i < steps; i++ {
		loaded = runtime.Load()
		if loaded.Risk.Version != riskVersion {
			engine = risk.NewEngine(loaded.Risk)
			riskVersion = loaded.Risk.Version
		}

		if err := runStep(queue, book, gw, generator, engine, exposure, symbolID, &seq, &lastEventTs, traceGen, metrics); err != nil {
			return err
		}

		if stepInterval > 0 && i < steps-1 {
			time.Sleep(stepInterval)
		}
	}

	queue.Close()
	wg.Wait()

	var appendErr error
	select {
	case appendErr = <-errCh:
	default:
	}

	if err := w.Close(); err != nil {
		return err
	}
	if appendErr != nil {
		return appendErr
	}
	if snapshotPath != "" {
		levels := flattenLevels(book, symbolID)
		snap := exposure.SnapshotWithMeta(seq, lastEventTs, levels)
		if err := snapshot.WriteSnapshot(snapshotPath, snap); err != nil {
			return err
		}
	}
	snap := metrics.Snapshot()
	logger.Info().
		Interface("event_counts", snap.EventCounts).
		Interface("risk_reasons", snap.RiskReasonCounts).
		Uint64("add_count", snap.AddCount).
		Uint64("add_rejected", snap.AddRejected).
		Uint64("cancel_count", snap.CancelCount).
		Uint64("reduce_count", snap.ReduceCount).
		Uint64("walk_count", snap.WalkCount).
		Uint64("level_eviction", snap.LevelEviction).
		Msg("bench run complete")
	return nil
}

// runStep advances the simulator one tick, folds the result into
// exposure, and publishes the corresponding WAL events. Own-order
// risk evaluation is a shadow pass: the sim has already committed the
// order to the book by the time Evaluate runs, so the decision is
// observational (metrics, WAL trail) rather than a gate. A real
// strategy path would call risk.Engine.Evaluate before
// gateway.Gateway.Submit.
func runStep(queue *bus.Queue, book *lob.Lob, gw *gateway.Gateway, generator *sim.Generator, engine *risk.Engine, exposure *snapshot.ExposureReducer, symbolID uint32, seq *uint64, lastEventTs *int64, traceGen *obs.TraceGenerator, metrics *obs.Metrics) error {
	stepStart := time.Now()
	result := generator.Step(book, gw)
	stepDur := time.Since(stepStart)

	if result.OwnAdded != nil {
		metrics.ObserveAdd(true)
		order := result.OwnAdded
		queuePos := lob.Queue(0)
		if lvl, ok := book.FindLevel(order.Side, order.Price); ok {
			if resting, ok := lvl.FindId(order.ID); ok {
				queuePos = resting.Queue
			}
		}
		intent := schema.OrderIntent{
			OrderID:  uint64(order.ID),
			SymbolID: symbolID,
			Side:     toSchemaSide(order.Side),
			Type:     schema.OrderTypeLimit,
			Price:    schema.Price(order.Price),
			Qty:      schema.Quantity(order.Qty),
		}
		evalStart := time.Now()
		decision := engine.Evaluate(intent, risk.StateView{
			Position:       exposure.Exposure(symbolID),
			ReferencePrice: intent.Price,
			Now:            time.Now().UTC().UnixNano(),
		})
		metrics.ObserveRiskEval(time.Since(evalStart))
		metrics.IncRiskReason(decision.Reason)
		decisionTs := time.Now().UTC().UnixNano()
		if err := publishEvent(queue, schema.EventRiskDecision, seq, decisionTs, codec.EncodeRiskDecision(nil, decision), traceGen.Next(), lastEventTs, metrics); err != nil {
			return err
		}

		evt := schema.OrderAdded{
			OrderID:  uint64(order.ID),
			SymbolID: symbolID,
			Side:     toSchemaSide(order.Side),
			Flags:    schema.FlagOwnOrder,
			Price:    schema.Price(order.Price),
			Qty:      schema.Quantity(order.Qty),
			Queue:    schema.Quantity(queuePos),
		}
		exposure.ApplyOrderAdded(evt)
		ts := time.Now().UTC().UnixNano()
		if err := publishEvent(queue, schema.EventOrderAdded, seq, ts, codec.EncodeOrderAdded(nil, evt), traceGen.Next(), lastEventTs, metrics); err != nil {
			return err
		}
	}

	if result.OwnCanceled != 0 {
		metrics.ObserveCancel()
		evt := schema.OrderCanceled{
			OrderID:  uint64(result.OwnCanceled),
			SymbolID: symbolID,
			Flags:    schema.FlagOwnOrder,
		}
		exposure.ApplyOrderCanceled(evt)
		ts := time.Now().UTC().UnixNano()
		if err := publishEvent(queue, schema.EventOrderCanceled, seq, ts, codec.EncodeOrderCanceled(nil, evt), traceGen.Next(), lastEventTs, metrics); err != nil {
			return err
		}
	}

	if result.Print != nil {
		metrics.ObserveReduce(stepDur)
		exposure.ApplyPrint(*result.Print)
		ts := time.Now().UTC().UnixNano()
		if err := publishEvent(queue, schema.EventPrint, seq, ts, codec.EncodePrint(nil, *result.Print), traceGen.Next(), lastEventTs, metrics); err != nil {
			return err
		}
	}

	if result.Aggression != nil {
		metrics.ObserveWalk(stepDur)
		exposure.ApplyAggression(*result.Aggression)
		ts := time.Now().UTC().UnixNano()
		if err := publishEvent(queue, schema.EventAggression, seq, ts, codec.EncodeAggression(nil, *result.Aggression), traceGen.Next(), lastEventTs, metrics); err != nil {
			return err
		}
	}

	return nil
}

func runReplay(ctx context.Context, logger zerolog.Logger, cfg recorder.PlaybackConfig, snapshotPath string, verifySnapshot bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := bus.NewQueue(1024)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	counts := make(map[schema.EventType]int)
	total := 0
	exposure := snapshot.NewExposureReducer()

	wg.Add(1)
	go func() {
		defer wg.Done()
		queue.Run(ctx, func(e bus.Event) {
			total++
			counts[e.Header.Type]++
			if err := applyReplayEvent(exposure, e); err != nil {
				select {
				case errCh <- err:
				default:
				}
				cancel()
			}
		})
	}()

	pb, err := recorder.NewPlayback(cfg)
	if err != nil {
		return err
	}
	err = pb.Run(ctx, func(header schema.EventHeader, payload []byte) error {
		var copied []byte
		if len(payload) > 0 {
			copied = make([]byte, len(payload))
			copy(copied, payload)
		}
		return queue.TryPublish(bus.Event{Header: header, Payload: copied})
	})

	queue.Close()
	wg.Wait()

	if err != nil {
		return err
	}
	var applyErr error
	select {
	case applyErr = <-errCh:
	default:
	}
	if applyErr != nil {
		return applyErr
	}
	if verifySnapshot {
		if snapshotPath == "" {
			return fmt.Errorf("snapshot path is empty")
		}
		expected, err := snapshot.ReadSnapshot(snapshotPath)
		if err != nil {
			return err
		}
		actual := exposure.Snapshot()
		if err := snapshot.CompareSnapshots(expected, actual); err != nil {
			return err
		}
		logger.Info().Int("symbols", len(actual.Exposures)).Msg("snapshot verified")
	}
	logger.Info().Int("total", total).Interface("counts", counts).Int("symbols", exposure.Count()).Msg("replay completed")
	return nil
}

func applyReplayEvent(exposure *snapshot.ExposureReducer, e bus.Event) error {
	switch e.Header.Type {
	case schema.EventOrderAdded:
		evt, ok := codec.DecodeOrderAdded(e.Payload)
		if !ok {
			return fmt.Errorf("decode order added failed")
		}
		exposure.ApplyOrderAdded(evt)
	case schema.EventOrderCanceled:
		evt, ok := codec.DecodeOrderCanceled(e.Payload)
		if !ok {
			return fmt.Errorf("decode order canceled failed")
		}
		exposure.ApplyOrderCanceled(evt)
	case schema.EventPrint:
		evt, ok := codec.DecodePrint(e.Payload)
		if !ok {
			return fmt.Errorf("decode print failed")
		}
		exposure.ApplyPrint(evt)
	case schema.EventAggression:
		evt, ok := codec.DecodeAggression(e.Payload)
		if !ok {
			return fmt.Errorf("decode aggression failed")
		}
		exposure.ApplyAggression(evt)
	}
	return nil
}

func flattenLevels(book *lob.Lob, symbolID uint32) []schema.LevelSnapshot {
	var out []schema.LevelSnapshot
	for _, side := range []lob.Side{lob.Ask, lob.Bid} {
		for _, lvl := range book.Levels(side) {
			out = append(out, schema.LevelSnapshot{
				SymbolID:   symbolID,
				Side:       toSchemaSide(side),
				Price:      schema.Price(lvl.Price()),
				Size:       schema.Quantity(lvl.Size()),
				OrderCount: uint16(lvl.Len()),
			})
		}
	}
	return out
}

func toSchemaSide(side lob.Side) schema.OrderSide {
	if side == lob.Bid {
		return schema.OrderSideBuy
	}
	return schema.OrderSideSell
}

func loadConfig(path, symbolName string, seed, basePrice int64) (ops.Loaded, error) {
	if path == "" {
		return defaultLoaded(symbolName, seed, basePrice)
	}
	return ops.Load(path)
}

func defaultLoaded(symbolName string, seed, basePrice int64) (ops.Loaded, error) {
	reg := schema.NewRegistry()
	venueID, err := reg.AddVenue("SIM")
	if err != nil {
		return ops.Loaded{}, err
	}
	scale := schema.ScaleSpec{
		PriceScale:    0,
		QuantityScale: 0,
		NotionalScale: 0,
		FeeScale:      0,
	}
	symbolID, err := reg.AddSymbol(symbolName, venueID, scale)
	if err != nil {
		return ops.Loaded{}, err
	}
	simCfg := sim.DefaultConfig()
	return ops.Loaded{
		Registry: reg,
		Risk: risk.Config{
			MaxOrderQty:      schema.Quantity(1000),
			MaxOrderNotional: schema.Notional(1_000_000),
			MaxPosition:      schema.Quantity(5_000),
		},
		Order: ops.OrderSpec{
			SymbolID: symbolID,
		},
		SimSeed: seed,
		Book: lob.Config{
			Shown:     true,
			MaxLevels: 25,
			MaxOrds:   32,
			Search:    lob.Binary,
		},
		Sim: simCfg,
	}, nil
}

func resolveSnapshotPath(dir string, path string) string {
	if path != "" {
		return path
	}
	return filepath.Join(dir, "snapshot.json")
}

func watchConfig(ctx context.Context, logger zerolog.Logger, path string, interval time.Duration, symbolName string, seed, basePrice int64, update func(ops.Loaded)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastMod time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				logger.Warn().Err(err).Msg("config stat failed")
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			loaded, err := loadConfig(path, symbolName, seed, basePrice)
			if err != nil {
				logger.Warn().Err(err).Msg("config reload failed")
				continue
			}
			update(loaded)
			lastMod = info.ModTime()
			logger.Info().Str("path", path).Msg("config reloaded")
		}
	}
}

func publishEvent(queue *bus.Queue, eventType schema.EventType, seq *uint64, ts int64, payload []byte, traceID uint64, lastEventTs *int64, metrics *obs.Metrics) error {
	next := nextSeq(seq)
	if lastEventTs != nil {
		*lastEventTs = ts
	}
	header := schema.NewHeader(eventType, 1, next, ts, ts)
	if traceID == 0 {
		traceID = next
	}
	header.TraceID = traceID
	err := queue.TryPublish(bus.Event{Header: header, Payload: payload})
	if metrics != nil {
		if err != nil {
			switch {
			case errors.Is(err, bus.ErrQueueFull):
				metrics.IncQueueDrop()
			case errors.Is(err, bus.ErrQueueClosed):
				metrics.IncQueueClosed()
			}
		} else {
			metrics.ObserveEvent(header)
		}
	}
	return err
}

func nextSeq(seq *uint64) uint64 {
	*seq += 1
	return *seq
}
