package obs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veloxmarkets/lobcore/internal/schema"
)

// PrometheusBridge exports a Metrics snapshot as Prometheus collectors.
// It is a pull-based adapter: Collect reads Metrics.Snapshot() on every
// scrape rather than mirroring each atomic counter into a parallel
// prometheus.Counter, so internal/obs stays the single source of
// truth for the numbers.
type PrometheusBridge struct {
	metrics *Metrics

	addTotal         *prometheus.Desc
	addRejectedTotal *prometheus.Desc
	cancelTotal      *prometheus.Desc
	reduceTotal      *prometheus.Desc
	walkTotal        *prometheus.Desc
	levelEviction    *prometheus.Desc
	queueDrops       *prometheus.Desc
	reduceLatencyAvg *prometheus.Desc
	walkLatencyAvg   *prometheus.Desc
	riskReasonTotal  *prometheus.Desc
}

// NewPrometheusBridge wraps metrics for registration with a
// prometheus.Registry.
func NewPrometheusBridge(metrics *Metrics) *PrometheusBridge {
	return &PrometheusBridge{
		metrics:          metrics,
		addTotal:         prometheus.NewDesc("lob_add_total", "Total add_order calls", nil, nil),
		addRejectedTotal: prometheus.NewDesc("lob_add_rejected_total", "add_order calls rejected for capacity", nil, nil),
		cancelTotal:      prometheus.NewDesc("lob_cancel_total", "Total cancel_id calls that found an order", nil, nil),
		reduceTotal:      prometheus.NewDesc("lob_reduce_front_total", "Total reduce_front calls", nil, nil),
		walkTotal:        prometheus.NewDesc("lob_walk_until_lifted_total", "Total walk_until_lifted calls", nil, nil),
		levelEviction:    prometheus.NewDesc("lob_level_eviction_total", "Worst-level evictions from MaxLevels overflow", nil, nil),
		queueDrops:       prometheus.NewDesc("lob_bus_queue_drops_total", "Events dropped by a full bus queue", nil, nil),
		reduceLatencyAvg: prometheus.NewDesc("lob_reduce_front_latency_ns_avg", "Average reduce_front latency in nanoseconds", nil, nil),
		walkLatencyAvg:   prometheus.NewDesc("lob_walk_until_lifted_latency_ns_avg", "Average walk_until_lifted latency in nanoseconds", nil, nil),
		riskReasonTotal:  prometheus.NewDesc("lob_risk_decision_total", "Risk decisions by reason", []string{"reason"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (b *PrometheusBridge) Describe(ch chan<- *prometheus.Desc) {
	ch <- b.addTotal
	ch <- b.addRejectedTotal
	ch <- b.cancelTotal
	ch <- b.reduceTotal
	ch <- b.walkTotal
	ch <- b.levelEviction
	ch <- b.queueDrops
	ch <- b.reduceLatencyAvg
	ch <- b.walkLatencyAvg
	ch <- b.riskReasonTotal
}

// Collect implements prometheus.Collector.
func (b *PrometheusBridge) Collect(ch chan<- prometheus.Metric) {
	snap := b.metrics.Snapshot()

	ch <- prometheus.MustNewConstMetric(b.addTotal, prometheus.CounterValue, float64(snap.AddCount))
	ch <- prometheus.MustNewConstMetric(b.addRejectedTotal, prometheus.CounterValue, float64(snap.AddRejected))
	ch <- prometheus.MustNewConstMetric(b.cancelTotal, prometheus.CounterValue, float64(snap.CancelCount))
	ch <- prometheus.MustNewConstMetric(b.reduceTotal, prometheus.CounterValue, float64(snap.ReduceCount))
	ch <- prometheus.MustNewConstMetric(b.walkTotal, prometheus.CounterValue, float64(snap.WalkCount))
	ch <- prometheus.MustNewConstMetric(b.levelEviction, prometheus.CounterValue, float64(snap.LevelEviction))
	ch <- prometheus.MustNewConstMetric(b.queueDrops, prometheus.CounterValue, float64(snap.QueueDrops))
	ch <- prometheus.MustNewConstMetric(b.reduceLatencyAvg, prometheus.GaugeValue, float64(snap.ReduceLatency.Avg.Nanoseconds()))
	ch <- prometheus.MustNewConstMetric(b.walkLatencyAvg, prometheus.GaugeValue, float64(snap.WalkLatency.Avg.Nanoseconds()))

	for reason, count := range snap.RiskReasonCounts {
		ch <- prometheus.MustNewConstMetric(b.riskReasonTotal, prometheus.CounterValue, float64(count), riskReasonLabel(reason))
	}
}

func riskReasonLabel(r schema.RiskReason) string {
	switch r {
	case schema.RiskReasonNone:
		return "none"
	case schema.RiskReasonKillSwitch:
		return "kill_switch"
	case schema.RiskReasonMaxQty:
		return "max_qty"
	case schema.RiskReasonMaxNotional:
		return "max_notional"
	case schema.RiskReasonRateLimit:
		return "rate_limit"
	case schema.RiskReasonPriceBand:
		return "price_band"
	case schema.RiskReasonPositionLimit:
		return "position_limit"
	default:
		return strconv.Itoa(int(r))
	}
}
