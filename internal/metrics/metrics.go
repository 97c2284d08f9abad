package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"linkchain/internal/models"
	"linkchain/internal/store"
)

var (
	profilesDesc = prometheus.NewDesc(
		"linkchain_profiles",
		"Users with a stored link, by platform",
		[]string{"platform"},
		nil,
	)
	activeChainsDesc = prometheus.NewDesc(
		"linkchain_active_chains",
		"Groups with an active chain",
		nil,
		nil,
	)

	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkchain_events_total",
		Help: "Transport events handled, by kind and outcome",
	}, []string{"kind", "outcome"})
	chainsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linkchain_chains_started_total",
		Help: "Chains started",
	})
	archiveFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linkchain_archive_failures_total",
		Help: "Superseded chains that could not be archived",
	})
	contributions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linkchain_contributions_total",
		Help: "Chain contribution changes, by platform and action",
	}, []string{"platform", "action"})
)

// scrapeTimeout bounds the store queries made on each scrape.
const scrapeTimeout = 5 * time.Second

// StoreCollector is a custom Prometheus collector that reads profile and
// chain counts from the store on each scrape.
type StoreCollector struct {
	stats store.Stats
}

// NewStoreCollector creates a collector over stats.
func NewStoreCollector(stats store.Stats) *StoreCollector {
	return &StoreCollector{stats: stats}
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- profilesDesc
	ch <- activeChainsDesc
}

// Collect queries the store and emits the current counts as gauges.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	for _, platform := range models.Platforms {
		n, err := c.stats.CountProfiles(ctx, platform)
		if err != nil {
			slog.Error("failed to collect profile metrics", "platform", platform, "error", err)
			continue
		}
		ch <- prometheus.MustNewConstMetric(profilesDesc, prometheus.GaugeValue, float64(n), string(platform))
	}

	n, err := c.stats.CountActiveChains(ctx)
	if err != nil {
		slog.Error("failed to collect chain metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(activeChainsDesc, prometheus.GaugeValue, float64(n))
}

var initOnce sync.Once

// Init registers the counters and the store collector with reg.
// Must be called once at startup.
func Init(reg prometheus.Registerer, stats store.Stats) {
	initOnce.Do(func() {
		reg.MustRegister(eventsTotal, chainsStarted, archiveFailures, contributions)
		reg.MustRegister(NewStoreCollector(stats))
	})
}

// RecordEvent counts a handled transport event.
func RecordEvent(kind, outcome string) {
	eventsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordChainStarted counts a started chain.
func RecordChainStarted() {
	chainsStarted.Inc()
}

// RecordArchiveFailure counts a chain that could not be archived.
func RecordArchiveFailure() {
	archiveFailures.Inc()
}

// RecordContribution counts a contribution change.
func RecordContribution(platform, action string) {
	contributions.WithLabelValues(platform, action).Inc()
}
