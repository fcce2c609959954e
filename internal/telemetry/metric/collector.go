package metric

import "github.com/prometheus/client_golang/prometheus"

// KeySpaceStats is the read-only view the Collector needs.
type KeySpaceStats interface {
	Count() int
	ShardCount() int
}

// Collector reports key space size at scrape time. Counting walks every
// shard under its read lock, so it is not done on the command path.
type Collector struct {
	stats  KeySpaceStats
	keys   *prometheus.Desc
	shards *prometheus.Desc
}

// NewCollector creates a Collector over stats.
func NewCollector(stats KeySpaceStats) *Collector {
	return &Collector{
		stats: stats,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Keys currently held, including expired keys not yet purged.",
			nil, nil,
		),
		shards: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keyspace_shards"),
			"Number of key space shards.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.shards
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.stats.Count()))
	ch <- prometheus.MustNewConstMetric(c.shards, prometheus.GaugeValue, float64(c.stats.ShardCount()))
}
