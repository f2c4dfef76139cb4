package redis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// PoolStatser is the part of a go-redis client the collector reads.
type PoolStatser interface {
	PoolStats() *redis.PoolStats
}

// PoolCollector reports connection pool statistics at scrape time.
type PoolCollector struct {
	pool     PoolStatser
	hits     *prometheus.Desc
	misses   *prometheus.Desc
	timeouts *prometheus.Desc
	total    *prometheus.Desc
	idle     *prometheus.Desc
}

func NewPoolCollector(pool PoolStatser) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("censusdesk_redis_pool_"+name, help, nil, nil)
	}
	return &PoolCollector{
		pool:     pool,
		hits:     desc("hits_total", "Times a free connection was found in the pool."),
		misses:   desc("misses_total", "Times a free connection was not found in the pool."),
		timeouts: desc("timeouts_total", "Times waiting for a connection timed out."),
		total:    desc("total_conns", "Connections in the pool."),
		idle:     desc("idle_conns", "Idle connections in the pool."),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.timeouts
	ch <- c.total
	ch <- c.idle
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.PoolStats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.timeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns))
}

// RegisterMetrics exports the pool statistics of c on reg.
func (c *Client) RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(NewPoolCollector(c.Client))
}
