package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"spd/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncBackupsTotal(result string)
	ObserveBackupDuration(duration time.Duration)
	AddBackupsPruned(count int)
	IncRestoresTotal(result string)
	IncStateSaves()
	SetProfilesTotal(count int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	backupsTotal    *prometheus.CounterVec
	backupDuration  prometheus.Histogram
	backupsPruned   prometheus.Counter
	restoresTotal   *prometheus.CounterVec
	stateSaves      prometheus.Counter
	profilesTotal   prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncBackupsTotal(result string) {
	m.backupsTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveBackupDuration(duration time.Duration) {
	m.backupDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) AddBackupsPruned(count int) {
	m.backupsPruned.Add(float64(count))
}

func (m *MetricsProvider) IncRestoresTotal(result string) {
	m.restoresTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncStateSaves() {
	m.stateSaves.Inc()
}

func (m *MetricsProvider) SetProfilesTotal(count int) {
	m.profilesTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		backupsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spd_backups_total",
			Help: "Total number of backup attempts by result",
		}, []string{"result"}),

		backupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "spd_backup_duration_seconds",
			Help:    "Duration of backup creation in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		backupsPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spd_backups_pruned_total",
			Help: "Total number of backups removed by retention pruning",
		}),

		restoresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "spd_restores_total",
			Help: "Total number of restore attempts by result",
		}, []string{"result"}),

		stateSaves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "spd_state_saves_total",
			Help: "Total number of profile state saves",
		}),

		profilesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "spd_profiles_total",
			Help: "Current number of profiles",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncBackupsTotal(_ string)                         {}
func (n *noopMetrics) ObserveBackupDuration(_ time.Duration)            {}
func (n *noopMetrics) AddBackupsPruned(_ int)                           {}
func (n *noopMetrics) IncRestoresTotal(_ string)                        {}
func (n *noopMetrics) IncStateSaves()                                   {}
func (n *noopMetrics) SetProfilesTotal(_ int)                           {}
