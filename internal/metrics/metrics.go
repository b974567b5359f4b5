// Package metrics provides Prometheus metrics for the weather buddy.
//
// Every Record method is safe on a nil *BuddyMetrics, so components can be
// built without metrics in tests and CLI one-shots.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type BuddyMetrics struct {
	refreshesTotal      *prometheus.CounterVec
	refreshDuration     prometheus.Histogram
	staleResultsTotal   prometheus.Counter
	alertsFiredTotal    *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	persistenceErrors   *prometheus.CounterVec
	searchRequestsTotal *prometheus.CounterVec
	favoritesGauge      prometheus.Gauge
	temperatureGauge    prometheus.Gauge
	scheduledRunsTotal  prometheus.Counter
}

// NewBuddyMetrics creates the metrics and registers them with registry.
func NewBuddyMetrics(registry prometheus.Registerer) (*BuddyMetrics, error) {
	m := &BuddyMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *BuddyMetrics) initMetrics() {
	m.refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buddy_refreshes_total",
			Help: "Forecast refreshes by resulting status",
		},
		[]string{"status"}, // ready, cached, error
	)

	m.refreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "buddy_refresh_duration_seconds",
		Help:    "Time taken to fetch a forecast",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	m.staleResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "buddy_stale_results_total",
		Help: "Fetch results discarded because a newer fetch had started",
	})

	m.alertsFiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buddy_alerts_fired_total",
			Help: "Weather alerts fired",
		},
		[]string{"alert"},
	)

	m.notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buddy_notifications_total",
			Help: "Notification deliveries and schedules",
		},
		[]string{"kind", "status"}, // kind: alert, reminder
	)

	m.persistenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buddy_persistence_errors_total",
			Help: "Swallowed storage failures",
		},
		[]string{"operation"},
	)

	m.searchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buddy_search_requests_total",
			Help: "City searches by source and status",
		},
		[]string{"source", "status"}, // source: cache, network
	)

	m.favoritesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "buddy_favorites",
		Help: "Number of favorite cities",
	})

	m.temperatureGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "buddy_temperature_celsius",
		Help: "Current temperature of the selected city",
	})

	m.scheduledRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "buddy_scheduled_refreshes_total",
		Help: "Refreshes started by the periodic scheduler",
	})
}

// Describe implements the Collector interface
func (m *BuddyMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.refreshesTotal.Describe(ch)
	m.refreshDuration.Describe(ch)
	m.staleResultsTotal.Describe(ch)
	m.alertsFiredTotal.Describe(ch)
	m.notificationsTotal.Describe(ch)
	m.persistenceErrors.Describe(ch)
	m.searchRequestsTotal.Describe(ch)
	m.favoritesGauge.Describe(ch)
	m.temperatureGauge.Describe(ch)
	m.scheduledRunsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *BuddyMetrics) Collect(ch chan<- prometheus.Metric) {
	m.refreshesTotal.Collect(ch)
	m.refreshDuration.Collect(ch)
	m.staleResultsTotal.Collect(ch)
	m.alertsFiredTotal.Collect(ch)
	m.notificationsTotal.Collect(ch)
	m.persistenceErrors.Collect(ch)
	m.searchRequestsTotal.Collect(ch)
	m.favoritesGauge.Collect(ch)
	m.temperatureGauge.Collect(ch)
	m.scheduledRunsTotal.Collect(ch)
}

func (m *BuddyMetrics) RecordRefresh(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.refreshesTotal.WithLabelValues(status).Inc()
	m.refreshDuration.Observe(duration.Seconds())
}

func (m *BuddyMetrics) RecordStaleResult() {
	if m == nil {
		return
	}
	m.staleResultsTotal.Inc()
}

func (m *BuddyMetrics) RecordAlertFired(alert string) {
	if m == nil {
		return
	}
	m.alertsFiredTotal.WithLabelValues(alert).Inc()
}

func (m *BuddyMetrics) RecordNotification(kind, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(kind, status).Inc()
}

func (m *BuddyMetrics) RecordPersistenceError(operation string) {
	if m == nil {
		return
	}
	m.persistenceErrors.WithLabelValues(operation).Inc()
}

func (m *BuddyMetrics) RecordSearch(source, status string) {
	if m == nil {
		return
	}
	m.searchRequestsTotal.WithLabelValues(source, status).Inc()
}

func (m *BuddyMetrics) SetFavorites(n int) {
	if m == nil {
		return
	}
	m.favoritesGauge.Set(float64(n))
}

func (m *BuddyMetrics) SetTemperature(c float64) {
	if m == nil {
		return
	}
	m.temperatureGauge.Set(c)
}

func (m *BuddyMetrics) RecordScheduledRun() {
	if m == nil {
		return
	}
	m.scheduledRunsTotal.Inc()
}
