package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Floor metrics
	TableTransitionsCounter *prometheus.CounterVec
	AllocationsCounter      *prometheus.CounterVec
	TimerAlertsCounter      *prometheus.CounterVec
	TablesGauge             *prometheus.GaugeVec
	SeatedGuestsGauge       prometheus.Gauge

	// Store metrics
	StoreOperationDuration *prometheus.HistogramVec

	initOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Only the
// first call has an effect; the record helpers are no-ops before it.
func InitMetrics(prefix string) {
	initOnce.Do(func() {
		HttpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)

		HttpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		TableTransitionsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_table_transitions_total",
				Help: "Total number of table status transitions",
			},
			[]string{"from", "to"},
		)

		AllocationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_allocations_total",
				Help: "Total number of party allocations by result",
			},
			[]string{"result"},
		)

		TimerAlertsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_timer_alerts_total",
				Help: "Total number of timer alerts emitted",
			},
			[]string{"kind"},
		)

		TablesGauge = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_tables",
				Help: "Current number of tables per status",
			},
			[]string{"status"},
		)

		SeatedGuestsGauge = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_seated_guests",
				Help: "Current number of seated guests",
			},
		)

		StoreOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_store_operation_duration_seconds",
				Help:    "Duration of snapshot store operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)
	})
}

// TrackStoreOperation returns a function that records the duration of a store operation
func TrackStoreOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if StoreOperationDuration == nil {
			return
		}
		StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

func RecordRequest(method, path, status string, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordTransition(from, to string) {
	if TableTransitionsCounter == nil {
		return
	}
	TableTransitionsCounter.WithLabelValues(from, to).Inc()
}

func RecordAllocation(result string) {
	if AllocationsCounter == nil {
		return
	}
	AllocationsCounter.WithLabelValues(result).Inc()
}

func RecordAlert(kind string) {
	if TimerAlertsCounter == nil {
		return
	}
	TimerAlertsCounter.WithLabelValues(kind).Inc()
}

// UpdateFloor sets the per-status table gauges and the seated guest gauge.
func UpdateFloor(vacant, occupied, reserved, guests int) {
	if TablesGauge == nil {
		return
	}
	TablesGauge.WithLabelValues("vacant").Set(float64(vacant))
	TablesGauge.WithLabelValues("occupied").Set(float64(occupied))
	TablesGauge.WithLabelValues("reserved").Set(float64(reserved))
	SeatedGuestsGauge.Set(float64(guests))
}
