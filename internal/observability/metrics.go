// Package observability registers the Prometheus metrics the tracker
// exposes on its operational HTTP surface.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter and gauge the tracker exposes, each labeled
// by chain and network so one registry covers all monitors.
type Metrics struct {
	BlocksProcessed   *prometheus.CounterVec
	DepositsInserted  *prometheus.CounterVec
	DepositsConfirmed *prometheus.CounterVec
	AdapterErrors     *prometheus.CounterVec
	CheckpointHeight  *prometheus.GaugeVec
}

// NewMetrics registers the tracker's metrics against the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests should pass a
// fresh prometheus.NewRegistry() so repeated registration across test
// cases doesn't panic on duplicate collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BlocksProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_tracker_blocks_processed_total",
			Help: "Total number of blocks fully processed by the ingestion pipeline",
		}, []string{"chain", "network"}),
		DepositsInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_tracker_deposits_inserted_total",
			Help: "Total number of pending deposit rows inserted by the wallet filter",
		}, []string{"chain", "network"}),
		DepositsConfirmed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_tracker_deposits_confirmed_total",
			Help: "Total number of deposits that reached the confirmed status and were credited",
		}, []string{"chain", "network"}),
		AdapterErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "deposit_tracker_adapter_errors_total",
			Help: "Total number of chain adapter errors, by failure kind",
		}, []string{"chain", "network", "kind"}),
		CheckpointHeight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "deposit_tracker_checkpoint_height",
			Help: "Last block height persisted to the checkpoint store",
		}, []string{"chain", "network"}),
	}
}

// Handler returns the HTTP handler to mount at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
