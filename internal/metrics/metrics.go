package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Trade instructions executed by action and final status"},
		[]string{"action", "status"},
	)
	TradeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trade_failures_total", Help: "Failed executions by error kind"},
		[]string{"kind"},
	)
	StageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trade_stage_seconds",
			Help:    "Latency of each pipeline stage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)
	RouteRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "route_retries_total", Help: "Route fetch attempts beyond the first"},
	)
)

func init() {
	prometheus.MustRegister(TradesTotal, TradeFailures, StageSeconds, RouteRetries)
}

// Handler exposes the default registry for mounting on another router.
func Handler() http.Handler { return promhttp.Handler() }

// Serve starts a dedicated metrics listener in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
