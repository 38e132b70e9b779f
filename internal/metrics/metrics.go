// Package metrics exposes Prometheus counters and gauges for the ledger
// engine, grounded on ingestion/evm/rpc/metrics/metrics.go's
// CounterVec/GaugeVec + init()/MustRegister + StartServer pattern.
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BlocksMinedTotal counts blocks this node has successfully mined.
	BlocksMinedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sanchain_blocks_mined_total",
			Help: "Total number of blocks mined by this node",
		},
	)

	// MempoolDepth is the current number of pending transactions.
	MempoolDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sanchain_mempool_depth",
			Help: "Current number of transactions pending in the mempool",
		},
	)

	// ChainHeight is the index of the last committed block.
	ChainHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sanchain_chain_height",
			Help: "Index of the last committed block",
		},
	)

	// Circulation is the total value minted so far, in base units.
	Circulation = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sanchain_circulation_units",
			Help: "Total circulating value in base units",
		},
	)

	// VerificationRejectsTotal counts rejected transactions by error kind.
	VerificationRejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanchain_verification_rejects_total",
			Help: "Total transactions rejected during verification, by reason",
		},
		[]string{"reason"},
	)

	// MiningDurationSeconds is a histogram of wall-clock time per mining pass.
	MiningDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sanchain_mining_duration_seconds",
			Help:    "Wall-clock duration of one mining pass, including proof-of-work search",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
	)

	// BroadcastClientsConnected is the current fan-out peer count.
	BroadcastClientsConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sanchain_broadcast_clients_connected",
			Help: "Number of peers currently connected to the broadcast hub",
		},
	)
)

func init() {
	prometheus.MustRegister(BlocksMinedTotal)
	prometheus.MustRegister(MempoolDepth)
	prometheus.MustRegister(ChainHeight)
	prometheus.MustRegister(Circulation)
	prometheus.MustRegister(VerificationRejectsTotal)
	prometheus.MustRegister(MiningDurationSeconds)
	prometheus.MustRegister(BroadcastClientsConnected)
}

// StartServer starts the metrics HTTP server on addr, mirroring
// metrics.StartServer in the teacher's ingestion package.
func StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		log.Printf("[metrics] listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}
