// Package nodeconfig loads the process-level settings a sanchaind
// instance boots with - data directory, node id, listen addresses - from
// the environment, the same getEnvOrDefault/getEnvIntOrDefault-over-.env
// pattern evm-ingestion/main.go uses for its RPC/server settings.
package nodeconfig

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/containerman17/sanchain/internal/consts"
)

// Process holds every setting sanchaind reads at startup.
type Process struct {
	DataRoot    string
	NodeID      string
	APIAddr     string
	MetricsAddr string
	PeerAddr    string // optional: another node's broadcast address to relay from
}

// Load reads .env (if present) and the environment into a Process,
// falling back to consts defaults exactly as evm-ingestion/main.go does.
func Load() Process {
	_ = godotenv.Load()

	return Process{
		DataRoot:    getEnvOrDefault("SANCHAIN_DATA_ROOT", "./data"),
		NodeID:      getEnvOrDefault("SANCHAIN_NODE_ID", "node0"),
		APIAddr:     getEnvOrDefault("SANCHAIN_API_ADDR", consts.APIListenAddr),
		MetricsAddr: getEnvOrDefault("SANCHAIN_METRICS_ADDR", consts.MetricsListenAddr),
		PeerAddr:    getEnvOrDefault("SANCHAIN_PEER_ADDR", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
