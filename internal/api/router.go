package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lobbyn/relay/internal/middleware"
)

// RelayPath is the websocket endpoint every client connects to.
const RelayPath = "/LOBBYN"

// RouterConfig holds configuration for the HTTP router
type RouterConfig struct {
	Logger *slog.Logger

	// Relay is the websocket handler mounted at RelayPath
	Relay http.Handler
}

// NewRouter mounts the relay endpoint and the health check.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.Handle(RelayPath, cfg.Relay).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
