package api

import (
	"net/http"

	"github.com/triage-ai/bastion/internal/engine"
	"github.com/triage-ai/bastion/internal/storage"
	"go.uber.org/zap"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Engine     *engine.FirewallEngine
	Writer     storage.EventWriter
	Logger     *zap.Logger
	APIKeyHash string // bcrypt hash of the deployment API key; "" disables auth
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Check endpoint (auth required when an API key hash is configured)
	mux.HandleFunc("POST /v1/check-input", deps.authMiddleware(deps.handleCheck))

	// Health check
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return corsMiddleware(requestLogging(mux, deps.Logger))
}
