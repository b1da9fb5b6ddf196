package server

import (
	"log/slog"
	"net/http"
)

// Config holds router options.
type Config struct {
	// AllowedOrigins lists the CORS origins; "*" allows any.
	AllowedOrigins []string
}

// DefaultConfig allows any origin.
func DefaultConfig() Config {
	return Config{AllowedOrigins: []string{"*"}}
}

// NewRouter registers the project API on a method-aware ServeMux.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /chunks", h.ListChunks)
	mux.HandleFunc("GET /chunks/{id}", h.GetChunk)

	mux.HandleFunc("POST /rebuild", h.Rebuild)
	mux.HandleFunc("POST /review", h.Review)

	mux.HandleFunc("GET /jobs", h.ListJobs)
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)

	return Chain(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)(mux)
}
