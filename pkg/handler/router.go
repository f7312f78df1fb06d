package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/genegraph/pkg/middle"
)

// NewRouter wires every route of the service and wraps it with the request
// middlewares.
func NewRouter(gctx *GraphContext, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// Main routes
	mux.HandleFunc("GET /", gctx.MainPage)
	mux.HandleFunc("GET /graph/{graph_id}", gctx.GraphPage)

	// API routes
	mux.HandleFunc("GET /api/v1/health", HealthCheck)
	mux.HandleFunc("POST /api/v1/graph", gctx.GenerateGraphHandler)
	mux.HandleFunc("GET /api/v1/graph/{graph_id}", gctx.GetGraphHandler)
	mux.HandleFunc("DELETE /api/v1/graph/{graph_id}", gctx.DeleteGraphHandler)
	mux.HandleFunc("GET /api/v1/graphs", gctx.ListGraphsHandler)

	return middle.Chain(mux,
		middle.RequestIDMiddleware(log),
		middle.LoggingMiddleware(log),
		middle.RecoveryMiddleware(log),
	)
}
