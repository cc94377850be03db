package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/olegrjumin/imgscope/internal/logging"
	"github.com/olegrjumin/imgscope/internal/service"
)

// NewServer builds the HTTP server with both public endpoints mounted
// behind the shared middleware chain
func NewServer(addr string, logger *logging.Logger, svc *service.Service) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/api/analyze", analyzeHandler(svc))

	// Logging wraps recovery so a panic still produces a request line;
	// CORS answers preflights before the handlers run
	handler := loggingMiddleware(logger, recoveryMiddleware(logger, corsMiddleware(mux)))

	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}

// healthHandler reports liveness for load balancers and uptime checks
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "imgscope-api",
	})
}

// writeJSON writes data as a JSON response body with the given status.
// Encoding failures are ignored: the status line is already out.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error body with the given status code
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
