package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/olegrjumin/imgscope/internal/analyzer"
	"github.com/olegrjumin/imgscope/internal/service"
)

// analyzeRequest represents the JSON request body for the /api/analyze endpoint
type analyzeRequest struct {
	URL       string `json:"url"`
	TimeoutMs *int   `json:"timeout_ms,omitempty"`
}

// analyzeHandler handles POST requests to /api/analyze
// Accepts a JSON body with a page URL, returns the full analysis result
func analyzeHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Only accept POST requests
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		// Parse JSON request body
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		// Validate that URL is provided
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, "URL is required")
			return
		}

		// Optional per-request timeout override
		var timeout time.Duration
		if req.TimeoutMs != nil && *req.TimeoutMs > 0 {
			timeout = time.Duration(*req.TimeoutMs) * time.Millisecond
		}

		// Perform the analysis through the service layer
		result, err := svc.AnalyzeURL(r.Context(), req.URL, timeout)
		if err != nil {
			writeError(w, statusForError(err), err.Error())
			return
		}

		// Return the result
		writeJSON(w, http.StatusOK, result)
	}
}

// statusForError maps analysis errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, analyzer.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, analyzer.ErrFetch), errors.Is(err, analyzer.ErrRender):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
