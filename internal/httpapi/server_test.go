package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olegrjumin/imgscope/internal/analyzer"
	"github.com/olegrjumin/imgscope/internal/collector"
	"github.com/olegrjumin/imgscope/internal/httpclient"
	"github.com/olegrjumin/imgscope/internal/logging"
	"github.com/olegrjumin/imgscope/internal/service"
)

// newTestAPI wires a full static-collection pipeline behind the HTTP
// server and exposes it through httptest.
func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logging.NewWithOutput(io.Discard)
	client := httpclient.New("imgscope-test")
	col := collector.NewStatic(client, 2*time.Second, 0)
	anl := analyzer.New(col, client, analyzer.Options{
		ImageFetchTimeout:    2 * time.Second,
		MaxConcurrentFetches: 4,
	}, logger)
	svc := service.New(anl, logger, 10*time.Second)

	srv := NewServer(":0", logger, svc)
	api := httptest.NewServer(srv.Handler)
	t.Cleanup(api.Close)
	return api
}

// newPageServer serves a minimal page with a single decodable PNG.
func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		img.Set(i, i, color.RGBA{R: 200, A: 255})
	}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	picture := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><img src="/pic.png" alt="dot"></body></html>`)
	})
	mux.HandleFunc("/pic.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=31536000")
		w.Write(picture)
	})

	page := httptest.NewServer(mux)
	t.Cleanup(page.Close)
	return page
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp, err := http.Get(api.URL + "/health")
	if err != nil {
		t.Fatalf("Failed to call health endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
	if body["service"] != "imgscope-api" {
		t.Errorf("Expected service imgscope-api, got %q", body["service"])
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	api := newTestAPI(t)
	page := newPageServer(t)

	payload := fmt.Sprintf(`{"url": %q}`, page.URL)
	resp, err := http.Post(api.URL+"/api/analyze", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Failed to call analyze endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, raw)
	}

	var result analyzer.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode analysis result: %v", err)
	}

	if result.ID == "" {
		t.Error("Expected a non-empty run ID")
	}
	if result.URL != page.URL {
		t.Errorf("Expected URL %q, got %q", page.URL, result.URL)
	}
	if len(result.Images) != 1 {
		t.Fatalf("Expected 1 image record, got %d", len(result.Images))
	}

	rec := result.Images[0]
	if rec.Format != "png" {
		t.Errorf("Expected format png, got %q", rec.Format)
	}
	if rec.OptimizationScore < 0 || rec.OptimizationScore > 100 {
		t.Errorf("Expected score in [0,100], got %d", rec.OptimizationScore)
	}
	if result.UsedRenderedCollection {
		t.Error("Expected static collection for the API test pipeline")
	}
}

func TestAnalyzeEndpoint_RequestErrors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "GET not allowed",
			method:     http.MethodGet,
			body:       "",
			wantStatus: http.StatusMethodNotAllowed,
			wantError:  "Method not allowed",
		},
		{
			name:       "malformed JSON",
			method:     http.MethodPost,
			body:       `{"url": `,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid JSON",
		},
		{
			name:       "missing url",
			method:     http.MethodPost,
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "URL is required",
		},
		{
			name:       "unparseable target",
			method:     http.MethodPost,
			body:       `{"url": "not a url"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "",
		},
		{
			name:       "unreachable target",
			method:     http.MethodPost,
			body:       `{"url": "http://192.0.2.1/", "timeout_ms": 1500}`,
			wantStatus: http.StatusBadGateway,
			wantError:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, api.URL+"/api/analyze", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Failed to build request: %v", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Failed to call analyze endpoint: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if body["error"] == "" {
				t.Error("Expected a non-empty error message")
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Errorf("Expected error %q, got %q", tt.wantError, body["error"])
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req, err := http.NewRequest(http.MethodOptions, api.URL+"/api/analyze", nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to send preflight request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Expected Allow-Origin *, got %q", origin)
	}
	if methods := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "POST") {
		t.Errorf("Expected Allow-Methods to include POST, got %q", methods)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := logging.NewWithOutput(io.Discard)
	handler := recoveryMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 after panic, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("Expected generic error message, got %q", body["error"])
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "invalid URL maps to 400",
			err:  fmt.Errorf("parsing page URL: %w", analyzer.ErrInvalidURL),
			want: http.StatusBadRequest,
		},
		{
			name: "fetch failure maps to 502",
			err:  fmt.Errorf("fetching page: %w", analyzer.ErrFetch),
			want: http.StatusBadGateway,
		},
		{
			name: "render failure maps to 502",
			err:  fmt.Errorf("rendering page: %w", analyzer.ErrRender),
			want: http.StatusBadGateway,
		},
		{
			name: "unknown error maps to 500",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, got)
			}
		})
	}
}
