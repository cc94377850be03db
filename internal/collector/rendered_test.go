package collector

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolveChromePath(t *testing.T) {
	// An explicit path that exists is honored as-is
	tmp := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(tmp, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("Failed to write stub: %v", err)
	}
	if got := resolveChromePath(tmp); got != tmp {
		t.Errorf("resolveChromePath(%q) = %q, want the explicit path", tmp, got)
	}

	// An explicit path that does not exist yields nothing rather than
	// silently running a different browser than the one configured
	missing := filepath.Join(t.TempDir(), "nope")
	if got := resolveChromePath(missing); got != "" {
		t.Errorf("resolveChromePath(%q) = %q, want empty", missing, got)
	}
}

func TestNewRendered_NoBrowser(t *testing.T) {
	_, err := NewRendered(RenderedOptions{ChromePath: "/does/not/exist"})
	if err == nil {
		t.Error("Expected an error when the configured browser is missing")
	}
}

func TestRenderedCollector_Collect(t *testing.T) {
	// Skip test if running in CI without Chrome
	if os.Getenv("CI") == "true" {
		t.Skip("Skipping browser test in CI")
	}
	if findChromePath() == "" {
		t.Skip("Skipping browser test: no Chrome installation found")
	}

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 16; i++ {
		img.Set(i%4, i/4, color.RGBA{R: 200, A: 255})
	}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	pixel := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><body><img src="/pixel.png" alt="dot"></body></html>`)
	})
	mux.HandleFunc("/pixel.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(pixel)
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	col, err := NewRendered(RenderedOptions{
		UserAgent:         "imgscope-test",
		ViewportWidth:     1280,
		ViewportHeight:    800,
		NavigationTimeout: 20 * time.Second,
		SettleDelay:       500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRendered() error: %v", err)
	}
	if !col.Rendered() {
		t.Error("Rendered collection must report as rendered")
	}

	evidence, err := col.Collect(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	if evidence.IsLikelyFrameworkSite {
		t.Error("Expected a plain page not to be flagged as a framework site")
	}
	if len(evidence.Images) != 1 {
		t.Fatalf("Expected 1 image fact, got %d", len(evidence.Images))
	}

	fact := evidence.Images[0]
	if !strings.HasSuffix(fact.Source, "/pixel.png") {
		t.Errorf("Source = %q, want a resolved /pixel.png URL", fact.Source)
	}
	if fact.Width != 4 || fact.Height != 4 {
		t.Errorf("Natural dimensions = %dx%d, want 4x4", fact.Width, fact.Height)
	}
	if fact.Attrs["alt"] != "dot" {
		t.Errorf("Attrs = %+v", fact.Attrs)
	}
	if fact.Visible == nil || !*fact.Visible {
		t.Error("Expected the image to be reported visible")
	}
	if fact.InViewport == nil || !*fact.InViewport {
		t.Error("Expected the image to be reported in the viewport")
	}
	if fact.NextImage == nil || *fact.NextImage {
		t.Error("Expected a determined, negative framework-component fact")
	}

	// The image response crossed the wire during navigation, so the
	// interception map carries its headers
	facts, ok := evidence.NetworkResponses[ts.URL+"/pixel.png"]
	if !ok {
		t.Fatalf("Expected an intercepted response, got %+v", evidence.NetworkResponses)
	}
	if facts.Status != http.StatusOK {
		t.Errorf("Intercepted status = %d, want 200", facts.Status)
	}
	if !strings.HasPrefix(facts.ContentType, "image/png") {
		t.Errorf("Intercepted content type = %q", facts.ContentType)
	}
	if facts.Headers.Get("Cache-Control") == "" {
		t.Error("Expected intercepted cache-control header")
	}
}

func TestToHTTPHeader(t *testing.T) {
	headers := toHTTPHeader(map[string]interface{}{
		"Content-Type":   "image/png",
		"Set-Cookie":     "a=1\nb=2",
		"Content-Length": 1234,
	})

	if got := headers.Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := headers.Values("Set-Cookie"); len(got) != 2 {
		t.Errorf("Expected folded header split into 2 values, got %v", got)
	}
	if got := headers.Get("Content-Length"); got != "1234" {
		t.Errorf("Content-Length = %q, want 1234 via fmt fallback", got)
	}
}

func TestDeclaredLength(t *testing.T) {
	h := http.Header{}
	if declaredLength(h) != 0 {
		t.Error("Expected 0 for a missing header")
	}

	h.Set("Content-Length", "8192")
	if got := declaredLength(h); got != 8192 {
		t.Errorf("declaredLength = %d, want 8192", got)
	}

	h.Set("Content-Length", "garbage")
	if declaredLength(h) != 0 {
		t.Error("Expected 0 for an unparseable header")
	}
}
