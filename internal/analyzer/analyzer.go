package analyzer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegrjumin/imgscope/internal/collector"
	"github.com/olegrjumin/imgscope/internal/httpclient"
	"github.com/olegrjumin/imgscope/internal/logging"
)

// Options bound the per-image evidence gathering
type Options struct {
	ImageFetchTimeout    time.Duration // direct image fetch timeout, shorter than the page timeout
	MaxConcurrentFetches int           // fan-out bound across images
	MaxImageBytes        int64         // cap on a single image body read
}

// Analyzer runs the image-evidence pipeline against one page per call.
// Safe for concurrent use: every run owns its own browser session and
// evidence maps.
type Analyzer struct {
	collector collector.Collector
	client    *httpclient.Client
	opts      Options
	logger    *logging.Logger
}

// New creates an Analyzer over the given collection strategy
func New(c collector.Collector, client *httpclient.Client, opts Options, logger *logging.Logger) *Analyzer {
	if opts.MaxConcurrentFetches <= 0 {
		opts.MaxConcurrentFetches = 8
	}
	if opts.ImageFetchTimeout <= 0 {
		opts.ImageFetchTimeout = 10 * time.Second
	}
	return &Analyzer{
		collector: c,
		client:    client,
		opts:      opts,
		logger:    logger,
	}
}

// Analyze runs the full pipeline: collect raw evidence, normalize each
// image, score, flag the LCP candidate and aggregate page totals.
// Fails with ErrInvalidURL before any network activity for a malformed
// target, ErrRender when rendered collection fails, ErrFetch when the
// static page fetch fails. Per-image failures only shrink the image
// list; they never fail the run.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*AnalysisResult, error) {
	start := time.Now()

	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !pageURL.IsAbs() || pageURL.Host == "" ||
		(pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	evidence, err := a.collector.Collect(ctx, pageURL.String())
	if err != nil {
		if a.collector.Rendered() {
			return nil, fmt.Errorf("%w: %v", ErrRender, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	records := a.normalizeAll(ctx, pageURL, evidence)

	for i := range records {
		records[i].OptimizationScore, records[i].Recommendations =
			Score(&records[i], evidence.IsLikelyFrameworkSite)
	}

	SelectLCP(records, evidence.IsLikelyFrameworkSite)

	result := &AnalysisResult{
		ID:                     uuid.NewString(),
		URL:                    pageURL.String(),
		Images:                 records,
		IsLikelyFrameworkSite:  evidence.IsLikelyFrameworkSite,
		UsedRenderedCollection: a.collector.Rendered(),
		AnalyzedAt:             start.UTC().Format(time.RFC3339),
	}
	Aggregate(result)
	result.DurationMs = time.Since(start).Milliseconds()

	return result, nil
}
