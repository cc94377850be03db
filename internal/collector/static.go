package collector

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/olegrjumin/imgscope/internal/httpclient"
)

// nextMarkers are substrings whose presence in raw markup indicates a
// Next.js-built page without executing any scripts
var nextMarkers = []string{
	`id="__next"`,
	"__NEXT_DATA__",
	"/_next/static",
	"data-nimg",
}

// StaticCollector fetches the page markup once and parses <img>
// elements out of it. No scripts run, so no network map is produced and
// visibility facts stay unknown.
type StaticCollector struct {
	client   *httpclient.Client
	timeout  time.Duration
	maxBytes int64
}

// NewStatic returns a static collector fetching through the given client
func NewStatic(client *httpclient.Client, timeout time.Duration, maxBytes int64) *StaticCollector {
	return &StaticCollector{
		client:   client,
		timeout:  timeout,
		maxBytes: maxBytes,
	}
}

// Rendered reports whether this strategy drives a browser
func (s *StaticCollector) Rendered() bool { return false }

// Collect performs one timed GET of the page and extracts per-image
// facts from the markup. A transport failure or non-2xx status is fatal
// to the analysis.
func (s *StaticCollector) Collect(ctx context.Context, pageURL string) (*RawPageEvidence, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Get(fetchCtx, pageURL, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	evidence := &RawPageEvidence{
		IsLikelyFrameworkSite: looksLikeNextSite(string(resp.Body)),
		NetworkResponses:      map[string]ResponseFacts{},
	}

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		attrs := make(map[string]string, len(node.Attr))
		for _, a := range node.Attr {
			attrs[a.Key] = a.Val
		}

		facts := RawImageFacts{
			Source: attrs["src"],
			Srcset: attrs["srcset"],
			Attrs:  attrs,
		}

		parent := sel.Parent()
		if parent.Length() > 0 {
			facts.ParentTag = goquery.NodeName(parent)
			facts.ParentStyle, _ = parent.Attr("style")
		}

		evidence.Images = append(evidence.Images, facts)
	})

	return evidence, nil
}

// looksLikeNextSite reports whether the raw markup carries any Next.js marker
func looksLikeNextSite(markup string) bool {
	for _, marker := range nextMarkers {
		if strings.Contains(markup, marker) {
			return true
		}
	}
	return false
}
