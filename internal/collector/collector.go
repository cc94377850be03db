// Package collector gathers raw per-image evidence from a target page.
// Two strategies implement the same contract: rendered collection drives
// headless Chrome and observes the live DOM plus intercepted network
// responses; static collection fetches and parses the markup without
// executing scripts. Exactly one strategy runs per analysis.
package collector

import (
	"context"
	"net/http"
)

// Collector is the single contract both collection strategies implement
type Collector interface {
	// Collect gathers raw page evidence for an absolute page URL
	Collect(ctx context.Context, pageURL string) (*RawPageEvidence, error)

	// Rendered reports whether this strategy drives a browser
	Rendered() bool
}

// RawPageEvidence is the uniform evidence shape both strategies return
type RawPageEvidence struct {
	IsLikelyFrameworkSite bool           // Next.js markers found at page level
	Images                []RawImageFacts // one entry per <img>, in discovery order

	// NetworkResponses maps image URL to intercepted response facts.
	// Built once by the strategy; read-only for all downstream code.
	// Empty under static collection.
	NetworkResponses map[string]ResponseFacts
}

// RawImageFacts carries per-image facts in one normalized shape,
// populated differently per strategy. Tri-state fields are nil when the
// strategy cannot determine them.
type RawImageFacts struct {
	Source      string            // resolved currentSrc when rendered, src attribute otherwise
	Srcset      string            // live srcset when rendered, attribute otherwise
	Width       int               // natural width, 0 when unknown
	Height      int               // natural height, 0 when unknown
	Attrs       map[string]string // every HTML attribute on the element
	ParentTag   string            // immediate parent element name, lowercase
	ParentStyle string            // immediate parent style attribute

	Visible    *bool // computed-style visibility; nil under static collection
	InViewport *bool // bounding-rect viewport intersection; nil under static collection
	NextImage  *bool // authoritative framework-component determination; nil when undetermined
}

// ResponseFacts captures one intercepted network response
type ResponseFacts struct {
	Status        int         // HTTP status code
	Headers       http.Header // full response header set
	ContentType   string      // declared MIME type
	ContentLength int64       // declared content-length, 0 when absent
}

func boolPtr(v bool) *bool { return &v }
