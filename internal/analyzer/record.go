// Package analyzer implements the image-evidence pipeline: it collects
// raw per-image signals from one page, normalizes them into canonical
// records, scores each record, flags the likely LCP image and reduces
// everything into page-level aggregates.
package analyzer

// Dimensions holds pixel dimensions, decoded or DOM-reported
type Dimensions struct {
	Width  int `json:"width"`  // pixel width
	Height int `json:"height"` // pixel height
}

// SizeRange is the smallest and largest declared width across variants
type SizeRange struct {
	Min int `json:"min"` // smallest declared width
	Max int `json:"max"` // largest declared width
}

// VariantSummary summarizes responsive-variant coverage for one image
type VariantSummary struct {
	TransformationCount int        `json:"transformation_count"`  // total descriptor entries
	HasAppropriateRange bool       `json:"has_appropriate_range"` // widest/narrowest >= 2, or max density >= 2
	HasMobileSize       bool       `json:"has_mobile_size"`       // smallest width <= 640
	HasDesktopSize      bool       `json:"has_desktop_size"`      // largest width >= 1024
	SizeRange           *SizeRange `json:"size_range"`            // nil for density-only srcsets
}

// ResponsiveVariants pairs the raw srcset string with its derived summary
type ResponsiveVariants struct {
	Raw     string         `json:"raw"` // srcset attribute as collected
	Summary VariantSummary `json:"summary"`
}

// CacheEvidence holds cache facts inferred from response headers
type CacheEvidence struct {
	CacheHit        bool   `json:"cache_hit"`                   // a hit signal was found
	CacheProvider   string `json:"cache_provider,omitempty"`    // e.g. "Vercel", "Fastly", "Generic"
	TTLSeconds      *int64 `json:"ttl_seconds,omitempty"`       // from cache-control max-age
	CacheControlRaw string `json:"cache_control_raw,omitempty"` // raw cache-control value
}

// ServerEvidence holds origin/CDN facts inferred from response headers
type ServerEvidence struct {
	ServerHeader   string `json:"server_header,omitempty"`   // raw server header value
	Provider       string `json:"provider,omitempty"`        // first marker match wins
	ApproxLocation string `json:"approx_location,omitempty"` // regional code token from ray/POP ids
}

// ImageRecord is the canonical per-image record: created once per
// distinct discovered image, immutable after normalization except for
// the single LCP-flag mutation.
type ImageRecord struct {
	SourceURL  string      `json:"source_url"`           // absolute URL, resolved during normalization
	ByteSize   int64       `json:"byte_size"`            // transfer size in bytes
	Format     string      `json:"format"`               // jpeg, png, gif, webp, avif, svg or unknown
	Dimensions *Dimensions `json:"dimensions,omitempty"` // pixel dimensions when known

	Alt     string `json:"alt,omitempty"`     // alt attribute as collected
	Loading string `json:"loading,omitempty"` // loading attribute (lazy/eager)

	IsUsingFrameworkImageComponent bool `json:"is_using_framework_image_component"` // next/image detection
	IsVisible                      bool `json:"is_visible"`                         // computed visibility; true when unknown
	IsInViewport                   bool `json:"is_in_viewport"`                     // initial-viewport intersection; true when unknown
	IsLCP                          bool `json:"is_lcp"`                             // flagged once per analysis

	ResponsiveVariants *ResponsiveVariants `json:"responsive_variants,omitempty"` // absent when no srcset
	CacheEvidence      *CacheEvidence      `json:"cache_evidence,omitempty"`      // absent when headers carried no cache signal
	ServerEvidence     *ServerEvidence     `json:"server_evidence,omitempty"`     // absent when headers carried no server signal

	PlaceholderHash string `json:"placeholder_hash,omitempty"` // BlurHash, set when a pixel decode ran

	OptimizationScore int      `json:"optimization_score"` // 0-100, higher is better
	Recommendations   []string `json:"recommendations"`    // ordered, most critical first
}

// AnalysisResult is the complete outcome of one analysis run
type AnalysisResult struct {
	ID  string `json:"id"`  // run identifier
	URL string `json:"url"` // normalized target page URL

	Images []ImageRecord `json:"images"` // surviving records in discovery order

	TotalBytes              int64   `json:"total_bytes"`               // sum of record byte sizes
	PotentialSavingsBytes   int64   `json:"potential_savings_bytes"`   // estimated from sub-80 scores
	PotentialSavingsPercent float64 `json:"potential_savings_percent"` // savings relative to total bytes
	TotalTransformations    int     `json:"total_transformations"`     // sum of variant counts
	CachedImagesPercent     float64 `json:"cached_images_percent"`     // share of records with a cache hit

	IsLikelyFrameworkSite  bool `json:"is_likely_framework_site"` // page-level Next.js signal
	UsedRenderedCollection bool `json:"used_rendered_collection"` // which strategy ran

	AnalyzedAt string `json:"analyzed_at"` // RFC3339, start of the run
	DurationMs int64  `json:"duration_ms"` // wall time of the run
}
