package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/olegrjumin/imgscope/internal/collector"
	"github.com/olegrjumin/imgscope/internal/httpclient"
	"github.com/olegrjumin/imgscope/internal/imaging"
)

// normalizeAll turns raw per-image facts into canonical records.
// Sources are resolved and deduplicated up front so each distinct
// absolute URL is fetched at most once; the per-image work then fans
// out concurrently, bounded by MaxConcurrentFetches. Results land in
// index-stable slots: record order follows discovery order, which the
// LCP tie-break depends on. Dropped images leave nil slots.
func (a *Analyzer) normalizeAll(ctx context.Context, pageURL *url.URL, evidence *collector.RawPageEvidence) []ImageRecord {
	type task struct {
		facts  collector.RawImageFacts
		absURL string
	}

	var tasks []task
	seen := make(map[string]bool, len(evidence.Images))
	for _, facts := range evidence.Images {
		absURL, ok := resolveImageURL(pageURL, facts.Source)
		if !ok || seen[absURL] {
			continue
		}
		seen[absURL] = true
		tasks = append(tasks, task{facts: facts, absURL: absURL})
	}

	slots := make([]*ImageRecord, len(tasks))

	var g errgroup.Group
	g.SetLimit(a.opts.MaxConcurrentFetches)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			slots[i] = a.normalizeOne(ctx, evidence, t.facts, t.absURL)
			return nil // per-image failures never abort the run
		})
	}
	_ = g.Wait()

	records := make([]ImageRecord, 0, len(slots))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// normalizeOne builds the canonical record for a single image. Returns
// nil when the image must be excluded: unfetchable bytes are the only
// reason; every other gap degrades to absent fields.
func (a *Analyzer) normalizeOne(ctx context.Context, evidence *collector.RawPageEvidence, facts collector.RawImageFacts, absURL string) *ImageRecord {
	rec := &ImageRecord{
		SourceURL:    absURL,
		Alt:          facts.Attrs["alt"],
		Loading:      facts.Attrs["loading"],
		IsVisible:    boolOrTrue(facts.Visible),
		IsInViewport: boolOrTrue(facts.InViewport),
	}

	// Intercepted response evidence for this exact URL wins; a direct
	// fetch fills the gaps. The evidence map is never mutated here.
	var headers http.Header
	var body []byte
	contentType := ""

	if resp, ok := evidence.NetworkResponses[absURL]; ok {
		headers = resp.Headers
		contentType = resp.ContentType
		rec.ByteSize = resp.ContentLength
	}

	if rec.ByteSize == 0 {
		resp, err := a.fetchImage(ctx, absURL)
		if err != nil {
			a.logger.Debug("image excluded", "url", absURL, "error", err)
			return nil
		}
		body = resp.Body
		rec.ByteSize = int64(len(body))
		if headers == nil {
			headers = resp.Header
			contentType = resp.ContentType()
		}
	}

	if facts.Width > 0 && facts.Height > 0 {
		rec.Dimensions = &Dimensions{Width: facts.Width, Height: facts.Height}
	}

	// Decode fetched bytes when the strategy gave no dimensions.
	// SVG is skipped: it has no fixed pixel size.
	decodedFormat := ""
	if rec.Dimensions == nil && body != nil && resolveFormat(contentType, absURL, "") != "svg" {
		if meta, err := imaging.Decode(body); err == nil {
			rec.Dimensions = &Dimensions{Width: meta.Width, Height: meta.Height}
			decodedFormat = meta.Format
			rec.PlaceholderHash = meta.Placeholder
		} else {
			a.logger.Debug("decode failed", "url", absURL, "error", err)
		}
	}
	if rec.Dimensions == nil {
		if w, h := attrDimensions(facts.Attrs); w > 0 && h > 0 {
			rec.Dimensions = &Dimensions{Width: w, Height: h}
		}
	}

	rec.Format = resolveFormat(contentType, absURL, decodedFormat)
	rec.IsUsingFrameworkImageComponent = detectFrameworkImage(facts)

	if facts.Srcset != "" {
		rec.ResponsiveVariants = &ResponsiveVariants{
			Raw:     facts.Srcset,
			Summary: SummarizeVariants(ParseSrcset(facts.Srcset)),
		}
	}

	if headers != nil {
		rec.CacheEvidence = ExtractCacheEvidence(headers)
		rec.ServerEvidence = ExtractServerEvidence(headers)
	}

	return rec
}

// fetchImage performs the bounded direct fetch for one image
func (a *Analyzer) fetchImage(ctx context.Context, imageURL string) (*httpclient.Response, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.opts.ImageFetchTimeout)
	defer cancel()

	resp, err := a.client.Get(fetchCtx, imageURL, a.opts.MaxImageBytes)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}

// resolveImageURL resolves an image source against the page URL.
// Data URIs, base64 payloads and empty sources contribute no record.
func resolveImageURL(pageURL *url.URL, source string) (string, bool) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" || strings.HasPrefix(trimmed, "data:") || strings.Contains(trimmed, ";base64") {
		return "", false
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	resolved := pageURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return resolved.String(), true
}

// attrDimensions reads declared width/height attributes, the last
// fallback when neither the DOM nor a decode produced dimensions
func attrDimensions(attrs map[string]string) (int, int) {
	w, errW := strconv.Atoi(strings.TrimSpace(attrs["width"]))
	h, errH := strconv.Atoi(strings.TrimSpace(attrs["height"]))
	if errW != nil || errH != nil {
		return 0, 0
	}
	return w, h
}

func boolOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
