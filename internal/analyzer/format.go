package analyzer

import (
	"net/url"
	"strings"

	"github.com/olegrjumin/imgscope/internal/collector"
)

// knownFormats is the allow-list of recognized format names, keyed by
// content-type subtype, URL extension or decoder name
var knownFormats = map[string]string{
	"jpeg": "jpeg",
	"jpg":  "jpeg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
	"avif": "avif",
	"svg":  "svg",
}

// resolveFormat applies the resolution order: declared content-type
// subtype, then URL extension, then decoded metadata. Each step runs
// only when the previous yielded nothing usable; decoded metadata may
// override the earlier guess but never removes a resolved value.
func resolveFormat(contentType, sourceURL, decoded string) string {
	format := formatFromContentType(contentType)
	if format == "" {
		format = formatFromURL(sourceURL)
	}
	if decoded != "" {
		if f, ok := knownFormats[decoded]; ok {
			format = f
		}
	}
	if format == "" {
		return "unknown"
	}
	return format
}

// formatFromContentType maps a declared MIME type to a format name
func formatFromContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if !strings.HasPrefix(ct, "image/") {
		return ""
	}
	subtype := strings.TrimPrefix(ct, "image/")
	if strings.HasPrefix(subtype, "svg") { // image/svg+xml
		return "svg"
	}
	if f, ok := knownFormats[subtype]; ok {
		return f
	}
	return ""
}

// formatFromURL maps the URL path extension through the allow-list
func formatFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := u.Path
	idx := strings.LastIndex(path, ".")
	if idx == -1 || idx == len(path)-1 {
		return ""
	}
	if f, ok := knownFormats[strings.ToLower(path[idx+1:])]; ok {
		return f
	}
	return ""
}

// detectFrameworkImage applies the next/image heuristics to raw facts.
// A determination made in the live DOM by rendered collection is
// authoritative and short-circuits the heuristics.
func detectFrameworkImage(facts collector.RawImageFacts) bool {
	if facts.NextImage != nil {
		return *facts.NextImage
	}

	if _, ok := facts.Attrs["data-nimg"]; ok {
		return true
	}
	if strings.Contains(facts.Attrs["class"], "next-image") {
		return true
	}
	if strings.Contains(facts.Srcset, "/_next/image") {
		return true
	}

	// Legacy next/image wraps the element in an inline-block span
	if facts.ParentTag == "span" || facts.ParentTag == "div" {
		if styleDeclares(facts.ParentStyle, "box-sizing", "border-box") &&
			styleDeclares(facts.ParentStyle, "display", "inline-block") {
			return true
		}
	}

	return false
}

// styleDeclares reports whether an inline style declares prop:value,
// tolerating whitespace around the colon
func styleDeclares(style, prop, value string) bool {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.Contains(s, prop+":"+value)
}
