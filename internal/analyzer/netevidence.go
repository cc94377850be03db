package analyzer

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxAgePattern extracts the max-age value from a cache-control header
var maxAgePattern = regexp.MustCompile(`max-age=(\d+)`)

// fastlyPopPattern matches Fastly served-by POP identifiers such as
// "cache-ams21058-AMS" (airport-style regional codes)
var fastlyPopPattern = regexp.MustCompile(`(?i)cache-[a-z0-9]*-?[a-z]{3}\d*`)

// ExtractCacheEvidence infers cache hit/provider/TTL facts from a
// response header set. The provider rules run in a fixed order and the
// first match wins; the hit signal may be refined by a later rule only
// while no provider-specific hit signal has been seen. The order is
// load-bearing: reordering changes attribution on ambiguous header sets.
func ExtractCacheEvidence(headers http.Header) *CacheEvidence {
	cacheControl := headers.Get("Cache-Control")
	expires := headers.Get("Expires")
	xCache := headers.Get("X-Cache")
	xCacheLower := strings.ToLower(xCache)

	sawMarker := headers.Get("X-Vercel-Cache") != "" ||
		headers.Get("CF-Cache-Status") != "" ||
		xCache != "" ||
		headers.Get("X-Cache-Key") != ""

	provider := ""
	hit := false
	hitKnown := false

	if v := headers.Get("X-Vercel-Cache"); v != "" {
		provider = "Vercel"
		hit = strings.EqualFold(v, "HIT")
		hitKnown = true
	} else if v := headers.Get("CF-Cache-Status"); v != "" {
		provider = "Cloudflare"
		hit = strings.EqualFold(v, "HIT")
		hitKnown = true
	} else if xCache != "" && strings.Contains(xCacheLower, "cloudfront") {
		provider = "Amazon CloudFront"
		hit = strings.Contains(xCacheLower, "hit")
		hitKnown = true
	} else if xCache != "" && fastlyPopPattern.MatchString(headers.Get("X-Served-By")) {
		provider = "Fastly"
		hit = strings.Contains(xCacheLower, "hit")
		hitKnown = true
	} else if strings.Contains(xCacheLower, "tcp_") {
		provider = "Akamai"
		hit = strings.Contains(xCacheLower, "hit")
		hitKnown = true
	} else if headers.Get("X-Cache-Key") != "" {
		// Debug cache-key header identifies the provider but carries
		// no hit/miss signal
		provider = "Akamai"
	}

	// Freshness inference: a future Expires date counts as a hit when
	// no provider rule produced a hit signal
	if !hitKnown && expires != "" {
		if t, err := http.ParseTime(expires); err == nil && t.After(time.Now()) {
			hit = true
			hitKnown = true
		}
	}

	var ttl *int64
	if m := maxAgePattern.FindStringSubmatch(cacheControl); len(m) == 2 {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			ttl = &n
		}
	}

	ccLower := strings.ToLower(cacheControl)
	if provider == "" && (strings.Contains(ccLower, "public") || strings.Contains(ccLower, "private")) {
		provider = "Generic"
	}

	if !sawMarker && cacheControl == "" && expires == "" {
		return nil
	}

	return &CacheEvidence{
		CacheHit:        hit,
		CacheProvider:   provider,
		TTLSeconds:      ttl,
		CacheControlRaw: cacheControl,
	}
}

// serverMarkers is the ordered provider marker list; the first header
// present assigns the provider
var serverMarkers = []struct {
	header   string
	provider string
}{
	{"X-Amz-Storage-Class", "Amazon S3"},
	{"X-Amz-Request-Id", "Amazon S3"},
	{"CF-Ray", "Cloudflare"},
	{"X-Amz-Cf-Pop", "Amazon CloudFront"},
	{"X-Amz-Cf-Id", "Amazon CloudFront"},
	{"X-Vercel-Id", "Vercel"},
	{"X-Nf-Request-Id", "Netlify"},
	{"X-Nextjs-Cache", "Next.js"},
}

// serverNames maps well-known server header substrings to providers,
// checked before the marker list
var serverNames = []struct {
	needle   string
	provider string
}{
	{"cloudflare", "Cloudflare"},
	{"amazons3", "Amazon S3"},
	{"vercel", "Vercel"},
	{"netlify", "Netlify"},
	{"github.com", "GitHub Pages"},
}

// ExtractServerEvidence infers the serving provider and approximate
// edge location from a response header set. Best-effort: absence of
// evidence is represented as nil, never guessed.
func ExtractServerEvidence(headers http.Header) *ServerEvidence {
	serverHeader := headers.Get("Server")

	provider := ""
	serverLower := strings.ToLower(serverHeader)
	for _, sn := range serverNames {
		if serverLower != "" && strings.Contains(serverLower, sn.needle) {
			provider = sn.provider
			break
		}
	}
	if provider == "" {
		for _, m := range serverMarkers {
			if headers.Get(m.header) != "" {
				provider = m.provider
				break
			}
		}
	}
	if provider == "" {
		if v := headers.Get("X-Served-By"); strings.Contains(strings.ToLower(v), "cache") {
			provider = "Fastly"
		}
	}

	location := approxLocation(headers)

	if serverHeader == "" && provider == "" && location == "" {
		return nil
	}

	return &ServerEvidence{
		ServerHeader:   serverHeader,
		Provider:       provider,
		ApproxLocation: location,
	}
}

// approxLocation pulls the regional code token out of edge-routing
// headers: the trailing token of a cf-ray or served-by identifier, or
// the leading letters of a CloudFront POP
func approxLocation(headers http.Header) string {
	if ray := headers.Get("CF-Ray"); ray != "" {
		if idx := strings.LastIndex(ray, "-"); idx != -1 && idx+1 < len(ray) {
			return strings.ToUpper(ray[idx+1:])
		}
	}

	if pop := headers.Get("X-Amz-Cf-Pop"); pop != "" {
		letters := pop
		for i, r := range pop {
			if r >= '0' && r <= '9' {
				letters = pop[:i]
				break
			}
		}
		if len(letters) >= 3 {
			return strings.ToUpper(letters[:3])
		}
	}

	if served := headers.Get("X-Served-By"); served != "" {
		if idx := strings.LastIndex(served, "-"); idx != -1 && idx+1 < len(served) {
			return strings.ToUpper(served[idx+1:])
		}
	}

	return ""
}
