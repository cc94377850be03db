package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// RenderedOptions configures the headless-browser collection strategy
type RenderedOptions struct {
	ChromePath        string        // explicit binary path; auto-discovered when empty
	UserAgent         string        // user agent presented to the page
	ViewportWidth     int           // emulated viewport width
	ViewportHeight    int           // emulated viewport height
	NavigationTimeout time.Duration // bound on page navigation
	SettleDelay       time.Duration // fixed wait after load for lazy-loaded images
}

// RenderedCollector drives headless Chrome: it intercepts image
// responses while the page loads, then reads per-image facts out of the
// live DOM in a single evaluation round-trip.
type RenderedCollector struct {
	chromePath string
	opts       RenderedOptions
}

// NewRendered resolves the browser binary and returns a rendered
// collector. Returns an error when no Chrome installation is reachable,
// letting the caller fall back to static collection.
func NewRendered(opts RenderedOptions) (*RenderedCollector, error) {
	path := resolveChromePath(opts.ChromePath)
	if path == "" {
		return nil, fmt.Errorf("no Chrome or Chromium binary found")
	}
	return &RenderedCollector{chromePath: path, opts: opts}, nil
}

// Rendered reports whether this strategy drives a browser
func (r *RenderedCollector) Rendered() bool { return true }

// renderedImage mirrors the per-image object built by imageFactsJS
type renderedImage struct {
	Source      string            `json:"source"`
	Srcset      string            `json:"srcset"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Attrs       map[string]string `json:"attrs"`
	ParentTag   string            `json:"parentTag"`
	ParentStyle string            `json:"parentStyle"`
	Visible     bool              `json:"visible"`
	InViewport  bool              `json:"inViewport"`
	NextImage   bool              `json:"nextImage"`
}

// renderedPayload mirrors the top-level object built by imageFactsJS
type renderedPayload struct {
	IsNextSite bool            `json:"isNextSite"`
	Images     []renderedImage `json:"images"`
}

// imageFactsJS runs inside the page and serializes everything the
// normalizer needs about each <img>, plus the site-level Next.js signal.
// Framework-component detection here is authoritative: it sees the live
// DOM including wrapper elements Next.js injects at runtime.
const imageFactsJS = `JSON.stringify((function() {
	var hasNextMarkers = !!(document.getElementById('__next') || document.getElementById('__NEXT_DATA__'));
	if (!hasNextMarkers) {
		var refs = document.querySelectorAll('script[src], link[href]');
		for (var i = 0; i < refs.length; i++) {
			var u = refs[i].src || refs[i].href || '';
			if (u.indexOf('/_next/') !== -1) { hasNextMarkers = true; break; }
		}
	}

	var vw = window.innerWidth;
	var vh = window.innerHeight;

	var images = Array.prototype.map.call(document.querySelectorAll('img'), function(img) {
		var rect = img.getBoundingClientRect();
		var style = window.getComputedStyle(img);
		var attrs = {};
		for (var i = 0; i < img.attributes.length; i++) {
			attrs[img.attributes[i].name] = img.attributes[i].value;
		}
		var parent = img.parentElement;
		var parentTag = parent ? parent.tagName.toLowerCase() : '';
		var parentStyle = (parent && parent.getAttribute('style')) || '';
		var cls = img.getAttribute('class') || '';
		var srcset = img.getAttribute('srcset') || '';
		var nextImage = img.hasAttribute('data-nimg') ||
			cls.indexOf('next-image') !== -1 ||
			srcset.indexOf('/_next/image') !== -1 ||
			(parentTag === 'span' &&
				parentStyle.indexOf('box-sizing:border-box') !== -1 &&
				parentStyle.indexOf('display:inline-block') !== -1);

		return {
			source: img.currentSrc || img.src || '',
			srcset: srcset,
			width: img.naturalWidth || 0,
			height: img.naturalHeight || 0,
			attrs: attrs,
			parentTag: parentTag,
			parentStyle: parentStyle,
			visible: style.display !== 'none' && style.visibility !== 'hidden' && style.opacity !== '0',
			inViewport: rect.bottom > 0 && rect.right > 0 && rect.top < vh && rect.left < vw,
			nextImage: nextImage
		};
	});

	return { isNextSite: hasNextMarkers, images: images };
})())`

// Collect launches a browser session, navigates, and reads back the
// evidence. The session is scoped to this call and closed on every exit
// path. Any launch, navigation or readback failure is returned to the
// caller; there is no partial fallback.
func (r *RenderedCollector) Collect(ctx context.Context, pageURL string) (*RawPageEvidence, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(r.chromePath),
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.WindowSize(r.opts.ViewportWidth, r.opts.ViewportHeight),
		chromedp.UserAgent(r.opts.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// Navigation plus settle plus a readback allowance
	budget := r.opts.NavigationTimeout + r.opts.SettleDelay + 5*time.Second
	runCtx, runCancel := context.WithTimeout(browserCtx, budget)
	defer runCancel()

	// Pass-through interception: registered before navigation so every
	// image response on the way to first paint is observed. The first
	// response for a URL wins.
	responses := make(map[string]ResponseFacts)
	var mu sync.Mutex

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch ev := ev.(type) {
		case *network.EventResponseReceived:
			if !isImageResponse(ev) {
				return
			}
			headers := toHTTPHeader(ev.Response.Headers)
			facts := ResponseFacts{
				Status:        int(ev.Response.Status),
				Headers:       headers,
				ContentType:   ev.Response.MimeType,
				ContentLength: declaredLength(headers),
			}
			mu.Lock()
			if _, seen := responses[ev.Response.URL]; !seen {
				responses[ev.Response.URL] = facts
			}
			mu.Unlock()
		}
	})

	var payload string
	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.EmulateViewport(int64(r.opts.ViewportWidth), int64(r.opts.ViewportHeight)),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(r.opts.SettleDelay),
		chromedp.Evaluate(imageFactsJS, &payload),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", pageURL, err)
	}

	var parsed renderedPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("reading DOM facts for %s: %w", pageURL, err)
	}

	evidence := &RawPageEvidence{
		IsLikelyFrameworkSite: parsed.IsNextSite,
		Images:                make([]RawImageFacts, 0, len(parsed.Images)),
	}
	for _, img := range parsed.Images {
		evidence.Images = append(evidence.Images, RawImageFacts{
			Source:      img.Source,
			Srcset:      img.Srcset,
			Width:       img.Width,
			Height:      img.Height,
			Attrs:       img.Attrs,
			ParentTag:   img.ParentTag,
			ParentStyle: img.ParentStyle,
			Visible:     boolPtr(img.Visible),
			InViewport:  boolPtr(img.InViewport),
			NextImage:   boolPtr(img.NextImage),
		})
	}

	mu.Lock()
	evidence.NetworkResponses = make(map[string]ResponseFacts, len(responses))
	for url, facts := range responses {
		evidence.NetworkResponses[url] = facts
	}
	mu.Unlock()

	return evidence, nil
}

// isImageResponse filters interception to image traffic, by resource
// type or declared MIME type
func isImageResponse(ev *network.EventResponseReceived) bool {
	if ev.Type == network.ResourceTypeImage {
		return true
	}
	return strings.HasPrefix(strings.ToLower(ev.Response.MimeType), "image/")
}

// toHTTPHeader converts CDP headers to http.Header. CDP folds repeated
// headers into newline-joined values.
func toHTTPHeader(h network.Headers) http.Header {
	out := http.Header{}
	for key, value := range h {
		s, ok := value.(string)
		if !ok {
			s = fmt.Sprint(value)
		}
		for _, part := range strings.Split(s, "\n") {
			out.Add(key, part)
		}
	}
	return out
}

// declaredLength parses the declared content-length, 0 when absent
func declaredLength(h http.Header) int64 {
	v := h.Get("Content-Length")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
