package analyzer

import "errors"

// Fatal, whole-run errors. Per-image fetch and decode failures never
// surface here: they exclude the single image and the run continues.
var (
	// ErrInvalidURL means the target was not a parseable absolute
	// http(s) URL. Reported before any network activity.
	ErrInvalidURL = errors.New("invalid target URL")

	// ErrFetch means the static page fetch failed: transport error,
	// timeout or non-2xx status.
	ErrFetch = errors.New("page fetch failed")

	// ErrRender means the rendered collection could not launch,
	// navigate or read back DOM facts within its timeout. The browser
	// session is closed before this is returned.
	ErrRender = errors.New("page render failed")
)
