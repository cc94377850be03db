package httpclient

import (
	"net"
	"net/http"
	"time"
)

// NewTransport creates a configured HTTP transport optimized for the
// per-image fetch fan-out: many short requests, frequently to the same
// host, reusing pooled connections
func NewTransport() *http.Transport {
	return &http.Transport{
		// Bound connection establishment separately from the request timeout
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		// Maximum number of idle connections across all hosts
		MaxIdleConns: 100,

		// Image fan-out hits one host repeatedly; keep a deeper per-host pool
		MaxIdleConnsPerHost: 16,

		// How long an idle connection stays in the pool
		IdleConnTimeout: 90 * time.Second,

		// Timeout for TLS handshake
		TLSHandshakeTimeout: 10 * time.Second,

		// Timeout for expecting response headers after request is sent
		ResponseHeaderTimeout: 10 * time.Second,

		// Enable HTTP/2 support
		ForceAttemptHTTP2: true,
	}
}
