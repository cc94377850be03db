package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// Client wraps http.Client and provides methods for making traced requests
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// TimingInfo holds performance timing information for a request
type TimingInfo struct {
	DNSStart     time.Time
	DNSDone      time.Time
	ConnectStart time.Time
	ConnectDone  time.Time
	TLSStart     time.Time
	TLSDone      time.Time
	GotFirstByte time.Time
	RequestStart time.Time
	RequestDone  time.Time
}

// TTFBMs returns the time to first byte in milliseconds
func (t *TimingInfo) TTFBMs() int64 {
	if t.GotFirstByte.IsZero() {
		return 0
	}
	return t.GotFirstByte.Sub(t.RequestStart).Milliseconds()
}

// TotalMs returns the total request duration in milliseconds
func (t *TimingInfo) TotalMs() int64 {
	if t.RequestDone.IsZero() {
		return 0
	}
	return t.RequestDone.Sub(t.RequestStart).Milliseconds()
}

// Response holds the HTTP response body along with timing information
type Response struct {
	StatusCode int
	Proto      string // e.g., "HTTP/2.0"
	Header     http.Header
	Body       []byte
	FinalURL   string // URL after redirects were followed
	TLS        *tls.ConnectionState
	Timings    *TimingInfo
}

// ContentType returns the declared Content-Type header, if any
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// ContentLength returns the declared Content-Length, or the actual body
// length when the header is missing or malformed
func (r *Response) ContentLength() int64 {
	if v := r.Header.Get("Content-Length"); v != "" {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n >= 0 {
			return n
		}
	}
	return int64(len(r.Body))
}

// New creates a new HTTP client with the configured transport.
// Redirects are followed so the final image or page bytes are returned.
func New(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: NewTransport(),
		},
		userAgent: userAgent,
	}
}

// Get performs a traced GET request and reads the body up to maxBytes.
// A maxBytes of zero or less disables the cap. Bodies that exceed the
// cap fail the request rather than returning truncated bytes.
func (c *Client) Get(ctx context.Context, url string, maxBytes int64) (*Response, error) {
	// Create timing info to capture performance metrics
	timings := &TimingInfo{
		RequestStart: time.Now(),
	}

	// Create HTTP trace to capture timing events
	trace := &httptrace.ClientTrace{
		DNSStart: func(_ httptrace.DNSStartInfo) {
			timings.DNSStart = time.Now()
		},
		DNSDone: func(_ httptrace.DNSDoneInfo) {
			timings.DNSDone = time.Now()
		},
		ConnectStart: func(_, _ string) {
			timings.ConnectStart = time.Now()
		},
		ConnectDone: func(_, _ string, _ error) {
			timings.ConnectDone = time.Now()
		},
		TLSHandshakeStart: func() {
			timings.TLSStart = time.Now()
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, _ error) {
			timings.TLSDone = time.Now()
		},
		GotFirstResponseByte: func() {
			timings.GotFirstByte = time.Now()
		},
	}

	req, err := http.NewRequestWithContext(
		httptrace.WithClientTrace(ctx, trace),
		http.MethodGet,
		url,
		nil,
	)
	if err != nil {
		return nil, err
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body []byte
	if maxBytes > 0 {
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
		if err == nil && int64(len(body)) > maxBytes {
			err = fmt.Errorf("response body exceeds %d byte cap", maxBytes)
		}
	} else {
		body, err = io.ReadAll(resp.Body)
	}
	if err != nil {
		return nil, err
	}

	// Record when request completed
	timings.RequestDone = time.Now()

	response := &Response{
		StatusCode: resp.StatusCode,
		Proto:      resp.Proto,
		Header:     resp.Header,
		Body:       body,
		FinalURL:   resp.Request.URL.String(),
		TLS:        resp.TLS,
		Timings:    timings,
	}

	return response, nil
}
