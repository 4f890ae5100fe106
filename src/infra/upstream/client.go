package upstream

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tunegate/tunegate/src/music"
)

const (
	connectTimeout = 10 * time.Second
	requestTimeout = 15 * time.Second
	maxAttempts    = 3
)

// Request describes one upstream HTTP call. Built fresh per resolution
// step and never reused.
type Request struct {
	Provider music.Provider
	Method   string
	URL      string
	// Params is serialized as the query string on GET and as a
	// form-encoded body on POST. RawBody, when set, is sent verbatim
	// instead (some providers require a pre-serialized JSON body).
	Params  url.Values
	RawBody string
	// PlainHeaders swaps the provider signature for the reduced
	// anti-detection header set.
	PlainHeaders bool
	// Extra headers layered on top of the provider set.
	Headers map[string]string
}

// Response is the raw outcome of an upstream call. Err is the transport
// error of the last attempt; an HTTP error status is not a transport
// error and is passed through for the decoder to interpret.
type Response struct {
	Body       []byte
	StatusCode int
	Attempts   int
	Err        error
}

// Executor is what the protocol decoders call to run nested upstream
// requests; *Client is the production implementation.
type Executor interface {
	Execute(ctx context.Context, req *Request) *Response
}

// Client executes upstream calls with the fixed per-provider header sets,
// an optional egress proxy and a bounded retry policy. Safe for
// concurrent use.
type Client struct {
	http     *http.Client
	cookies  map[music.Provider]string
	observer func(provider string, attempts int, failed bool)
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes every upstream call through the given HTTP proxy.
func WithProxy(proxyURL string) Option {
	return func(c *Client) {
		u, err := url.Parse(proxyURL)
		if err != nil {
			slog.Error("Invalid upstream proxy, ignoring", "proxy", proxyURL, "error", err)
			return
		}
		c.http.Transport.(*http.Transport).Proxy = http.ProxyURL(u)
	}
}

// WithObserver installs a callback invoked after every executed call
// with the provider, the number of attempts spent and whether the call
// ultimately failed.
func WithObserver(fn func(provider string, attempts int, failed bool)) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

// WithCookie overrides the embedded Cookie header for one provider.
func WithCookie(p music.Provider, cookie string) Option {
	return func(c *Client) {
		if cookie != "" {
			c.cookies[p] = cookie
		}
	}
}

// NewClient builds the upstream HTTP client. TLS verification is
// intentionally disabled: several providers serve mirrors and CDN hosts
// with mismatched certificates. IPv4 is forced because the targets have
// unreliable IPv6 routes.
func NewClient(opts ...Option) *Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr)
		},
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		MaxIdleConnsPerHost: 8,
	}
	c := &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		cookies: make(map[music.Provider]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cookie returns the effective Cookie header for a provider (override or
// embedded default). The tencent stream decoder needs it to extract the
// account uin.
func (c *Client) Cookie(p music.Provider) string {
	if v, ok := c.cookies[p]; ok {
		return v
	}
	return providerHeaders[p]["Cookie"]
}

// Execute runs the request with up to three attempts. Only transport
// level failures (dial, TLS, timeout, DNS) trigger a retry; the upstreams
// tolerate immediate retry so no backoff is applied. After exhaustion the
// response carries the last transport error and the caller degrades the
// resolution instead of failing.
func (c *Client) Execute(ctx context.Context, req *Request) *Response {
	resp := &Response{}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp.Attempts = attempt

		// Request bodies are single-use readers, so each attempt gets
		// a freshly built request.
		httpReq, err := c.buildRequest(ctx, req)
		if err != nil {
			resp.Err = err
			break
		}
		res, err := c.http.Do(httpReq)
		if err != nil {
			resp.Err = err
			slog.Debug("Upstream attempt failed", "provider", req.Provider, "url", req.URL, "attempt", attempt, "error", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		body, readErr := io.ReadAll(res.Body)
		res.Body.Close()
		if readErr != nil {
			resp.Err = readErr
			continue
		}
		resp.Body = body
		resp.StatusCode = res.StatusCode
		resp.Err = nil
		break
	}
	if c.observer != nil {
		c.observer(string(req.Provider), resp.Attempts, resp.Err != nil)
	}
	return resp
}

func (c *Client) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	target := req.URL
	var body io.Reader

	switch {
	case req.Method == http.MethodGet && len(req.Params) > 0:
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Params.Encode()
	case req.RawBody != "":
		body = strings.NewReader(req.RawBody)
	case len(req.Params) > 0:
		body = strings.NewReader(req.Params.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}

	if req.PlainHeaders {
		for k, v := range plainHeaders {
			httpReq.Header.Set(k, v)
		}
	} else {
		for k, v := range providerHeaders[req.Provider] {
			if k == "Host" {
				httpReq.Host = v
				continue
			}
			httpReq.Header.Set(k, v)
		}
		if cookie, ok := c.cookies[req.Provider]; ok {
			httpReq.Header.Set("Cookie", cookie)
		}
		if req.Provider == music.Netease {
			httpReq.Header.Set("X-Real-IP", randomRealIP())
		}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}
