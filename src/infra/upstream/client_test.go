package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/tunegate/tunegate/src/music"
)

// fakeTransport fails the first n round trips with a transport error,
// then answers 200.
type fakeTransport struct {
	failures int
	calls    int
	requests []*http.Request
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.calls <= f.failures {
		return nil, errors.New("dial tcp4: connection refused")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("ok")),
		Header:     http.Header{},
	}, nil
}

func newTestClient(t *fakeTransport, opts ...Option) *Client {
	c := NewClient(opts...)
	c.http.Transport = t
	return c
}

func TestExecuteRetriesTransportErrors(t *testing.T) {
	transport := &fakeTransport{failures: 2}
	c := newTestClient(transport)

	resp := c.Execute(context.Background(), &Request{
		Provider: music.Kugou,
		Method:   http.MethodGet,
		URL:      "http://mobilecdn.kugou.com/api/v3/search/song",
	})

	if resp.Err != nil {
		t.Fatalf("expected recovery on third attempt, got %v", resp.Err)
	}
	if resp.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", resp.Attempts)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	transport := &fakeTransport{failures: 100}
	c := newTestClient(transport)

	resp := c.Execute(context.Background(), &Request{
		Provider: music.Kugou,
		Method:   http.MethodGet,
		URL:      "http://mobilecdn.kugou.com/api/v3/search/song",
	})

	if resp.Err == nil {
		t.Fatal("expected the last transport error to surface")
	}
	if resp.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", resp.Attempts)
	}
	if transport.calls != 3 {
		t.Errorf("round trips = %d, want 3", transport.calls)
	}
}

func TestExecuteDoesNotRetryHTTPErrorStatus(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(transport)

	// The fake answers 200; swap in a 403 answer.
	c.http.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		transport.calls++
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(strings.NewReader("blocked")),
			Header:     http.Header{},
		}, nil
	})

	resp := c.Execute(context.Background(), &Request{
		Provider: music.Tencent,
		Method:   http.MethodGet,
		URL:      "https://c.y.qq.com/soso/fcgi-bin/client_search_cp",
	})

	if resp.Err != nil {
		t.Fatalf("an HTTP error status is not a transport error: %v", resp.Err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if transport.calls != 1 {
		t.Errorf("round trips = %d, want 1", transport.calls)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestExecuteNeteaseHeaders(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(transport)

	c.Execute(context.Background(), &Request{
		Provider: music.Netease,
		Method:   http.MethodPost,
		URL:      "http://music.163.com/weapi/cloudsearch/pc",
		Params:   url.Values{"params": {"x"}},
	})

	req := transport.requests[0]
	if req.Header.Get("X-Real-IP") == "" {
		t.Error("netease calls must carry a spoofed client address")
	}
	if !strings.Contains(req.Header.Get("Cookie"), "os=iPhone OS") {
		t.Errorf("embedded cookie missing: %q", req.Header.Get("Cookie"))
	}
	if req.Header.Get("Referer") != "https://music.163.com/" {
		t.Errorf("referer = %q", req.Header.Get("Referer"))
	}
}

func TestExecutePlainHeaders(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(transport)

	c.Execute(context.Background(), &Request{
		Provider:     music.Kuwo,
		Method:       http.MethodGet,
		URL:          "http://antiserver.kuwo.cn/anti.s",
		PlainHeaders: true,
	})

	req := transport.requests[0]
	if req.Header.Get("Cookie") != "" {
		t.Error("plain requests must not carry the platform cookie")
	}
	if req.Header.Get("Accept") != "application/json" {
		t.Errorf("accept = %q", req.Header.Get("Accept"))
	}
}

func TestExecuteKuwoHostHeader(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(transport)

	c.Execute(context.Background(), &Request{
		Provider: music.Kuwo,
		Method:   http.MethodGet,
		URL:      "http://www.kuwo.cn/search/searchMusicBykeyWord",
	})

	if got := transport.requests[0].Host; got != "www.kuwo.cn" {
		t.Errorf("host = %q, must be set on the request, not the header map", got)
	}
}

func TestCookieOverride(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(transport, WithCookie(music.Tencent, "uin=123456; skey=abc"))

	if got := c.Cookie(music.Tencent); got != "uin=123456; skey=abc" {
		t.Errorf("Cookie() = %q", got)
	}
	// Other providers keep their embedded default.
	if got := c.Cookie(music.Netease); !strings.Contains(got, "os=iPhone OS") {
		t.Errorf("netease default cookie lost: %q", got)
	}

	c.Execute(context.Background(), &Request{
		Provider: music.Tencent,
		Method:   http.MethodGet,
		URL:      "https://c.y.qq.com/v8/fcg-bin/fcg_play_single_song.fcg",
	})
	if got := transport.requests[0].Header.Get("Cookie"); got != "uin=123456; skey=abc" {
		t.Errorf("override not sent: %q", got)
	}
}

func TestGETParamsBecomeQuery(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(transport)

	c.Execute(context.Background(), &Request{
		Provider: music.Kugou,
		Method:   http.MethodGet,
		URL:      "http://mobilecdn.kugou.com/api/v3/search/song",
		Params:   url.Values{"keyword": {"hello world"}, "page": {"1"}},
	})

	req := transport.requests[0]
	if got := req.URL.Query().Get("keyword"); got != "hello world" {
		t.Errorf("keyword = %q", got)
	}
	if req.Body != nil {
		t.Error("GET must not carry a body")
	}
}

func TestObserverCallback(t *testing.T) {
	var gotProvider string
	var gotAttempts int
	var gotFailed bool
	transport := &fakeTransport{failures: 100}
	c := newTestClient(transport, WithObserver(func(provider string, attempts int, failed bool) {
		gotProvider, gotAttempts, gotFailed = provider, attempts, failed
	}))

	c.Execute(context.Background(), &Request{
		Provider: music.Kuwo,
		Method:   http.MethodGet,
		URL:      "http://antiserver.kuwo.cn/anti.s",
	})

	if gotProvider != "kuwo" || gotAttempts != 3 || !gotFailed {
		t.Errorf("observer saw (%q, %d, %v)", gotProvider, gotAttempts, gotFailed)
	}
}
