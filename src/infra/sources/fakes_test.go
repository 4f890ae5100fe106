package sources

import (
	"context"
	"errors"
	"strings"

	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

// fakeExecutor is a canned upstream executor. A handler function takes
// precedence; otherwise responses are matched by URL substring.
type fakeExecutor struct {
	handler   func(req *upstream.Request) *upstream.Response
	responses map[string]*upstream.Response
	requests  []*upstream.Request
	cookie    string
}

func (f *fakeExecutor) Execute(_ context.Context, req *upstream.Request) *upstream.Response {
	f.requests = append(f.requests, req)
	if f.handler != nil {
		return f.handler(req)
	}
	for fragment, resp := range f.responses {
		if strings.Contains(req.URL, fragment) {
			return resp
		}
	}
	return &upstream.Response{Err: errors.New("no canned response for " + req.URL)}
}

func (f *fakeExecutor) Cookie(music.Provider) string {
	return f.cookie
}

func okResponse(body string) *upstream.Response {
	return &upstream.Response{Body: []byte(body), StatusCode: 200, Attempts: 1}
}

func failedResponse() *upstream.Response {
	return &upstream.Response{Attempts: 3, Err: errors.New("connection refused")}
}
