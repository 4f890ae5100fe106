package sources

import (
	"context"
	"testing"

	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

func TestDispatchUnknownProvider(t *testing.T) {
	exec := &fakeExecutor{}
	bogus := music.Provider("spotify")

	if _, err := Search(context.Background(), exec, bogus, Params{Keyword: "x", Page: 1, Limit: 10}); err == nil {
		t.Error("search must reject an unregistered provider")
	}
	if _, err := ResolveStream(context.Background(), exec, bogus, "1", 320); err == nil {
		t.Error("stream resolution must reject an unregistered provider")
	}
	if len(exec.requests) != 0 {
		t.Errorf("no upstream call may happen for an unknown provider, got %d", len(exec.requests))
	}
}

func TestDispatchTablesCoverAllProviders(t *testing.T) {
	for _, p := range music.Providers {
		if _, ok := searchBuilders[p]; !ok {
			t.Errorf("provider %s missing from search table", p)
		}
		if _, ok := albumBuilders[p]; !ok {
			t.Errorf("provider %s missing from album table", p)
		}
		if _, ok := streamResolvers[p]; !ok {
			t.Errorf("provider %s missing from stream table", p)
		}
		if _, ok := lyricsResolvers[p]; !ok {
			t.Errorf("provider %s missing from lyrics table", p)
		}
		if _, ok := artworkResolvers[p]; !ok {
			t.Errorf("provider %s missing from artwork table", p)
		}
	}
}

func TestSearchDegradesOnUpstreamFailure(t *testing.T) {
	exec := &fakeExecutor{handler: func(_ *upstream.Request) *upstream.Response { return failedResponse() }}

	tracks, err := Search(context.Background(), exec, music.Tencent, Params{Keyword: "x", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("transport failure must not surface as error: %v", err)
	}
	if tracks == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(tracks) != 0 {
		t.Errorf("expected no tracks, got %d", len(tracks))
	}
}
