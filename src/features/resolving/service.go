package resolving

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tunegate/tunegate/src/infra/sources"
	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

// Recorder receives one observation per finished resolution. The
// metrics feature provides the production implementation.
type Recorder interface {
	ObserveResolution(platform, operation, outcome string, elapsed time.Duration)
}

// Service resolves queries against the supported platforms and renders
// the canonical JSON payloads. Unavailable upstream data degrades to
// sentinel payloads; an error return always means the request itself
// was unservable (unknown platform or operation, broken local crypto).
type Service struct {
	exec     upstream.Executor
	recorder Recorder
}

// NewService creates a new resolving service.
func NewService(exec upstream.Executor, recorder Recorder) *Service {
	return &Service{
		exec:     exec,
		recorder: recorder,
	}
}

// Resolve runs one operation against one platform and returns the
// canonical JSON payload.
func (s *Service) Resolve(ctx context.Context, provider music.Provider, op Operation, params sources.Params) ([]byte, error) {
	start := time.Now()
	payload, empty, err := s.resolve(ctx, provider, op, params)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case empty:
		outcome = "empty"
	}
	if s.recorder != nil {
		s.recorder.ObserveResolution(string(provider), string(op), outcome, time.Since(start))
	}
	slog.Debug("Resolution finished", "provider", provider, "operation", op, "outcome", outcome, "elapsed", time.Since(start).String())
	return payload, err
}

func (s *Service) resolve(ctx context.Context, provider music.Provider, op Operation, params sources.Params) ([]byte, bool, error) {
	switch op {
	case OpSearch:
		tracks, err := sources.Search(ctx, s.exec, provider, params)
		if err != nil {
			return nil, false, err
		}
		payload, err := json.Marshal(tracks)
		return payload, len(tracks) == 0, err

	case OpAlbum:
		tracks, err := sources.AlbumTracks(ctx, s.exec, provider, params)
		if err != nil {
			return nil, false, err
		}
		payload, err := json.Marshal(tracks)
		return payload, len(tracks) == 0, err

	case OpStream:
		res, err := sources.ResolveStream(ctx, s.exec, provider, params.ID, params.Bitrate)
		if err != nil {
			return nil, false, err
		}
		payload, err := json.Marshal(res)
		return payload, res.URL == "", err

	case OpLyrics:
		res, err := sources.ResolveLyrics(ctx, s.exec, provider, params.ID)
		if err != nil {
			return nil, false, err
		}
		payload, err := json.Marshal(res)
		return payload, res.Lyric == "", err

	case OpArtwork:
		res, err := sources.ResolveArtwork(ctx, s.exec, provider, params.ID, params.Size)
		if err != nil {
			return nil, false, err
		}
		payload, err := json.Marshal(res)
		return payload, res.URL == "", err
	}
	return nil, false, fmt.Errorf("unknown operation %q", op)
}
