// Package sources implements the wire protocols of the four supported
// music platforms: request building, request signing, response decoding
// and normalization into the canonical track record. Everything here is
// stateless; one resolution call never shares mutable state with another.
package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

// Params carries the caller-supplied inputs a descriptor template is
// filled from. Pagination is translated into each provider's own offset
// convention by the builders.
type Params struct {
	Keyword string
	ID      string
	Page    int
	Limit   int
	// Bitrate is the requested quality ceiling in kbps; stream decoders
	// never select a tier above it.
	Bitrate int
	// Size is the requested artwork edge length in pixels.
	Size int
}

// ExtractMode selects how a list response is pulled out of a raw body.
type ExtractMode int

const (
	// ExtractPath resolves Descriptor.Extract as a dot-separated path
	// into the decoded JSON document.
	ExtractPath ExtractMode = iota
	// ExtractRootList treats the decoded JSON root itself as the list.
	ExtractRootList
	// ExtractAlbumHTML parses the body as an album HTML page instead of
	// JSON (kuwo has no JSON album listing).
	ExtractAlbumHTML
)

// Descriptor describes one upstream call of a resolution: the request,
// an optional signing step, and how to turn the response into canonical
// tracks. Built fresh per call, never reused.
type Descriptor struct {
	Request upstream.Request
	// Plain is the JSON-serializable plaintext body consumed by Encode;
	// Encode replaces Request.Params with its signed form and rewrites
	// the URL to the signed endpoint.
	Plain  any
	Encode func(d *Descriptor) error

	Extract   string
	Mode      ExtractMode
	Normalize func(rec map[string]any) (music.Track, bool)
}

// run applies the descriptor's encode step and executes the request.
// An encode failure is a configuration-class error (missing secure
// randomness) and is the only error surfaced here; transport failures
// travel inside the response.
func run(ctx context.Context, exec upstream.Executor, d *Descriptor) (*upstream.Response, error) {
	if d.Encode != nil {
		if err := d.Encode(d); err != nil {
			return nil, err
		}
	}
	return exec.Execute(ctx, &d.Request), nil
}

// listTracks runs a track-list descriptor end to end: execute, extract
// the record list, normalize each record. Upstream failures and records
// without a usable identifier degrade to a shorter (possibly empty)
// list, never an error.
func listTracks(ctx context.Context, exec upstream.Executor, d *Descriptor) ([]music.Track, error) {
	resp, err := run(ctx, exec, d)
	if err != nil {
		return nil, err
	}
	tracks := []music.Track{}
	if resp.Err != nil {
		slog.Warn("Upstream call failed, returning empty list", "provider", d.Request.Provider, "url", d.Request.URL, "attempts", resp.Attempts, "error", resp.Err)
		return tracks, nil
	}

	if d.Mode == ExtractAlbumHTML {
		return scrapeKuwoAlbum(resp.Body), nil
	}

	for _, rec := range extractRecords(resp.Body, d.Extract, d.Mode) {
		if t, ok := d.Normalize(rec); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// decodeJSON parses a response body keeping numbers as json.Number so
// large provider ids survive without float rounding.
func decodeJSON(body []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}
