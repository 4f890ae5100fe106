package sources

import (
	"context"
	"fmt"

	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

// The dispatch tables bind each provider to its protocol functions.
// Every supported provider appears in every table; a lookup miss means
// the caller passed a provider that was never registered, which is a
// caller bug rather than an upstream failure.

var searchBuilders = map[music.Provider]func(Params) *Descriptor{
	music.Netease: neteaseSearch,
	music.Tencent: tencentSearch,
	music.Kugou:   kugouSearch,
	music.Kuwo:    kuwoSearch,
}

var albumBuilders = map[music.Provider]func(Params) *Descriptor{
	music.Netease: neteaseAlbum,
	music.Tencent: tencentAlbum,
	music.Kugou:   kugouAlbum,
	music.Kuwo:    kuwoAlbum,
}

var streamResolvers = map[music.Provider]func(ctx context.Context, exec upstream.Executor, id string, ceiling int) (music.StreamResolution, error){
	music.Netease: neteaseStream,
	music.Tencent: tencentStream,
	music.Kugou:   kugouStream,
	music.Kuwo:    kuwoStream,
}

var lyricsResolvers = map[music.Provider]func(ctx context.Context, exec upstream.Executor, id string) (music.LyricsResult, error){
	music.Netease: neteaseLyrics,
	music.Tencent: tencentLyrics,
	music.Kugou:   kugouLyrics,
	music.Kuwo:    kuwoLyrics,
}

var artworkResolvers = map[music.Provider]func(ctx context.Context, exec upstream.Executor, id string, size int) (music.Artwork, error){
	music.Netease: neteaseArtwork,
	music.Tencent: tencentArtwork,
	music.Kugou:   kugouArtwork,
	music.Kuwo:    kuwoArtwork,
}

// Search runs a keyword search against one provider and returns the
// normalized track list. Upstream failures yield an empty list.
func Search(ctx context.Context, exec upstream.Executor, p music.Provider, params Params) ([]music.Track, error) {
	build, ok := searchBuilders[p]
	if !ok {
		return nil, fmt.Errorf("provider %q is not registered for search", p)
	}
	return listTracks(ctx, exec, build(params))
}

// AlbumTracks lists the tracks of one album.
func AlbumTracks(ctx context.Context, exec upstream.Executor, p music.Provider, params Params) ([]music.Track, error) {
	build, ok := albumBuilders[p]
	if !ok {
		return nil, fmt.Errorf("provider %q is not registered for album listing", p)
	}
	return listTracks(ctx, exec, build(params))
}

// ResolveStream turns a stream id into a playable URL at the highest
// quality no greater than the ceiling (kbps). An unavailable track
// yields the unresolved sentinel, not an error.
func ResolveStream(ctx context.Context, exec upstream.Executor, p music.Provider, id string, ceiling int) (music.StreamResolution, error) {
	resolve, ok := streamResolvers[p]
	if !ok {
		return music.StreamResolution{}, fmt.Errorf("provider %q is not registered for stream resolution", p)
	}
	return resolve(ctx, exec, id, ceiling)
}

// ResolveLyrics fetches a track's lyrics and, where the provider has
// one, the translated variant.
func ResolveLyrics(ctx context.Context, exec upstream.Executor, p music.Provider, id string) (music.LyricsResult, error) {
	resolve, ok := lyricsResolvers[p]
	if !ok {
		return music.LyricsResult{}, fmt.Errorf("provider %q is not registered for lyrics resolution", p)
	}
	return resolve(ctx, exec, id)
}

// ResolveArtwork fetches a track's cover URL at the requested edge
// length in pixels.
func ResolveArtwork(ctx context.Context, exec upstream.Executor, p music.Provider, id string, size int) (music.Artwork, error) {
	resolve, ok := artworkResolvers[p]
	if !ok {
		return music.Artwork{}, fmt.Errorf("provider %q is not registered for artwork resolution", p)
	}
	return resolve(ctx, exec, id, size)
}
