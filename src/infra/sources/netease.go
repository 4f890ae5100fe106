package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

var neteasePicIDPattern = regexp.MustCompile(`/(\d+)\.`)

func neteaseSearch(p Params) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Netease,
			Method:   http.MethodPost,
			URL:      "http://music.163.com/api/cloudsearch/pc",
		},
		Plain: map[string]any{
			"s":      p.Keyword,
			"type":   1,
			"limit":  p.Limit,
			"total":  "true",
			"offset": (p.Page - 1) * p.Limit,
		},
		Encode:    weapiEncode,
		Extract:   "result.songs",
		Normalize: normalizeNetease,
	}
}

func neteaseSong(id string) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Netease,
			Method:   http.MethodPost,
			URL:      "http://music.163.com/api/v3/song/detail/",
		},
		Plain: map[string]any{
			"c": fmt.Sprintf(`[{"id":%s,"v":0}]`, id),
		},
		Encode:    weapiEncode,
		Extract:   "songs",
		Normalize: normalizeNetease,
	}
}

func neteaseAlbum(p Params) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Netease,
			Method:   http.MethodPost,
			URL:      "http://music.163.com/api/v1/album/" + p.ID,
		},
		Plain: map[string]any{
			"total":         "true",
			"offset":        "0",
			"id":            p.ID,
			"limit":         "1000",
			"ext":           "true",
			"private_cloud": "true",
		},
		Encode:    weapiEncode,
		Extract:   "songs",
		Normalize: normalizeNetease,
	}
}

// neteaseStream resolves a playable URL in a single signed call. The
// platform reports bitrate in bits per second.
func neteaseStream(ctx context.Context, exec upstream.Executor, id string, ceiling int) (music.StreamResolution, error) {
	d := &Descriptor{
		Request: upstream.Request{
			Provider: music.Netease,
			Method:   http.MethodPost,
			URL:      "http://music.163.com/api/song/enhance/player/url",
		},
		Plain: map[string]any{
			"ids": []string{id},
			"br":  ceiling * 1000,
		},
		Encode: weapiEncode,
	}
	resp, err := run(ctx, exec, d)
	if err != nil {
		return music.UnresolvedStream(), err
	}
	if resp.Err != nil {
		slog.Warn("Stream lookup failed", "provider", music.Netease, "id", id, "error", resp.Err)
		return music.UnresolvedStream(), nil
	}
	return decodeNeteaseStream(resp.Body), nil
}

func decodeNeteaseStream(body []byte) music.StreamResolution {
	doc, ok := decodeJSON(body)
	if !ok {
		return music.UnresolvedStream()
	}
	recs := AsRecordList(Pickup(doc, "data"))
	if len(recs) == 0 {
		return music.UnresolvedStream()
	}
	song := recs[0]

	// The uf block, when present, carries a better URL than the primary
	// field.
	streamURL := str(obj(song["uf"])["url"])
	if streamURL == "" {
		streamURL = str(song["url"])
	}
	if streamURL == "" {
		return music.UnresolvedStream()
	}
	return music.StreamResolution{
		URL:     streamURL,
		Size:    num(song["size"]),
		Bitrate: int(num(song["br"])) / 1000,
	}
}

func neteaseLyrics(ctx context.Context, exec upstream.Executor, id string) (music.LyricsResult, error) {
	d := &Descriptor{
		Request: upstream.Request{
			Provider: music.Netease,
			Method:   http.MethodPost,
			URL:      "http://music.163.com/api/song/lyric",
		},
		Plain: map[string]any{
			"id": id,
			"os": "linux",
			"lv": -1,
			"kv": -1,
			"tv": -1,
		},
		Encode: weapiEncode,
	}
	resp, err := run(ctx, exec, d)
	if err != nil {
		return music.LyricsResult{}, err
	}
	if resp.Err != nil {
		return music.LyricsResult{}, nil
	}
	doc, ok := decodeJSON(resp.Body)
	if !ok {
		return music.LyricsResult{}, nil
	}
	return music.LyricsResult{
		Lyric:       str(Pickup(doc, "lrc.lyric")),
		Translation: str(Pickup(doc, "tlyric.lyric")),
	}, nil
}

// neteaseArtwork derives the cover URL from the song detail lookup; the
// platform ships a ready-made image URL that only needs the size
// appended.
func neteaseArtwork(ctx context.Context, exec upstream.Executor, id string, size int) (music.Artwork, error) {
	d := neteaseSong(id)
	resp, err := run(ctx, exec, d)
	if err != nil {
		return music.Artwork{}, err
	}
	if resp.Err != nil {
		return music.Artwork{}, nil
	}
	doc, ok := decodeJSON(resp.Body)
	if !ok {
		return music.Artwork{}, nil
	}
	var picURL string
	if recs := AsRecordList(Pickup(doc, "songs")); len(recs) > 0 {
		picURL = str(obj(recs[0]["al"])["picUrl"])
	}
	if picURL == "" {
		return music.Artwork{}, nil
	}
	return music.Artwork{URL: fmt.Sprintf("%s?param=%dy%d", picURL, size, size)}, nil
}

func normalizeNetease(rec map[string]any) (music.Track, bool) {
	id := str(rec["id"])
	if id == "" {
		return music.Track{}, false
	}

	album := obj(rec["al"])
	picID := str(album["pic_str"])
	if picID == "" {
		picID = str(album["pic"])
	}
	if picID == "" {
		if m := neteasePicIDPattern.FindStringSubmatch(str(album["picUrl"])); m != nil {
			picID = m[1]
		}
	}

	artists := []string{}
	for _, a := range arr(rec["ar"]) {
		if name := str(obj(a)["name"]); name != "" {
			artists = append(artists, name)
		}
	}

	return music.Track{
		ID:        id,
		Name:      str(rec["name"]),
		Artists:   artists,
		Album:     str(album["name"]),
		ArtworkID: picID,
		StreamID:  id,
		LyricsID:  id,
		Source:    music.Netease,
	}, true
}
