package sources

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

func kugouSearch(p Params) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Kugou,
			Method:   http.MethodGet,
			URL:      "http://mobilecdn.kugou.com/api/v3/search/song",
			Params: url.Values{
				"api_ver":   {"1"},
				"area_code": {"1"},
				"correct":   {"1"},
				"pagesize":  {fmt.Sprint(p.Limit)},
				"plat":      {"2"},
				"tag":       {"1"},
				"sver":      {"5"},
				"showtype":  {"10"},
				"page":      {fmt.Sprint(p.Page)},
				"keyword":   {p.Keyword},
				"version":   {"8990"},
			},
		},
		Extract:   "data.info",
		Normalize: normalizeKugou,
	}
}

func kugouSong(id string) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Kugou,
			Method:   http.MethodPost,
			URL:      "http://m.kugou.com/app/i/getSongInfo.php",
			Params: url.Values{
				"cmd":  {"playInfo"},
				"hash": {id},
				"from": {"mkugou"},
			},
		},
		// The song endpoint's root object is consumed whole (artwork
		// derivation reads it directly), no extraction path applies.
		Mode:      ExtractRootList,
		Normalize: normalizeKugou,
	}
}

func kugouAlbum(p Params) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Kugou,
			Method:   http.MethodGet,
			URL:      "http://mobilecdn.kugou.com/api/v3/album/song",
			Params: url.Values{
				"albumid":   {p.ID},
				"area_code": {"1"},
				"plat":      {"2"},
				"page":      {"1"},
				"pagesize":  {"-1"},
				"version":   {"8990"},
			},
		},
		Extract:   "data.info",
		Normalize: normalizeKugou,
	}
}

// kugouStream walks a two-stage chain: a privilege call enumerates the
// quality variants of a file hash, then a download-authorization call is
// made per variant, best bitrate first, until one yields a usable URL.
func kugouStream(ctx context.Context, exec upstream.Executor, id string, ceiling int) (music.StreamResolution, error) {
	body, err := json.Marshal(map[string]any{
		"relate":    1,
		"userid":    "0",
		"vip":       0,
		"appid":     1000,
		"token":     "",
		"behavior":  "download",
		"area_code": "1",
		"clientver": "8990",
		"resource":  []map[string]any{{"id": 0, "type": "audio", "hash": id}},
	})
	if err != nil {
		return music.UnresolvedStream(), err
	}
	resp := exec.Execute(ctx, &upstream.Request{
		Provider: music.Kugou,
		Method:   http.MethodPost,
		URL:      "http://media.store.kugou.com/v1/get_res_privilege",
		RawBody:  string(body),
	})
	if resp.Err != nil {
		slog.Warn("Stream lookup failed", "provider", music.Kugou, "id", id, "error", resp.Err)
		return music.UnresolvedStream(), nil
	}
	return decodeKugouStream(ctx, exec, resp.Body, ceiling), nil
}

type kugouVariant struct {
	hash     string
	bitrate  int64 // bits per second
	fileName string
}

func decodeKugouStream(ctx context.Context, exec upstream.Executor, body []byte, ceiling int) music.StreamResolution {
	doc, ok := decodeJSON(body)
	if !ok {
		return music.UnresolvedStream()
	}
	recs := AsRecordList(Pickup(doc, "data"))
	if len(recs) == 0 {
		return music.UnresolvedStream()
	}

	variants := []kugouVariant{}
	for _, g := range AsRecordList(recs[0]["relate_goods"]) {
		info := obj(g["info"])
		v := kugouVariant{
			hash:     str(g["hash"]),
			bitrate:  num(info["bitrate"]),
			fileName: str(info["fileName"]),
		}
		// Variants without a hash or a positive bitrate are treated as
		// unavailable rather than probed.
		if v.hash == "" || v.bitrate <= 0 || v.bitrate > int64(ceiling)*1000 {
			continue
		}
		variants = append(variants, v)
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].bitrate > variants[j].bitrate })

	for _, v := range variants {
		if res, ok := kugouAuthorize(ctx, exec, v); ok {
			return res
		}
	}
	return music.UnresolvedStream()
}

// kugouAuthorize asks the download tracker for the actual CDN URL of a
// single variant.
func kugouAuthorize(ctx context.Context, exec upstream.Executor, v kugouVariant) (music.StreamResolution, bool) {
	filename := v.fileName
	if filename == "" {
		filename = v.hash + ".mp3"
	}
	resp := exec.Execute(ctx, &upstream.Request{
		Provider: music.Kugou,
		Method:   http.MethodGet,
		URL:      "http://trackercdn.kugou.com/i/v2/",
		Params: url.Values{
			"hash":     {v.hash},
			"key":      {fmt.Sprintf("%x", md5.Sum([]byte(v.hash+"kgcloudv2")))},
			"pid":      {"3"},
			"behavior": {"download"},
			"cmd":      {"25"},
			"filename": {filename},
		},
	})
	if resp.Err != nil {
		return music.StreamResolution{}, false
	}
	doc, ok := decodeJSON(resp.Body)
	if !ok {
		return music.StreamResolution{}, false
	}
	urls := arr(Pickup(doc, "url"))
	if len(urls) == 0 || str(urls[0]) == "" {
		return music.StreamResolution{}, false
	}
	return music.StreamResolution{
		URL:     str(urls[0]),
		Size:    num(Pickup(doc, "fileSize")),
		Bitrate: int(num(Pickup(doc, "bitRate"))) / 1000,
	}, true
}

// kugouLyrics needs a preliminary lookup to obtain the lyrics id and
// access key; either missing short-circuits to an empty result without
// the download call.
func kugouLyrics(ctx context.Context, exec upstream.Executor, id string) (music.LyricsResult, error) {
	lookup := exec.Execute(ctx, &upstream.Request{
		Provider: music.Kugou,
		Method:   http.MethodGet,
		URL:      "http://krcs.kugou.com/search",
		Params: url.Values{
			"keyword": {"%20-%20"},
			"ver":     {"1"},
			"hash":    {id},
			"client":  {"mobi"},
			"man":     {"yes"},
		},
	})
	if lookup.Err != nil {
		return music.LyricsResult{}, nil
	}
	doc, ok := decodeJSON(lookup.Body)
	if !ok {
		return music.LyricsResult{}, nil
	}
	candidates := AsRecordList(Pickup(doc, "candidates"))
	if len(candidates) == 0 {
		return music.LyricsResult{}, nil
	}
	lyricID := str(candidates[0]["id"])
	accessKey := str(candidates[0]["accesskey"])
	if lyricID == "" || accessKey == "" {
		return music.LyricsResult{}, nil
	}

	download := exec.Execute(ctx, &upstream.Request{
		Provider: music.Kugou,
		Method:   http.MethodGet,
		URL:      "http://lyrics.kugou.com/download",
		Params: url.Values{
			"charset":   {"utf8"},
			"accesskey": {accessKey},
			"id":        {lyricID},
			"client":    {"mobi"},
			"fmt":       {"lrc"},
			"ver":       {"1"},
		},
	})
	if download.Err != nil {
		return music.LyricsResult{}, nil
	}
	content, ok := decodeJSON(download.Body)
	if !ok {
		return music.LyricsResult{}, nil
	}
	return music.LyricsResult{Lyric: decodeBase64(str(Pickup(content, "content")))}, nil
}

// kugouArtwork reads the ready-made image URL template off the song
// info record; it only needs the size substituted in.
func kugouArtwork(ctx context.Context, exec upstream.Executor, id string, size int) (music.Artwork, error) {
	resp, err := run(ctx, exec, kugouSong(id))
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
	imgURL := str(Pickup(doc, "imgUrl"))
	if imgURL == "" {
		return music.Artwork{}, nil
	}
	return music.Artwork{URL: strings.ReplaceAll(imgURL, "{size}", fmt.Sprint(size))}, nil
}

func normalizeKugou(rec map[string]any) (music.Track, bool) {
	id := str(rec["hash"])
	if id == "" {
		id = str(rec["audio_id"])
	}
	if id == "" {
		return music.Track{}, false
	}

	name := str(rec["filename"])
	if name == "" {
		name = str(rec["fileName"])
	}

	album := str(rec["album_name"])
	if album == "" {
		album = str(rec["albumname"])
	}

	// Search results carry "artist - title" in a single filename field;
	// multiple artists are joined with an enumeration comma.
	artists := []string{}
	if artistPart, songPart, found := strings.Cut(name, " - "); found {
		name = strings.TrimSpace(songPart)
		for _, a := range strings.Split(artistPart, "、") {
			if a = strings.TrimSpace(a); a != "" {
				artists = append(artists, a)
			}
		}
	} else if singer := str(rec["singername"]); singer != "" {
		for _, a := range strings.Split(singer, "、") {
			if a = strings.TrimSpace(a); a != "" {
				artists = append(artists, a)
			}
		}
	}

	return music.Track{
		ID:        id,
		Name:      name,
		Artists:   artists,
		Album:     album,
		ArtworkID: id,
		StreamID:  id,
		LyricsID:  id,
		Source:    music.Kugou,
	}, true
}
