package sources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

// tencentTiers enumerates the platform's quality variants in descending
// bitrate order. Each file is addressed by a filename prefix, and its
// availability is hinted by a per-tier size field on the song record.
var tencentTiers = []struct {
	prefix  string
	bitrate int
	ext     string
	sizeKey string
}{
	{"F000", 999, "flac", "size_flac"},
	{"M800", 320, "mp3", "size_320mp3"},
	{"C600", 192, "m4a", "size_192aac"},
	{"M500", 128, "mp3", "size_128mp3"},
	{"C400", 96, "m4a", "size_96aac"},
	{"C200", 48, "m4a", "size_48aac"},
	{"C100", 24, "m4a", "size_24aac"},
}

var tencentUinPattern = regexp.MustCompile(`uin=(\d+)`)

func tencentSearch(p Params) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Tencent,
			Method:   http.MethodGet,
			URL:      "https://c.y.qq.com/soso/fcgi-bin/client_search_cp",
			Params: url.Values{
				"format":   {"json"},
				"p":        {fmt.Sprint(p.Page)},
				"n":        {fmt.Sprint(p.Limit)},
				"w":        {p.Keyword},
				"aggr":     {"1"},
				"lossless": {"1"},
				"cr":       {"1"},
				"new_json": {"1"},
			},
		},
		Extract:   "data.song.list",
		Normalize: normalizeTencent,
	}
}

func tencentSong(id string) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Tencent,
			Method:   http.MethodGet,
			URL:      "https://c.y.qq.com/v8/fcg-bin/fcg_play_single_song.fcg",
			Params: url.Values{
				"songmid":  {id},
				"platform": {"yqq"},
				"format":   {"json"},
			},
		},
		Extract:   "data",
		Normalize: normalizeTencent,
	}
}

func tencentAlbum(p Params) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Tencent,
			Method:   http.MethodGet,
			URL:      "https://c.y.qq.com/v8/fcg-bin/fcg_v8_album_detail_cp.fcg",
			Params: url.Values{
				"albummid": {p.ID},
				"platform": {"mac"},
				"format":   {"json"},
				"newsong":  {"1"},
			},
		},
		Extract:   "data.getSongInfo",
		Normalize: normalizeTencent,
	}
}

// tencentStream is a two-stage chain: the song lookup yields a media id
// and per-tier size hints, then a key-resolution call returns signing
// keys and a CDN host for every requested tier. The best tier at or
// below the ceiling whose key resolved wins.
func tencentStream(ctx context.Context, exec upstream.Executor, id string, ceiling int) (music.StreamResolution, error) {
	resp, err := run(ctx, exec, tencentSong(id))
	if err != nil {
		return music.UnresolvedStream(), err
	}
	if resp.Err != nil {
		slog.Warn("Stream lookup failed", "provider", music.Tencent, "id", id, "error", resp.Err)
		return music.UnresolvedStream(), nil
	}
	return decodeTencentStream(ctx, exec, resp.Body, ceiling), nil
}

func decodeTencentStream(ctx context.Context, exec upstream.Executor, body []byte, ceiling int) music.StreamResolution {
	doc, ok := decodeJSON(body)
	if !ok {
		return music.UnresolvedStream()
	}
	songs := AsRecordList(Pickup(doc, "data"))
	if len(songs) == 0 {
		return music.UnresolvedStream()
	}
	song := songs[0]
	file := obj(song["file"])
	mid := str(song["mid"])
	mediaMid := str(file["media_mid"])
	if mid == "" || mediaMid == "" {
		return music.UnresolvedStream()
	}

	// Stage two: request signing keys for every tier the size hints say
	// exists. Zero or missing hints mean the file is not there.
	var songmids, filenames []string
	var songtypes []int64
	for _, tier := range tencentTiers {
		if num(file[tier.sizeKey]) <= 0 {
			continue
		}
		songmids = append(songmids, mid)
		filenames = append(filenames, tier.prefix+mediaMid+"."+tier.ext)
		songtypes = append(songtypes, num(song["type"]))
	}
	if len(songmids) == 0 {
		return music.UnresolvedStream()
	}

	payload := map[string]any{
		"req_0": map[string]any{
			"module": "vkey.GetVkeyServer",
			"method": "CgiGetVkey",
			"param": map[string]any{
				"guid":      fmt.Sprint(100000000 + rand.Intn(900000000)),
				"songmid":   songmids,
				"filename":  filenames,
				"songtype":  songtypes,
				"uin":       tencentUin(exec),
				"loginflag": 1,
				"platform":  "20",
			},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return music.UnresolvedStream()
	}

	keyResp := exec.Execute(ctx, &upstream.Request{
		Provider: music.Tencent,
		Method:   http.MethodGet,
		URL:      "https://u.y.qq.com/cgi-bin/musicu.fcg",
		Params: url.Values{
			"format": {"json"},
			"data":   {string(data)},
		},
	})
	if keyResp.Err != nil {
		slog.Warn("Key resolution failed", "provider", music.Tencent, "error", keyResp.Err)
		return music.UnresolvedStream()
	}
	keyDoc, ok := decodeJSON(keyResp.Body)
	if !ok {
		return music.UnresolvedStream()
	}
	keyInfos := AsRecordList(Pickup(keyDoc, "req_0.data.midurlinfo"))
	hosts := arr(Pickup(keyDoc, "req_0.data.sip"))
	if len(keyInfos) == 0 || len(hosts) == 0 {
		return music.UnresolvedStream()
	}
	host := str(hosts[0])

	for _, tier := range tencentTiers {
		if tier.bitrate > ceiling || num(file[tier.sizeKey]) <= 0 {
			continue
		}
		filename := tier.prefix + mediaMid + "." + tier.ext
		for _, info := range keyInfos {
			if str(info["filename"]) != filename {
				continue
			}
			if str(info["vkey"]) == "" || str(info["purl"]) == "" {
				break
			}
			return music.StreamResolution{
				URL:     host + str(info["purl"]),
				Size:    num(file[tier.sizeKey]),
				Bitrate: tier.bitrate,
			}
		}
	}
	return music.UnresolvedStream()
}

// tencentUin pulls the account uin out of the effective Cookie header
// when the executor exposes one; anonymous requests use "0".
func tencentUin(exec upstream.Executor) string {
	cp, ok := exec.(interface{ Cookie(music.Provider) string })
	if !ok {
		return "0"
	}
	if m := tencentUinPattern.FindStringSubmatch(cp.Cookie(music.Tencent)); m != nil {
		return m[1]
	}
	return "0"
}

// tencentLyrics fetches the lyric endpoint and unwraps its JSONP
// envelope; both lyric bodies are base64 encoded.
func tencentLyrics(ctx context.Context, exec upstream.Executor, id string) (music.LyricsResult, error) {
	resp := exec.Execute(ctx, &upstream.Request{
		Provider: music.Tencent,
		Method:   http.MethodGet,
		URL:      "https://c.y.qq.com/lyric/fcgi-bin/fcg_query_lyric_new.fcg",
		Params: url.Values{
			"songmid": {id},
			"g_tk":    {"5381"},
		},
		Headers: map[string]string{"Referer": "https://y.qq.com"},
	})
	if resp.Err != nil {
		return music.LyricsResult{}, nil
	}
	doc, ok := decodeJSON(stripJSONP(resp.Body))
	if !ok {
		return music.LyricsResult{}, nil
	}
	return music.LyricsResult{
		Lyric:       decodeBase64(str(Pickup(doc, "lyric"))),
		Translation: decodeBase64(str(Pickup(doc, "trans"))),
	}, nil
}

// stripJSONP removes a callback wrapper like `MusicJsonCallback(...)`.
// Bodies without a wrapper pass through unchanged.
func stripJSONP(body []byte) []byte {
	s := strings.TrimSpace(string(body))
	open := strings.Index(s, "(")
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return body
	}
	return []byte(s[open+1 : len(s)-1])
}

func decodeBase64(s string) string {
	if s == "" {
		return ""
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(b)
}

// tencentArtwork derives a cover URL from the album mid; the image host
// serves any size through the URL template.
func tencentArtwork(ctx context.Context, exec upstream.Executor, id string, size int) (music.Artwork, error) {
	resp, err := run(ctx, exec, tencentSong(id))
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
	songs := AsRecordList(Pickup(doc, "data"))
	if len(songs) == 0 {
		return music.Artwork{}, nil
	}
	albumMid := str(obj(songs[0]["album"])["mid"])
	if albumMid == "" {
		return music.Artwork{}, nil
	}
	return music.Artwork{
		URL: fmt.Sprintf("https://y.gtimg.cn/music/photo_new/T002R%dx%dM000%s.jpg?max_age=2592000", size, size, albumMid),
	}, nil
}

func normalizeTencent(rec map[string]any) (music.Track, bool) {
	// Playlist-shaped records nest the song under musicData.
	if inner := obj(rec["musicData"]); inner != nil {
		rec = inner
	}

	id := str(rec["mid"])
	if id == "" {
		id = str(rec["songmid"])
	}
	if id == "" {
		return music.Track{}, false
	}

	name := str(rec["name"])
	if name == "" {
		name = str(rec["songname"])
	}

	album := obj(rec["album"])
	albumName := strings.TrimSpace(str(album["title"]))
	if albumName == "" {
		albumName = str(rec["albumname"])
	}
	picID := str(album["mid"])
	if picID == "" {
		picID = str(rec["albummid"])
	}

	artists := []string{}
	for _, a := range arr(rec["singer"]) {
		if n := str(obj(a)["name"]); n != "" {
			artists = append(artists, n)
		}
	}

	return music.Track{
		ID:        id,
		Name:      name,
		Artists:   artists,
		Album:     albumName,
		ArtworkID: picID,
		StreamID:  id,
		LyricsID:  id,
		Source:    music.Tencent,
	}, true
}
