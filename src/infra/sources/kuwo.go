package sources

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/tunegate/tunegate/src/infra/upstream"
	"github.com/tunegate/tunegate/src/music"
)

func kuwoSearch(p Params) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider: music.Kuwo,
			Method:   http.MethodGet,
			URL:      "http://www.kuwo.cn/search/searchMusicBykeyWord",
			Params: url.Values{
				"all":                {p.Keyword},
				"pn":                 {fmt.Sprint(p.Page - 1)}, // zero-indexed pages
				"rn":                 {fmt.Sprint(p.Limit)},
				"vipver":             {"1"},
				"client":             {"kt"},
				"ft":                 {"music"},
				"cluster":            {"0"},
				"strategy":           {"2012"},
				"encoding":           {"utf8"},
				"rformat":            {"json"},
				"mobi":               {"1"},
				"issubtitle":         {"1"},
				"show_copyright_off": {"1"},
			},
		},
		Extract:   "abslist",
		Normalize: normalizeKuwo,
	}
}

func kuwoSong(id string) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider:     music.Kuwo,
			Method:       http.MethodGet,
			URL:          "http://datacenter.kuwo.cn/d.c",
			PlainHeaders: true,
			Params: url.Values{
				"ids":        {id},
				"fpay":       {"1"},
				"isdownload": {"1"},
				"nation":     {"1"},
				"cmkey":      {"plist_pl2012"},
				"resenc":     {"utf8"},
				"force":      {"no"},
				"ft":         {"music"},
				"cmd":        {"query"},
			},
		},
		// The endpoint returns a bare JSON array of song records.
		Mode:      ExtractRootList,
		Normalize: normalizeKuwoSong,
	}
}

func kuwoAlbum(p Params) *Descriptor {
	return &Descriptor{
		Request: upstream.Request{
			Provider:     music.Kuwo,
			Method:       http.MethodGet,
			URL:          "https://www.kuwo.cn/album_detail/" + p.ID,
			PlainHeaders: true,
		},
		// No JSON album listing exists; the detail page HTML is scraped.
		Mode: ExtractAlbumHTML,
	}
}

// kuwoStream hits the URL-conversion endpoint, whose response body is
// the playable URL itself rather than JSON. The endpoint does not report
// a bitrate, so a nominal 128 kbps is assumed.
func kuwoStream(ctx context.Context, exec upstream.Executor, id string, _ int) (music.StreamResolution, error) {
	resp := exec.Execute(ctx, &upstream.Request{
		Provider:     music.Kuwo,
		Method:       http.MethodGet,
		URL:          "http://antiserver.kuwo.cn/anti.s",
		PlainHeaders: true,
		Params: url.Values{
			"format":   {"mp3"},
			"rid":      {id},
			"response": {"url"},
			"type":     {"convert_url3"},
		},
	})
	if resp.Err != nil {
		slog.Warn("Stream lookup failed", "provider", music.Kuwo, "id", id, "error", resp.Err)
		return music.UnresolvedStream(), nil
	}
	raw := strings.TrimSpace(string(resp.Body))
	if !isHTTPURL(raw) {
		return music.UnresolvedStream(), nil
	}
	return music.StreamResolution{URL: raw, Size: 0, Bitrate: 128}, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" && !strings.ContainsAny(s, " \n\t")
}

// kuwoLyrics rebuilds an LRC document from the timestamped line list
// the lyric endpoint returns. There is no translated variant.
func kuwoLyrics(ctx context.Context, exec upstream.Executor, id string) (music.LyricsResult, error) {
	resp := exec.Execute(ctx, &upstream.Request{
		Provider: music.Kuwo,
		Method:   http.MethodGet,
		URL:      "http://m.kuwo.cn/newh5/singles/songinfoandlrc",
		Params: url.Values{
			"musicId":     {id},
			"httpsStatus": {"1"},
		},
	})
	if resp.Err != nil {
		return music.LyricsResult{}, nil
	}
	doc, ok := decodeJSON(resp.Body)
	if !ok {
		return music.LyricsResult{}, nil
	}
	var sb strings.Builder
	for _, line := range AsRecordList(Pickup(doc, "data.lrclist")) {
		text, hasText := line["lineLyric"]
		if _, hasTime := line["time"]; !hasTime || !hasText {
			continue
		}
		sb.WriteString(lrcTimestamp(fnum(line["time"])))
		sb.WriteString(str(text))
		sb.WriteString("\n")
	}
	return music.LyricsResult{Lyric: sb.String()}, nil
}

// lrcTimestamp renders seconds as an LRC tag, [mm:ss.xx] with
// centisecond precision.
func lrcTimestamp(seconds float64) string {
	whole := math.Floor(seconds)
	centis := int(math.Round((seconds - whole) * 100))
	if centis == 100 {
		whole++
		centis = 0
	}
	return fmt.Sprintf("[%02d:%02d.%02d]", int(whole)/60, int(whole)%60, centis)
}

// kuwoArtwork needs two hops: the song record yields an album id, then
// the album-info endpoint yields a cover URL whose size segment is
// rewritten to the requested edge length.
func kuwoArtwork(ctx context.Context, exec upstream.Executor, id string, size int) (music.Artwork, error) {
	resp, err := run(ctx, exec, kuwoSong(id))
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
	songs := AsRecordList(doc)
	if len(songs) == 0 {
		return music.Artwork{}, nil
	}
	albumID := str(songs[0]["albumid"])
	if albumID == "" || albumID == "0" || str(songs[0]["album"]) == "" {
		return music.Artwork{}, nil
	}

	info := exec.Execute(ctx, &upstream.Request{
		Provider:     music.Kuwo,
		Method:       http.MethodGet,
		URL:          "http://mobilebasedata.kuwo.cn/basedata.s",
		PlainHeaders: true,
		Params: url.Values{
			"type":        {"get_album_info"},
			"id":          {albumID},
			"aapiver":     {"1"},
			"tmeapp":      {"1"},
			"spPrivilege": {"0"},
			"prod":        {"kwplayer_ip_11.1.0.0"},
			"source":      {"kwplayer_ip_11.1.0.0_TJ.ipa"},
			"corp":        {"kuwo"},
			"plat":        {"ip"},
			"newver":      {"3"},
			"province":    {""},
			"city":        {""},
			"notrace":     {"0"},
			"allpay":      {"0"},
		},
	})
	if info.Err != nil {
		return music.Artwork{}, nil
	}
	infoDoc, ok := decodeJSON(info.Body)
	if !ok {
		return music.Artwork{}, nil
	}
	pic := str(Pickup(infoDoc, "pic"))
	if pic == "" {
		return music.Artwork{}, nil
	}
	return music.Artwork{URL: strings.Replace(pic, "albumcover/150", "albumcover/"+fmt.Sprint(size), 1)}, nil
}

// normalizeKuwo maps the upper-cased search result shape.
func normalizeKuwo(rec map[string]any) (music.Track, bool) {
	rid := strings.TrimPrefix(str(rec["MUSICRID"]), "MUSIC_")
	if rid == "" {
		return music.Track{}, false
	}
	return music.Track{
		ID:        rid,
		Name:      str(rec["NAME"]),
		Artists:   splitKuwoArtists(str(rec["ARTIST"])),
		Album:     str(rec["ALBUM"]),
		ArtworkID: rid,
		StreamID:  rid,
		LyricsID:  rid,
		Source:    music.Kuwo,
	}, true
}

// normalizeKuwoSong maps the lower-cased song info shape.
func normalizeKuwoSong(rec map[string]any) (music.Track, bool) {
	id := str(rec["id"])
	if id == "" {
		return music.Track{}, false
	}
	return music.Track{
		ID:        id,
		Name:      str(rec["name"]),
		Artists:   splitKuwoArtists(str(rec["artist"])),
		Album:     str(rec["album"]),
		ArtworkID: id,
		StreamID:  id,
		LyricsID:  id,
		Source:    music.Kuwo,
	}, true
}

func splitKuwoArtists(s string) []string {
	artists := []string{}
	for _, a := range strings.Split(s, "&") {
		if a = strings.TrimSpace(a); a != "" {
			artists = append(artists, a)
		}
	}
	return artists
}
