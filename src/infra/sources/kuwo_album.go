package sources

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tunegate/tunegate/src/music"
)

var kuwoPlayDetailRe = regexp.MustCompile(`/play_detail/(\d+)`)

// scrapeKuwoAlbum pulls the track listing out of an album detail page.
// Each song row is a li.song_item; the id lives in the play-detail link
// href. Rows without an id are dropped, and an unparseable document
// yields an empty list.
func scrapeKuwoAlbum(html []byte) []music.Track {
	tracks := []music.Track{}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return tracks
	}
	doc.Find("li.song_item").Each(func(_ int, item *goquery.Selection) {
		link := item.Find(".song_name a")
		href, _ := link.Attr("href")
		m := kuwoPlayDetailRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := m[1]
		name, _ := link.Attr("title")
		artist, _ := item.Find(".song_artist [title]").Attr("title")
		album, _ := item.Find(".song_album [title]").Attr("title")
		tracks = append(tracks, music.Track{
			ID:        id,
			Name:      strings.TrimSpace(name),
			Artists:   splitKuwoArtists(artist),
			Album:     strings.TrimSpace(album),
			ArtworkID: id,
			StreamID:  id,
			LyricsID:  id,
			Source:    music.Kuwo,
		})
	})
	return tracks
}
