package music

// Track is the canonical, provider-agnostic metadata record every
// normalizer produces. Optional fields are empty strings or empty slices,
// never omitted, so consumers always see the same JSON shape.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artist"`
	Album   string   `json:"album"`
	// Reference ids for follow-up resolutions. They usually equal ID but
	// some providers key artwork by album id or file hash instead.
	ArtworkID string   `json:"pic_id"`
	StreamID  string   `json:"url_id"`
	LyricsID  string   `json:"lyric_id"`
	Source    Provider `json:"source"`
}

// StreamResolution is the result of a stream-URL lookup. An empty URL with
// Bitrate -1 means the track could not be resolved at any quality; it is a
// normal outcome, not an error.
type StreamResolution struct {
	URL     string `json:"url"`
	Size    int64  `json:"size"`
	Bitrate int    `json:"br"`
}

// UnresolvedStream is the sentinel returned when no playable URL exists.
func UnresolvedStream() StreamResolution {
	return StreamResolution{URL: "", Size: 0, Bitrate: -1}
}

// LyricsResult carries the primary lyrics (usually LRC-formatted) and an
// optional translation. Empty strings mean "not available".
type LyricsResult struct {
	Lyric       string `json:"lyric"`
	Translation string `json:"tlyric"`
}

// Artwork wraps a resolved album cover URL. Empty means "not found".
type Artwork struct {
	URL string `json:"url"`
}
