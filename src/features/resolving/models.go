package resolving

import "fmt"

// Operation identifies what is being resolved. The wire names follow
// the de-facto convention the supported clients already speak.
type Operation string

const (
	// OpSearch resolves a keyword to a track list.
	OpSearch Operation = "search"
	// OpStream resolves a track id to a playable URL.
	OpStream Operation = "url"
	// OpArtwork resolves a track id to a cover image URL.
	OpArtwork Operation = "pic"
	// OpLyrics resolves a track id to lyrics.
	OpLyrics Operation = "lyric"
	// OpAlbum resolves an album id to its track list. Not exposed over
	// HTTP; used by embedding callers.
	OpAlbum Operation = "album"
)

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OpSearch, OpStream, OpArtwork, OpLyrics, OpAlbum:
		return Operation(s), nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Query is the parsed form of one resolution request. Zero-valued
// fields are filled from the configured defaults before dispatch.
type Query struct {
	Server  string `query:"server" validate:"omitempty,oneof=netease tencent kugou kuwo"`
	Type    string `query:"type" validate:"required,oneof=search url pic lyric"`
	Name    string `query:"name"`
	ID      string `query:"id"`
	Page    int    `query:"page" validate:"omitempty,gte=1"`
	Limit   int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
	Bitrate int    `query:"br" validate:"omitempty,gt=0"`
	Size    int    `query:"size" validate:"omitempty,gt=0"`
}
