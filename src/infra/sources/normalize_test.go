package sources

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tunegate/tunegate/src/music"
)

// Records carrying nothing but their identifier still normalize, with
// every optional field defaulting to an empty string or an empty list.
func TestNormalizeMinimalRecords(t *testing.T) {
	cases := []struct {
		name      string
		normalize func(map[string]any) (music.Track, bool)
		rec       map[string]any
		wantID    string
	}{
		{"netease", normalizeNetease, map[string]any{"id": json.Number("5")}, "5"},
		{"tencent", normalizeTencent, map[string]any{"mid": "000abc"}, "000abc"},
		{"kugou", normalizeKugou, map[string]any{"hash": "deadbeef"}, "deadbeef"},
		{"kuwo search", normalizeKuwo, map[string]any{"MUSICRID": "MUSIC_9"}, "9"},
		{"kuwo song", normalizeKuwoSong, map[string]any{"id": json.Number("9")}, "9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			track, ok := tc.normalize(tc.rec)
			if !ok {
				t.Fatal("record with an identifier must normalize")
			}
			if track.ID != tc.wantID {
				t.Errorf("id = %q, want %q", track.ID, tc.wantID)
			}
			if track.Name != "" || track.Album != "" {
				t.Errorf("optional strings not defaulted: %+v", track)
			}
			if track.Artists == nil || len(track.Artists) != 0 {
				t.Errorf("artists = %#v, want empty list", track.Artists)
			}

			payload, err := json.Marshal(track)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(payload), `"artist":[]`) {
				t.Errorf("artists must marshal to an empty array: %s", payload)
			}
		})
	}
}
