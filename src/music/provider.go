package music

import (
	"fmt"
	"strings"
)

// Provider identifies one of the four supported upstream music platforms.
// The set is closed: descriptors, header tables, decoders and normalizers
// exist only for these four values.
type Provider string

const (
	Netease Provider = "netease"
	Tencent Provider = "tencent"
	Kugou   Provider = "kugou"
	Kuwo    Provider = "kuwo"
)

// Providers lists every supported provider in a stable order.
var Providers = []Provider{Netease, Tencent, Kugou, Kuwo}

// ParseProvider validates a provider name from caller input.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case Netease:
		return Netease, nil
	case Tencent:
		return Tencent, nil
	case Kugou:
		return Kugou, nil
	case Kuwo:
		return Kuwo, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

func (p Provider) String() string { return string(p) }
