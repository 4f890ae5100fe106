package upstream

import (
	"fmt"
	"math/rand"

	"github.com/tunegate/tunegate/src/music"
)

// Each platform only accepts requests that look like one of its own
// clients, so the header sets below mirror known-good client signatures
// and must be sent verbatim.
var providerHeaders = map[music.Provider]map[string]string{
	music.Netease: {
		"Referer":         "https://music.163.com/",
		"Cookie":          "appver=8.2.30; os=iPhone OS; osver=15.0; EVNSM=1.0.0; buildver=2206; channel=distribution; machineid=iPhone13.3",
		"User-Agent":      "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148 CloudMusic/0.1.1 NeteaseMusic/8.2.30",
		"Accept":          "*/*",
		"Accept-Language": "zh-CN,zh;q=0.8,gl;q=0.6,zh-TW;q=0.4",
		"Connection":      "keep-alive",
		"Content-Type":    "application/x-www-form-urlencoded",
	},
	music.Tencent: {
		"Referer":         "http://y.qq.com/",
		"Cookie":          "pgv_pvi=22038528; pgv_si=s3156287488; pgv_pvid=5535248600; yplayer_open=1; ts_last=y.qq.com/portal/player.html; ts_uid=4847550686; yq_index=0; qqmusic_fromtag=66; player_exist=1",
		"User-Agent":      "QQ%E9%9F%B3%E4%B9%90/54409 CFNetwork/901.1 Darwin/17.6.0 (x86_64)",
		"Accept":          "*/*",
		"Accept-Language": "zh-CN,zh;q=0.8,gl;q=0.6,zh-TW;q=0.4",
		"Connection":      "keep-alive",
		"Content-Type":    "application/x-www-form-urlencoded",
	},
	music.Kugou: {
		"User-Agent":    "IPhone-8990-searchSong",
		"UNI-UserAgent": "iOS11.4-Phone8990-1009-0-WiFi",
	},
	music.Kuwo: {
		"Cookie":     "Hm_lvt_cdb524f42f0ce19b169a8071123a4797=1623339177,1623339183; _ga=GA1.2.1195980605.1579367081; Hm_lpvt_cdb524f42f0ce19b169a8071123a4797=1623339982; kw_token=3E7JFQ7MRPL; _gid=GA1.2.747985028.1623339179; _gat=1",
		"csrf":       "3E7JFQ7MRPL",
		"Host":       "www.kuwo.cn",
		"Referer":    "http://www.kuwo.cn/",
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36 Edg/117.0.2045.47",
	},
}

// plainHeaders is the reduced anti-detection set some kuwo endpoints
// require; sending the full browser signature there gets the request
// blocked.
var plainHeaders = map[string]string{
	"Accept":     "application/json",
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36 Edg/117.0.2045.47",
}

// randomRealIP picks an address from a mainland block the upstream
// geo-checks accept (112.88.0.0 – 112.89.35.255).
func randomRealIP() string {
	n := 1884815360 + rand.Intn(1884890112-1884815360)
	return fmt.Sprintf("%d.%d.%d.%d", byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}
