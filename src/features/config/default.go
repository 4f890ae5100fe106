package config

var defaultConfig = Config{
	Server: Server{
		PrintRoutes: false,
		Port:        3636,
	},
	Logger: Logger{
		Enabled: true,
		Level:   "info",
		Format:  "text",
	},
	Upstream: Upstream{
		Proxy:   "",
		Cookies: map[string]string{},
	},
	Defaults: Defaults{
		Bitrate:     320,
		ArtworkSize: 300,
		Limit:       20,
	},
}
