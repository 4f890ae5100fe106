package config

// Config holds the application configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Logger   Logger   `yaml:"logger"`
	Upstream Upstream `yaml:"upstream"`
	Defaults Defaults `yaml:"defaults"`
}

// Server holds the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port" validate:"required"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Upstream holds the configuration for outbound platform calls.
type Upstream struct {
	// Proxy is an optional proxy URL all platform calls are routed
	// through. Empty means direct.
	Proxy string `yaml:"proxy"`
	// Cookies overrides the built-in session cookie per platform,
	// keyed by platform name (netease, tencent, kugou, kuwo).
	Cookies map[string]string `yaml:"cookies"`
}

// Defaults holds the fallback request parameters applied when a query
// omits them.
type Defaults struct {
	Bitrate     int `yaml:"bitrate" validate:"gt=0"`
	ArtworkSize int `yaml:"artwork_size" validate:"gt=0"`
	Limit       int `yaml:"limit" validate:"gt=0"`
}
