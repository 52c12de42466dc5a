package config

const (
	defaultDBDir          = "~/.local/share/gamatrix/dbs"
	defaultCachePath      = "~/.local/share/gamatrix/igdb_cache.json"
	defaultIGDBAPIBaseURL = "https://api.igdb.com/v4"
	defaultIGDBAuthURL    = "https://id.twitch.tv/oauth2/token"
	// IGDB allows 4 requests per second.
	defaultIGDBRequestDelayMS = 250
	defaultServerBind         = "0.0.0.0:8080"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DBDir:     defaultDBDir,
			CachePath: defaultCachePath,
		},
		IGDB: IGDB{
			APIBaseURL:     defaultIGDBAPIBaseURL,
			AuthBaseURL:    defaultIGDBAuthURL,
			RequestDelayMS: defaultIGDBRequestDelayMS,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Metadata: map[string]Override{},
	}
}
