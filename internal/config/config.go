// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and SNIPE_* env vars on top of the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the status HTTP listen address, e.g. ":9081".
	Addr string `koanf:"addr"`

	// Username names the account; used in the display file path and metric labels.
	Username string `koanf:"username"`

	// SnipeList is the path of the snipe-list JSON file. Empty disables sniping.
	SnipeList string `koanf:"snipe_list"`

	// PokedexPath points at the species catalogue used to resolve VIP names.
	PokedexPath string `koanf:"pokedex_path"`

	// VIPs lists species names preferred over the nearest candidate.
	VIPs []string `koanf:"vips"`

	// WebDir holds the catchable-<username>.json display file.
	WebDir string `koanf:"web_dir"`

	// TickIntervalMS is how often the runner offers the snipe task a turn.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// RetryDelayMS is the base delay around teleports and the retry.
	RetryDelayMS int `koanf:"retry_delay_ms"`

	// DefaultWaitIntervalS applies until a snipe list provides snipe_wait_interval.
	DefaultWaitIntervalS int `koanf:"default_wait_interval_s"`

	// CacheTTLS and CacheMaxLen bound the recently-tried coordinate cache.
	CacheTTLS   int `koanf:"cache_ttl_s"`
	CacheMaxLen int `koanf:"cache_max_len"`

	// PokesnipersURL is the external sighting endpoint.
	PokesnipersURL string `koanf:"pokesnipers_url"`

	// ReportHorizonS drops reports expiring sooner than this.
	ReportHorizonS int `koanf:"report_horizon_s"`

	// ReportTimeoutMS bounds the report fetch.
	ReportTimeoutMS int `koanf:"report_timeout_ms"`

	// HistoryDSN selects the Postgres attempt history; empty keeps it in memory.
	HistoryDSN string `koanf:"history_dsn"`

	// HistorySize caps the in-memory attempt history.
	HistorySize int `koanf:"history_size"`

	// HomeLat and HomeLng seed the simulated client's starting position.
	HomeLat float64 `koanf:"home_lat"`
	HomeLng float64 `koanf:"home_lng"`

	// SimLatencyMinMS and SimLatencyMaxMS bound simulated game API latency.
	SimLatencyMinMS int `koanf:"sim_latency_min_ms"`
	SimLatencyMaxMS int `koanf:"sim_latency_max_ms"`

	// SimSeed seeds the simulated spawns; 0 picks a time-based seed.
	SimSeed int64 `koanf:"sim_seed"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9081",
		Username:             "bot",
		SnipeList:            "",
		PokedexPath:          "data/pokemon.json",
		WebDir:               "web",
		TickIntervalMS:       1000,
		RetryDelayMS:         2000,
		DefaultWaitIntervalS: 120,
		CacheTTLS:            300,
		CacheMaxLen:          100,
		PokesnipersURL:       "http://pokesnipers.com/api/v1/pokemon.json",
		ReportHorizonS:       60,
		ReportTimeoutMS:      10000,
		HistorySize:          100,
		HomeLat:              40.7681,
		HomeLng:              -73.9819,
		SimLatencyMinMS:      20,
		SimLatencyMaxMS:      80,
	}
}
