package service

import (
	"time"

	"github.com/okian/snipe/internal/domain/geo"
	"github.com/okian/snipe/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSnipeList sets the snipe-list file. Empty disables sniping.
func WithSnipeList(path string) Option {
	return func(s *Service) {
		s.snipeList = path
	}
}

// WithUsername sets the account name used for the display file.
func WithUsername(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.username = name
		}
	}
}

// WithPokedex sets the species catalogue path.
func WithPokedex(path string) Option {
	return func(s *Service) {
		s.pokedexPath = path
	}
}

// WithVIPs sets the priority species names.
func WithVIPs(names []string) Option {
	return func(s *Service) {
		s.vips = append([]string(nil), names...)
	}
}

// WithWebDir sets where the display marker is written. Empty disables it.
func WithWebDir(dir string) Option {
	return func(s *Service) {
		s.webDir = dir
	}
}

// WithTickInterval sets how often the runner offers the snipe task a turn.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithRetryDelay sets the base delay around teleports.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

// WithDefaultWaitInterval sets the pass interval used before a list sets one.
func WithDefaultWaitInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.defaultWait = d
		}
	}
}

// WithCacheLimits bounds the recently-tried coordinate cache.
func WithCacheLimits(ttl time.Duration, maxLen int) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
		if maxLen > 0 {
			s.cacheMaxLen = maxLen
		}
	}
}

// WithReports configures the external report fetcher. An empty url disables it.
func WithReports(url string, horizon, timeout time.Duration) Option {
	return func(s *Service) {
		s.reportsURL = url
		if horizon > 0 {
			s.reportHorizon = horizon
		}
		if timeout > 0 {
			s.reportTimeout = timeout
		}
	}
}

// WithHistory selects the attempt history: Postgres when dsn is set,
// otherwise an in-memory ring of size entries.
func WithHistory(dsn string, size int) Option {
	return func(s *Service) {
		s.historyDSN = dsn
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithHome sets where the simulated avatar starts.
func WithHome(home geo.Position) Option {
	return func(s *Service) {
		s.home = home
	}
}

// WithSimLatencyRange sets the simulated game API latency.
func WithSimLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.simMinLatency = minLatency
			s.simMaxLatency = maxLatency
		}
	}
}

// WithSimSeed seeds the simulated spawns; 0 picks a time-based seed.
func WithSimSeed(seed int64) Option {
	return func(s *Service) {
		s.simSeed = seed
	}
}
