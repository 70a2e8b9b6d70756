package api

const (
	defaultHistory    = 20
	defaultMaxHistory = 100
)

type settings struct {
	defaultHistory int
	maxHistory     int
}

// Option applies a configuration option to the Server.
type Option func(*settings)

// WithHistoryLimits sets the page size used when ?limit is absent and the
// largest page a client may ask for.
func WithHistoryLimits(def, maxLimit int) Option {
	return func(s *settings) {
		if def > 0 {
			s.defaultHistory = def
		}
		if maxLimit > 0 {
			s.maxHistory = maxLimit
		}
		if s.defaultHistory > s.maxHistory {
			s.defaultHistory = s.maxHistory
		}
	}
}
