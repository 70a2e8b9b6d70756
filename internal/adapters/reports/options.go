package reports

import (
	"time"

	"github.com/okian/snipe/pkg/logger"
)

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithHorizon sets how long a report must still be valid to be kept.
func WithHorizon(horizon time.Duration) Option {
	return func(f *Fetcher) {
		if horizon >= 0 {
			f.horizon = horizon
		}
	}
}

// WithTimeout bounds dialing and reading the response.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the fetcher.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}
