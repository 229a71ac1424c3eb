package rotation

import (
	"math/rand"

	"github.com/okian/rosterquiz/pkg/logger"
)

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithKey sets the store key the pool is persisted under.
func WithKey(key string) Option {
	return func(s *Selector) {
		if key != "" {
			s.key = key
		}
	}
}

// WithPoolName sets the label used for this pool in logs and metrics.
func WithPoolName(name string) Option {
	return func(s *Selector) {
		if name != "" {
			s.pool = name
		}
	}
}

// WithRand sets the random source. Tests pass a seeded source for
// reproducible draws.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}
