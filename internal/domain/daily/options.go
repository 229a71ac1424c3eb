package daily

import (
	"time"

	"github.com/okian/rosterquiz/pkg/logger"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the reference timezone. The default is America/New_York.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithBoundary sets the rotation time of day. Invalid values are ignored.
func WithBoundary(tod TimeOfDay) Option {
	return func(s *Scheduler) {
		if tod.Valid() {
			s.boundary = tod
		}
	}
}

// WithKey sets the store key.
func WithKey(key string) Option {
	return func(s *Scheduler) {
		if key != "" {
			s.key = key
		}
	}
}

// WithTeamValidator rejects persisted teams that are not catalog keys.
func WithTeamValidator(valid func(team string) bool) Option {
	return func(s *Scheduler) {
		if valid != nil {
			s.validate = valid
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
