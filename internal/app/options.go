package service

import (
	"math/rand"
	"time"

	"github.com/okian/rosterquiz/internal/domain/daily"
	"github.com/okian/rosterquiz/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithLogger sets a custom logger for the controller and the components it
// builds.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source used for the daily challenge.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRand sets the random source for gauntlet order and reverse decks.
func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithPresenter sets the presenter every state change is rendered to.
func WithPresenter(p Presenter) Option {
	return func(c *Controller) {
		c.presenter = p
	}
}

// WithScheduler replaces the daily scheduler built from the store.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithDailyMaxMisses sets the miss limit of the daily challenge.
func WithDailyMaxMisses(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.dailyMaxMisses = n
		}
	}
}

// WithGauntletMaxMisses sets the miss limit of each gauntlet team.
func WithGauntletMaxMisses(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.gauntletMaxMisses = n
		}
	}
}

// WithReverseDeck sets the reverse run's deck size, the correct answers
// needed to win and the misses that fail it. Inconsistent values are ignored.
func WithReverseDeck(size, winAt, maxMisses int) Option {
	return func(c *Controller) {
		if size <= 0 || winAt <= 0 || winAt > size || maxMisses <= 0 {
			return
		}
		c.deck = deckConfig{size: size, winAt: winAt, maxMisses: maxMisses}
	}
}

// WithSuggestionLimit caps the number of suggestions returned. Zero or less
// returns every match.
func WithSuggestionLimit(n int) Option {
	return func(c *Controller) {
		c.suggestionLimit = n
	}
}

// WithDailyLocation sets the daily boundary timezone of the built-in scheduler.
func WithDailyLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.dailyOpts = append(c.dailyOpts, daily.WithLocation(loc))
		}
	}
}

// WithDailyBoundary sets the daily rotation time of the built-in scheduler.
func WithDailyBoundary(tod daily.TimeOfDay) Option {
	return func(c *Controller) {
		c.dailyOpts = append(c.dailyOpts, daily.WithBoundary(tod))
	}
}
