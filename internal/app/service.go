// Package service sequences guess sessions into the game modes and is the
// single entry point front ends drive.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/rosterquiz/internal/adapters/repository"
	"github.com/okian/rosterquiz/internal/domain/daily"
	"github.com/okian/rosterquiz/internal/domain/dedupe"
	"github.com/okian/rosterquiz/internal/domain/model"
	"github.com/okian/rosterquiz/internal/domain/roster"
	"github.com/okian/rosterquiz/internal/domain/rotation"
	"github.com/okian/rosterquiz/internal/domain/session"
	"github.com/okian/rosterquiz/internal/random"
	"github.com/okian/rosterquiz/pkg/logger"
	"github.com/okian/rosterquiz/pkg/metrics"
)

// Presenter receives a snapshot after every state change.
type Presenter interface {
	Render(model.Snapshot)
}

// Scheduler yields the daily challenge team.
type Scheduler interface {
	TodaysTeam(ctx context.Context, now time.Time) (string, error)
}

// ModeParams carries mode-specific arguments to SelectMode.
type ModeParams struct {
	Team string // Free mode only
}

type deckConfig struct {
	size      int
	winAt     int
	maxMisses int
}

// run is the aggregate of a gauntlet or reverse run.
type run struct {
	status    model.RunStatus
	total     int
	position  int
	completed int
	correct   int
	misses    int

	pool *rotation.Selector // gauntlet
	deck []model.Player     // reverse
}

// Controller owns the active mode, its current session and run aggregate.
// All methods are safe for concurrent use; each one is applied atomically.
type Controller struct {
	mu sync.Mutex

	// Core components
	catalog     *roster.Catalog
	store       repository.Store
	scheduler   Scheduler
	presenter   Presenter
	playerNames []string

	// Configuration
	dailyMaxMisses    int
	gauntletMaxMisses int
	deck              deckConfig
	suggestionLimit   int
	dailyOpts         []daily.Option
	now               func() time.Time
	rng               *rand.Rand

	// State
	mode    model.Mode
	runID   string
	subject string
	sess    *session.Session
	last    *model.Outcome
	run     *run

	logger logger.Logger
}

// New constructs a Controller over catalog. Unless WithScheduler is given,
// the daily challenge rotates through a pool persisted in store.
func New(catalog *roster.Catalog, store repository.Store, opts ...Option) (*Controller, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", model.ErrConfiguration)
	}

	c := &Controller{
		catalog:           catalog,
		store:             store,
		dailyMaxMisses:    3,
		gauntletMaxMisses: 3,
		deck:              deckConfig{size: 12, winAt: 10, maxMisses: 3},
		now:               time.Now,
		logger:            logger.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rng == nil {
		c.rng = random.New()
	}

	if c.scheduler == nil {
		if store == nil {
			return nil, fmt.Errorf("%w: store is required for the daily challenge", model.ErrConfiguration)
		}
		pool := rotation.New(store, catalog.TeamNames,
			rotation.WithPoolName("daily"),
			rotation.WithLogger(c.logger.Named("rotation")),
		)
		dailyOpts := append([]daily.Option{
			daily.WithTeamValidator(catalog.HasExact),
			daily.WithLogger(c.logger.Named("daily")),
		}, c.dailyOpts...)
		c.scheduler = daily.New(store, pool, dailyOpts...)
	}

	// Suggestions come from every player so they never give the roster away.
	seen := dedupe.New(dedupe.WithCapacity(catalog.PlayerCount()))
	for _, name := range catalog.PlayerNames() {
		if !seen.SeenAndRecord(name) {
			c.playerNames = append(c.playerNames, name)
		}
	}

	return c, nil
}

// SelectMode starts mode, discarding whatever was in progress. Failures
// leave the previous state untouched.
func (c *Controller) SelectMode(ctx context.Context, mode model.Mode, params ModeParams) (model.Snapshot, error) {
	c.mu.Lock()
	snap, err := c.selectLocked(ctx, mode, params)
	c.mu.Unlock()

	if err != nil {
		metrics.RecordErrorByComponent("controller", "select_mode")
		c.logger.Warn(ctx, "mode not started", logger.String("mode", mode.String()), logger.Error(err))
		return model.Snapshot{}, err
	}
	return c.emit(snap), nil
}

func (c *Controller) selectLocked(ctx context.Context, mode model.Mode, params ModeParams) (model.Snapshot, error) {
	var (
		subject string
		sess    *session.Session
		r       *run
	)

	switch mode {
	case model.ModeDaily:
		team, err := c.scheduler.TodaysTeam(ctx, c.now())
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("daily team: %w", err)
		}
		players, err := c.catalog.Roster(team)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("daily team: %w", err)
		}
		subject, sess = team, session.ForRoster(players, c.dailyMaxMisses)

	case model.ModeGauntlet:
		if c.catalog.Len() == 0 {
			return model.Snapshot{}, fmt.Errorf("%w: gauntlet needs at least one team", model.ErrConfiguration)
		}
		pool := rotation.New(repository.NewMemoryStore(), c.catalog.TeamNames,
			rotation.WithPoolName("gauntlet"),
			rotation.WithRand(c.rng),
			rotation.WithLogger(c.logger.Named("gauntlet")),
		)
		if err := pool.Reset(ctx); err != nil {
			return model.Snapshot{}, err
		}
		team, players, err := c.drawTeam(ctx, pool)
		if err != nil {
			return model.Snapshot{}, err
		}
		subject, sess = team, session.ForRoster(players, c.gauntletMaxMisses)
		r = &run{total: c.catalog.Len(), position: 1, pool: pool}

	case model.ModeFree:
		team, err := c.catalog.CanonicalName(params.Team)
		if err != nil {
			return model.Snapshot{}, err
		}
		players, err := c.catalog.Roster(team)
		if err != nil {
			return model.Snapshot{}, err
		}
		subject, sess = team, session.ForRoster(players, 0)

	case model.ModeReverse:
		all := c.catalog.AllPlayers()
		if len(all) < c.deck.size {
			return model.Snapshot{}, fmt.Errorf("%w: reverse needs %d players, catalog has %d",
				model.ErrConfiguration, c.deck.size, len(all))
		}
		deck := make([]model.Player, 0, c.deck.size)
		for _, i := range c.rng.Perm(len(all))[:c.deck.size] {
			deck = append(deck, all[i])
		}
		subject, sess = deck[0].Name, session.ForTeamOf(deck[0], 1)
		r = &run{total: len(deck), position: 1, deck: deck}

	default:
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrNoMode, mode)
	}

	if c.sess != nil && c.sess.Status() == model.StatusActive {
		c.logger.Debug(ctx, "abandoning session",
			logger.String("runID", c.runID),
			logger.String("mode", c.mode.String()),
		)
	}

	c.mode = mode
	c.runID = uuid.NewString()
	c.subject = subject
	c.sess = sess
	c.last = nil
	c.run = r

	metrics.RecordRunStarted(mode.String())
	metrics.SetActiveSessions(1)
	c.logger.Info(ctx, "mode started",
		logger.String("runID", c.runID),
		logger.String("mode", mode.String()),
		logger.String("subject", subject),
	)
	return c.snapshotLocked(), nil
}

// SubmitGuess applies one guess to the current session. Guesses with no
// session, or after it ended, are logged and ignored.
func (c *Controller) SubmitGuess(ctx context.Context, text string) (model.Snapshot, error) {
	c.mu.Lock()
	snap, err := c.guessLocked(ctx, text)
	c.mu.Unlock()

	if err != nil {
		return model.Snapshot{}, err
	}
	return c.emit(snap), nil
}

func (c *Controller) guessLocked(ctx context.Context, text string) (model.Snapshot, error) {
	if c.sess == nil {
		metrics.RecordErrorByComponent("controller", "no_session")
		c.logger.Warn(ctx, "guess ignored, no mode selected")
		return c.snapshotLocked(), nil
	}

	out, err := c.sess.Submit(text)
	if errors.Is(err, model.ErrSessionClosed) {
		metrics.RecordErrorByComponent("controller", "session_closed")
		c.logger.Warn(ctx, "guess ignored", logger.String("runID", c.runID), logger.Error(err))
		return c.snapshotLocked(), nil
	}
	if err != nil {
		return model.Snapshot{}, err
	}

	c.last = &out
	metrics.RecordGuess(c.mode.String(), out.Kind.String())
	c.logger.Debug(ctx, "guess",
		logger.String("runID", c.runID),
		logger.String("outcome", out.Kind.String()),
		logger.Int("misses", out.Misses),
	)

	if status := c.sess.Status(); status != model.StatusActive {
		c.sessionEndedLocked(ctx, status)
	}
	return c.snapshotLocked(), nil
}

func (c *Controller) sessionEndedLocked(ctx context.Context, status model.SessionStatus) {
	mode := c.mode.String()
	metrics.RecordSessionFinished(mode, status.String())
	metrics.SetActiveSessions(0)

	r := c.run
	if r == nil {
		metrics.RecordRunFinished(mode, status.String())
		c.logger.Info(ctx, "session finished",
			logger.String("runID", c.runID),
			logger.String("mode", mode),
			logger.String("status", status.String()),
		)
		return
	}

	switch c.mode {
	case model.ModeGauntlet:
		if status == model.StatusWon {
			r.completed++
		}
		if r.position >= r.total {
			r.status = model.RunComplete
		}
	case model.ModeReverse:
		if status == model.StatusWon {
			r.correct++
		} else {
			r.misses++
		}
		switch {
		case r.correct >= c.deck.winAt:
			r.status = model.RunWon
		case r.misses >= c.deck.maxMisses:
			r.status = model.RunFailed
		case r.position >= r.total:
			r.status = model.RunExhausted
		}
	}

	if r.status.Over() {
		metrics.RecordRunFinished(mode, r.status.String())
		c.logger.Info(ctx, "run finished",
			logger.String("runID", c.runID),
			logger.String("mode", mode),
			logger.String("status", r.status.String()),
			logger.Int("completed", r.completed),
			logger.Int("correct", r.correct),
		)
	}
}

// AdvanceToNext moves a gauntlet or reverse run to its next session once
// the current one has ended.
func (c *Controller) AdvanceToNext(ctx context.Context) (model.Snapshot, error) {
	c.mu.Lock()
	snap, err := c.advanceLocked(ctx)
	c.mu.Unlock()

	if err != nil {
		return model.Snapshot{}, err
	}
	return c.emit(snap), nil
}

func (c *Controller) advanceLocked(ctx context.Context) (model.Snapshot, error) {
	switch {
	case c.sess == nil:
		return model.Snapshot{}, ErrNoMode
	case c.run == nil:
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrAdvanceUnsupported, c.mode)
	case c.run.status.Over():
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrRunOver, c.run.status)
	case c.sess.Status() == model.StatusActive:
		return model.Snapshot{}, ErrSessionActive
	}

	r := c.run
	switch c.mode {
	case model.ModeGauntlet:
		team, players, err := c.drawTeam(ctx, r.pool)
		if err != nil {
			return model.Snapshot{}, err
		}
		c.subject, c.sess = team, session.ForRoster(players, c.gauntletMaxMisses)
	case model.ModeReverse:
		card := r.deck[r.position]
		c.subject, c.sess = card.Name, session.ForTeamOf(card, 1)
	}
	r.position++
	c.last = nil

	metrics.SetActiveSessions(1)
	c.logger.Debug(ctx, "advanced",
		logger.String("runID", c.runID),
		logger.Int("position", r.position),
		logger.Int("total", r.total),
	)
	return c.snapshotLocked(), nil
}

func (c *Controller) drawTeam(ctx context.Context, pool *rotation.Selector) (string, []model.Player, error) {
	team, err := pool.Draw(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("draw gauntlet team: %w", err)
	}
	players, err := c.catalog.Roster(team)
	if err != nil {
		return "", nil, err
	}
	return team, players, nil
}

// Suggestions returns candidate answers containing partial: team names in
// reverse mode, player names otherwise.
func (c *Controller) Suggestions(partial string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidates := c.playerNames
	if c.mode == model.ModeReverse {
		candidates = c.catalog.TeamNames()
	}
	return roster.Suggest(candidates, partial, c.suggestionLimit)
}

// Snapshot returns the current state without changing it.
func (c *Controller) Snapshot() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// DailyTeam returns today's challenge team, rotating it if due.
func (c *Controller) DailyTeam(ctx context.Context) (string, error) {
	return c.scheduler.TodaysTeam(ctx, c.now())
}

// TeamNames lists the catalog teams.
func (c *Controller) TeamNames() []string {
	return c.catalog.TeamNames()
}

func (c *Controller) emit(snap model.Snapshot) model.Snapshot {
	if c.presenter != nil {
		c.presenter.Render(snap)
	}
	return snap
}

func (c *Controller) snapshotLocked() model.Snapshot {
	snap := model.Snapshot{Mode: c.mode, RunID: c.runID, Subject: c.subject}
	if c.sess != nil {
		snap.SessionStatus = c.sess.Status()
		snap.GuessedCount = c.sess.GuessedCount()
		snap.TotalCount = c.sess.Total()
		snap.MissCount = c.sess.Misses()
		snap.MaxMisses = max(c.sess.MaxMisses(), 0)
		snap.Guessed = c.sess.Guessed()
		if snap.SessionStatus == model.StatusFailed {
			snap.Revealed = c.sess.Remaining()
		}
	}
	if c.last != nil {
		out := *c.last
		if out.Player != nil {
			p := *out.Player
			out.Player = &p
		}
		out.Revealed = append([]model.Player(nil), out.Revealed...)
		snap.LastOutcome = &out
	}
	if r := c.run; r != nil {
		rs := &model.RunSnapshot{
			Status:    r.status,
			Completed: r.completed,
			Total:     r.total,
			Position:  r.position,
		}
		if c.mode == model.ModeReverse {
			rs.Correct = r.correct
			rs.Misses = r.misses
			rs.WinAt = c.deck.winAt
			rs.MaxMisses = c.deck.maxMisses
		}
		snap.Run = rs
	}
	return snap
}
