// Package daily picks the team of the day, rotating at most once per
// calendar day in a fixed timezone.
package daily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/rosterquiz/internal/adapters/repository"
	"github.com/okian/rosterquiz/pkg/logger"
	"github.com/okian/rosterquiz/pkg/metrics"
)

// DefaultTimezone is the reference timezone for the daily boundary.
const DefaultTimezone = "America/New_York"

// DefaultBoundary is the wall-clock time the daily team rotates.
var DefaultBoundary = TimeOfDay{Hour: 3}

// Drawer yields the next team when the day rotates.
type Drawer interface {
	Draw(ctx context.Context) (string, error)
}

// State is the persisted daily challenge.
type State struct {
	CurrentTeam  string    `json:"currentTeam"`
	LastRotation time.Time `json:"lastRotationInstant"`
}

// Scheduler gates a Drawer behind a daily boundary.
type Scheduler struct {
	mu     sync.Mutex
	store  repository.Store
	drawer Drawer

	key      string
	loc      *time.Location
	boundary TimeOfDay
	validate func(team string) bool
	logger   logger.Logger
}

// New creates a Scheduler persisting its state in store and rotating
// through drawer.
func New(store repository.Store, drawer Drawer, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		drawer:   drawer,
		key:      repository.KeyDailyChallengeState,
		boundary: DefaultBoundary,
		validate: func(string) bool { return true },
		logger:   logger.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.loc == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			s.logger.Warn(context.Background(), "reference timezone unavailable, using UTC",
				logger.String("timezone", DefaultTimezone), logger.Error(err))
			loc = time.UTC
		}
		s.loc = loc
	}
	return s
}

// Boundary returns the rotation time of day.
func (s *Scheduler) Boundary() TimeOfDay { return s.boundary }

// TodaysTeam returns the team for the challenge day containing now. The
// team rotates when there is no usable state, or when the last rotation
// happened before today's boundary and now is at or past it.
func (s *Scheduler) TodaysTeam(ctx context.Context, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok, err := s.readLocked(ctx)
	if err != nil {
		return "", err
	}

	boundary := BoundaryInstant(now, s.loc, s.boundary)
	rotate := !ok || (state.LastRotation.Before(boundary) && !now.Before(boundary))
	if !rotate {
		return state.CurrentTeam, nil
	}

	team, err := s.drawer.Draw(ctx)
	if err != nil {
		return "", fmt.Errorf("rotate daily team: %w", err)
	}

	next := State{CurrentTeam: team, LastRotation: now}
	if err := s.writeLocked(ctx, next); err != nil {
		return "", err
	}

	metrics.RecordDailyRotation()
	s.logger.Info(ctx, "daily team rotated",
		logger.String("team", team),
		logger.String("previous", state.CurrentTeam),
		logger.String("boundary", boundary.Format(time.RFC3339)),
	)
	return team, nil
}

// State returns the persisted state and whether it is usable.
func (s *Scheduler) State(ctx context.Context) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx)
}

// readLocked loads the state. Malformed state, an unknown team or a zero
// instant read as absent.
func (s *Scheduler) readLocked(ctx context.Context) (State, bool, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		return State{}, false, nil
	}
	if err != nil {
		metrics.RecordErrorByComponent("daily", "store_get")
		return State{}, false, fmt.Errorf("read daily state: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.discard(ctx, "unreadable", err)
		return State{}, false, nil
	}
	if st.CurrentTeam == "" || st.LastRotation.IsZero() {
		s.discard(ctx, "incomplete", nil)
		return State{}, false, nil
	}
	if !s.validate(st.CurrentTeam) {
		s.discard(ctx, "unknown team", nil)
		return State{}, false, nil
	}
	return st, true, nil
}

func (s *Scheduler) discard(ctx context.Context, reason string, err error) {
	metrics.RecordCorruptState(s.key)
	fields := []logger.Field{logger.String("key", s.key), logger.String("reason", reason)}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	s.logger.Warn(ctx, "discarding daily state", fields...)
}

func (s *Scheduler) writeLocked(ctx context.Context, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode daily state: %w", err)
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		metrics.RecordErrorByComponent("daily", "store_set")
		return fmt.Errorf("write daily state: %w", err)
	}
	return nil
}
