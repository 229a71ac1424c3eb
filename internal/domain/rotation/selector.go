// Package rotation draws teams without replacement from a persisted pool,
// refilling the pool with every team once it runs dry.
package rotation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/okian/rosterquiz/internal/adapters/repository"
	"github.com/okian/rosterquiz/internal/domain/model"
	"github.com/okian/rosterquiz/internal/random"
	"github.com/okian/rosterquiz/pkg/logger"
	"github.com/okian/rosterquiz/pkg/metrics"
)

// Selector draws team names from a pool persisted in a Store.
type Selector struct {
	mu    sync.Mutex
	store repository.Store
	names func() []string

	key    string
	pool   string // metrics label
	rng    *rand.Rand
	logger logger.Logger
}

// New creates a Selector over store. names returns the full set of team
// names; it is consulted whenever the pool needs refilling or validating.
func New(store repository.Store, names func() []string, opts ...Option) *Selector {
	s := &Selector{
		store:  store,
		names:  names,
		key:    repository.KeyRotationPool,
		pool:   "default",
		logger: logger.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.rng = random.New()
	}
	return s
}

// Draw picks a team uniformly among those remaining in the pool, removes it
// and persists the pool. An empty pool is refilled with every team first, so
// the team drawn last in a cycle may be drawn again right after the refill.
func (s *Selector) Draw(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.names()
	if len(all) == 0 {
		return "", fmt.Errorf("%w: no teams to draw from", model.ErrConfiguration)
	}

	remaining, err := s.readLocked(ctx, all)
	if err != nil {
		return "", err
	}
	if len(remaining) == 0 {
		remaining = sortedCopy(all)
		metrics.RecordRotationReset(s.pool)
		s.logger.Debug(ctx, "rotation pool refilled", logger.String("pool", s.pool), logger.Int("teams", len(remaining)))
	}

	i := s.rng.Intn(len(remaining))
	picked := remaining[i]
	remaining = append(remaining[:i], remaining[i+1:]...)

	if err := s.writeLocked(ctx, remaining); err != nil {
		return "", err
	}

	metrics.RecordRotationDraw(s.pool)
	s.logger.Debug(ctx, "team drawn",
		logger.String("pool", s.pool),
		logger.String("team", picked),
		logger.Int("remaining", len(remaining)),
	)
	return picked, nil
}

// Reset fills the pool with every team.
func (s *Selector) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.names()
	if len(all) == 0 {
		return fmt.Errorf("%w: no teams to draw from", model.ErrConfiguration)
	}
	metrics.RecordRotationReset(s.pool)
	return s.writeLocked(ctx, sortedCopy(all))
}

// Remaining returns the teams not yet drawn in the current cycle, sorted.
// It does not refill an empty pool.
func (s *Selector) Remaining(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(ctx, s.names())
}

// readLocked loads the pool. Absent or unreadable pools read as empty and
// names no longer in the catalog are dropped.
func (s *Selector) readLocked(ctx context.Context, all []string) ([]string, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordErrorByComponent("rotation", "store_get")
		return nil, fmt.Errorf("read rotation pool: %w", err)
	}

	var stored []string
	if err := json.Unmarshal(raw, &stored); err != nil {
		metrics.RecordCorruptState(s.key)
		s.logger.Warn(ctx, "discarding unreadable rotation pool", logger.String("key", s.key), logger.Error(err))
		return nil, nil
	}

	known := make(map[string]struct{}, len(all))
	for _, n := range all {
		known[n] = struct{}{}
	}
	remaining := make([]string, 0, len(stored))
	for _, n := range stored {
		if _, ok := known[n]; !ok {
			continue
		}
		// drop duplicates so each team is drawn once per cycle
		delete(known, n)
		remaining = append(remaining, n)
	}
	sort.Strings(remaining)
	return remaining, nil
}

func (s *Selector) writeLocked(ctx context.Context, remaining []string) error {
	if remaining == nil {
		remaining = []string{}
	}
	raw, err := json.Marshal(remaining)
	if err != nil {
		return fmt.Errorf("encode rotation pool: %w", err)
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		metrics.RecordErrorByComponent("rotation", "store_set")
		return fmt.Errorf("write rotation pool: %w", err)
	}
	return nil
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
