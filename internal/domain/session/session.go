// Package session implements a single round of guessing against a set of
// targets.
package session

import (
	"fmt"
	"strings"

	"github.com/okian/rosterquiz/internal/domain/dedupe"
	"github.com/okian/rosterquiz/internal/domain/model"
)

// Target is one thing to be guessed. Answer is the text that matches it:
// the player name in roster modes, the team name in reverse mode.
type Target struct {
	Answer string
	Player model.Player
}

// Session tracks guesses, misses and status for one round. It is not safe
// for concurrent use.
type Session struct {
	targets   []Target
	index     map[string]int // normalized answer -> first target index
	guessed   dedupe.Deduper
	order     []int // target indexes in guess order
	misses    int
	maxMisses int
	status    model.SessionStatus
}

// New starts an active session. maxMisses <= 0 allows unlimited misses.
// Targets sharing an answer under normalization collapse to the first.
func New(targets []Target, maxMisses int) *Session {
	s := &Session{
		targets:   make([]Target, 0, len(targets)),
		index:     make(map[string]int, len(targets)),
		guessed:   dedupe.New(dedupe.WithCapacity(len(targets))),
		maxMisses: maxMisses,
		status:    model.StatusActive,
	}
	for _, t := range targets {
		key := dedupe.Normalize(t.Answer)
		if _, dup := s.index[key]; dup {
			continue
		}
		s.index[key] = len(s.targets)
		s.targets = append(s.targets, t)
	}
	return s
}

// ForRoster starts a session where every player is a target answered by
// their own name.
func ForRoster(players []model.Player, maxMisses int) *Session {
	targets := make([]Target, 0, len(players))
	for _, p := range players {
		targets = append(targets, Target{Answer: p.Name, Player: p})
	}
	return New(targets, maxMisses)
}

// ForTeamOf starts a single-target session answered by the player's team.
func ForTeamOf(player model.Player, maxMisses int) *Session {
	return New([]Target{{Answer: player.Team, Player: player}}, maxMisses)
}

// Submit applies one guess. Checks run in order: closed session, empty
// input, miss (possibly failing the session), duplicate, correct (possibly
// winning it).
func (s *Session) Submit(raw string) (model.Outcome, error) {
	if s.status != model.StatusActive {
		return model.Outcome{}, fmt.Errorf("%w: session is %s", model.ErrSessionClosed, s.status)
	}

	input := strings.TrimSpace(raw)
	key := dedupe.Normalize(input)
	if key == "" {
		return model.Outcome{Kind: model.OutcomeEmptyInput, Misses: s.misses}, nil
	}

	i, ok := s.index[key]
	if !ok {
		s.misses++
		if s.maxMisses > 0 && s.misses >= s.maxMisses {
			s.status = model.StatusFailed
			return model.Outcome{
				Kind:     model.OutcomeFailed,
				Input:    input,
				Revealed: s.Remaining(),
				Misses:   s.misses,
			}, nil
		}
		return model.Outcome{Kind: model.OutcomeMiss, Input: input, Misses: s.misses}, nil
	}

	player := s.targets[i].Player
	if s.guessed.SeenAndRecord(key) {
		return model.Outcome{Kind: model.OutcomeDuplicate, Input: input, Player: &player, Misses: s.misses}, nil
	}

	s.order = append(s.order, i)
	out := model.Outcome{Kind: model.OutcomeCorrect, Input: input, Player: &player, Misses: s.misses}
	if s.guessed.Size() == len(s.targets) {
		s.status = model.StatusWon
		out.Complete = true
	}
	return out, nil
}

// Status returns the session status.
func (s *Session) Status() model.SessionStatus { return s.status }

// Misses returns the number of misses so far.
func (s *Session) Misses() int { return s.misses }

// MaxMisses returns the miss limit, 0 or less meaning unlimited.
func (s *Session) MaxMisses() int { return s.maxMisses }

// GuessedCount returns the number of distinct targets guessed.
func (s *Session) GuessedCount() int { return len(s.order) }

// Total returns the number of targets.
func (s *Session) Total() int { return len(s.targets) }

// Guessed returns the guessed targets' players in guess order.
func (s *Session) Guessed() []model.Player {
	out := make([]model.Player, 0, len(s.order))
	for _, i := range s.order {
		out = append(out, s.targets[i].Player)
	}
	return out
}

// Remaining returns the unguessed targets' players in roster order.
func (s *Session) Remaining() []model.Player {
	out := make([]model.Player, 0, len(s.targets)-len(s.order))
	for _, t := range s.targets {
		if s.guessed.Seen(t.Answer) {
			continue
		}
		out = append(out, t.Player)
	}
	return out
}
