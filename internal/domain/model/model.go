// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Player is a single roster entry.
type Player struct {
	Name     string // unique within a team under case folding
	Portrait string // opaque portrait reference, rendered by the presenter
	Team     string // back-reference to the owning team
}

// Team is a named, ordered roster. Roster order is display order.
type Team struct {
	Name   string
	Roster []Player
}

// Mode selects the sequencing policy the controller applies to sessions.
type Mode int

// Game modes.
const (
	ModeNone Mode = iota
	ModeDaily
	ModeGauntlet
	ModeFree
	ModeReverse
)

var modeNames = map[Mode]string{
	ModeNone:     "none",
	ModeDaily:    "daily",
	ModeGauntlet: "gauntlet",
	ModeFree:     "free",
	ModeReverse:  "reverse",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a mode name (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if m != ModeNone && name == key {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("%w: mode %q", ErrNotFound, s)
}

// SessionStatus is the lifecycle state of a single guess session.
type SessionStatus int

// Session states.
const (
	StatusActive SessionStatus = iota
	StatusWon
	StatusFailed
)

func (s SessionStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusWon:
		return "won"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// RunStatus is the lifecycle state of a multi-session run.
type RunStatus int

// Run states. Complete ends a gauntlet that went through every team;
// Exhausted ends a reverse run that used its whole deck without a verdict.
const (
	RunActive RunStatus = iota
	RunWon
	RunFailed
	RunComplete
	RunExhausted
)

func (s RunStatus) String() string {
	switch s {
	case RunActive:
		return "active"
	case RunWon:
		return "won"
	case RunFailed:
		return "failed"
	case RunComplete:
		return "complete"
	case RunExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("run(%d)", int(s))
	}
}

// Over reports whether the run accepts no further sessions.
func (s RunStatus) Over() bool { return s != RunActive }
