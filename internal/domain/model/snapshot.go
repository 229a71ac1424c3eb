package model

// RunSnapshot is the aggregate state of a gauntlet or reverse run.
type RunSnapshot struct {
	Status    RunStatus
	Completed int // sessions won (gauntlet)
	Total     int // teams in the gauntlet, cards in the reverse deck
	Position  int // 1-based index of the current session within the run
	Correct   int // reverse only
	Misses    int // reverse only
	WinAt     int // reverse only
	MaxMisses int // reverse only
}

// Snapshot is the immutable state handed to presenters after every operation.
type Snapshot struct {
	Mode  Mode
	RunID string
	// Subject is the team being guessed, or the player whose team is
	// asked for in reverse mode.
	Subject string

	SessionStatus SessionStatus
	GuessedCount  int
	TotalCount    int
	MissCount     int
	MaxMisses     int // 0 means unbounded

	LastOutcome *Outcome
	Guessed     []Player
	Revealed    []Player

	Run *RunSnapshot
}

// HasSession reports whether a mode has been selected.
func (s Snapshot) HasSession() bool { return s.Mode != ModeNone }
