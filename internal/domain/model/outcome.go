package model

// OutcomeKind classifies the result of a single guess.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeNone OutcomeKind = iota
	OutcomeEmptyInput
	OutcomeMiss
	OutcomeDuplicate
	OutcomeCorrect
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmptyInput:
		return "empty_input"
	case OutcomeMiss:
		return "miss"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeCorrect:
		return "correct"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// Outcome describes what a guess did to a session.
type Outcome struct {
	Kind  OutcomeKind
	Input string // trimmed guess text

	// Player is the matched target for Correct and Duplicate.
	Player *Player
	// Complete is set on the Correct outcome that wins the session.
	Complete bool
	// Revealed lists the targets left unguessed when the session failed,
	// in roster order.
	Revealed []Player
	// Misses is the session miss count after the guess.
	Misses int
}
