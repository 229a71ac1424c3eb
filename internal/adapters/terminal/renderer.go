// Package terminal drives the game from a line-oriented text stream.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/okian/rosterquiz/internal/domain/model"
)

// Renderer writes snapshots as plain text.
type Renderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes the outcome of the last action followed by a status line.
func (r *Renderer) Render(s model.Snapshot) {
	var b strings.Builder
	writeSnapshot(&b, s)

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.w, b.String())
}

func writeSnapshot(b *strings.Builder, s model.Snapshot) {
	if !s.HasSession() {
		b.WriteString("No game in progress. Type /help to see the modes.\n")
		return
	}

	if o := s.LastOutcome; o != nil {
		writeOutcome(b, s.Mode, o)
	}
	b.WriteString(statusLine(s))
	b.WriteByte('\n')

	switch s.SessionStatus {
	case model.StatusWon:
		if s.Mode != model.ModeReverse {
			b.WriteString("Roster complete!\n")
		}
	case model.StatusFailed:
		if o := s.LastOutcome; o == nil || o.Kind != model.OutcomeFailed {
			writeRevealed(b, s.Mode, s.Revealed)
		}
	}

	if s.Run != nil && s.SessionStatus != model.StatusActive {
		b.WriteString(runLine(s))
		b.WriteByte('\n')
	}
}

func writeOutcome(b *strings.Builder, mode model.Mode, o *model.Outcome) {
	switch o.Kind {
	case model.OutcomeEmptyInput:
		b.WriteString("Type a name to guess.\n")
	case model.OutcomeMiss:
		fmt.Fprintf(b, "x %s is not on the list.\n", o.Input)
	case model.OutcomeDuplicate:
		fmt.Fprintf(b, "= %s was already guessed.\n", o.Player.Name)
	case model.OutcomeCorrect:
		if mode == model.ModeReverse {
			fmt.Fprintf(b, "+ Correct, %s plays for %s.\n", o.Player.Name, o.Player.Team)
		} else {
			fmt.Fprintf(b, "+ %s\n", o.Player.Name)
		}
	case model.OutcomeFailed:
		fmt.Fprintf(b, "x %s is wrong.\n", o.Input)
		writeRevealed(b, mode, o.Revealed)
	}
}

func writeRevealed(b *strings.Builder, mode model.Mode, revealed []model.Player) {
	if len(revealed) == 0 {
		return
	}
	if mode == model.ModeReverse {
		p := revealed[0]
		fmt.Fprintf(b, "%s plays for %s.\n", p.Name, p.Team)
		return
	}
	names := make([]string, 0, len(revealed))
	for _, p := range revealed {
		names = append(names, p.Name)
	}
	fmt.Fprintf(b, "Out of misses. You missed: %s\n", strings.Join(names, ", "))
}

func statusLine(s model.Snapshot) string {
	misses := fmt.Sprintf("misses %d", s.MissCount)
	if s.MaxMisses > 0 {
		misses = fmt.Sprintf("misses %d/%d", s.MissCount, s.MaxMisses)
	}

	switch s.Mode {
	case model.ModeReverse:
		r := s.Run
		return fmt.Sprintf("[reverse %d/%d] Which team does %s play for?  correct %d/%d  misses %d/%d",
			r.Position, r.Total, s.Subject, r.Correct, r.WinAt, r.Misses, r.MaxMisses)
	case model.ModeGauntlet:
		return fmt.Sprintf("[gauntlet %d/%d] %s  %d/%d guessed  %s",
			s.Run.Position, s.Run.Total, s.Subject, s.GuessedCount, s.TotalCount, misses)
	default:
		return fmt.Sprintf("[%s] %s  %d/%d guessed  %s", s.Mode, s.Subject, s.GuessedCount, s.TotalCount, misses)
	}
}

func runLine(s model.Snapshot) string {
	r := s.Run
	switch r.Status {
	case model.RunActive:
		return "Type /next to continue."
	case model.RunComplete:
		return fmt.Sprintf("Gauntlet complete: %d of %d teams finished.", r.Completed, r.Total)
	case model.RunWon:
		return fmt.Sprintf("You win! %d correct.", r.Correct)
	case model.RunFailed:
		return fmt.Sprintf("Run over after %d misses, %d correct.", r.Misses, r.Correct)
	case model.RunExhausted:
		return fmt.Sprintf("Deck finished: %d correct, %d missed.", r.Correct, r.Misses)
	default:
		return ""
	}
}
