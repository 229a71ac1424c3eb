package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	service "github.com/okian/rosterquiz/internal/app"
	"github.com/okian/rosterquiz/internal/domain/model"
)

// Game is the set of operations the REPL drives.
type Game interface {
	SelectMode(ctx context.Context, mode model.Mode, params service.ModeParams) (model.Snapshot, error)
	SubmitGuess(ctx context.Context, text string) (model.Snapshot, error)
	Suggestions(partial string) []string
	AdvanceToNext(ctx context.Context) (model.Snapshot, error)
	Snapshot() model.Snapshot
	TeamNames() []string
}

const prompt = "> "

// maxLineBytes bounds one input line. Longer lines are read to the end and
// dropped.
const maxLineBytes = 4 << 10

var errLineTooLong = fmt.Errorf("line longer than %d bytes ignored", maxLineBytes)

const helpText = `Commands:
  /daily          today's team
  /gauntlet       every team once, /next between teams
  /free <team>    any team, no miss limit
  /reverse        name the team of each player
  /next           continue a gauntlet or reverse run
  /hint <text>    names containing text
  /teams          list teams
  /status         show the current round
  /quit           leave
Anything else is a guess.
`

// Run reads lines from in until EOF, /quit or ctx is done. Snapshots are
// rendered by the game's presenter; Run writes prompts, hints and errors
// to out.
func Run(ctx context.Context, game Game, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = io.WriteString(out, prompt)
		line, err := readLine(r)
		if errors.Is(err, errLineTooLong) {
			fmt.Fprintf(out, "! %s\n", err)
			continue
		}
		if err != nil {
			_, _ = io.WriteString(out, "\n")
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		quit, err := handle(ctx, game, line, out)
		if err != nil {
			fmt.Fprintf(out, "! %s\n", describe(err))
		}
		if quit {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. A line over
// maxLineBytes is consumed whole and reported as errLineTooLong.
func readLine(r *bufio.Reader) (string, error) {
	var (
		buf      []byte
		overflow bool
		started  bool
	)
	for {
		chunk, more, err := r.ReadLine()
		if err != nil {
			if started && errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		started = true
		if !overflow && len(buf)+len(chunk) <= maxLineBytes {
			buf = append(buf, chunk...)
		} else {
			overflow, buf = true, nil
		}
		if !more {
			break
		}
	}
	if overflow {
		return "", errLineTooLong
	}
	return string(buf), nil
}

func handle(ctx context.Context, game Game, line string, out io.Writer) (bool, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		_, err := game.SubmitGuess(ctx, line)
		return false, err
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "/daily":
		_, err = game.SelectMode(ctx, model.ModeDaily, service.ModeParams{})
	case "/gauntlet":
		_, err = game.SelectMode(ctx, model.ModeGauntlet, service.ModeParams{})
	case "/reverse":
		_, err = game.SelectMode(ctx, model.ModeReverse, service.ModeParams{})
	case "/free":
		if arg == "" {
			_, _ = io.WriteString(out, "usage: /free <team>\n")
			return false, nil
		}
		_, err = game.SelectMode(ctx, model.ModeFree, service.ModeParams{Team: arg})
	case "/next":
		_, err = game.AdvanceToNext(ctx)
	case "/hint":
		hints := game.Suggestions(arg)
		if len(hints) == 0 {
			_, _ = io.WriteString(out, "no matches\n")
		} else {
			fmt.Fprintln(out, strings.Join(hints, ", "))
		}
	case "/teams":
		for _, t := range game.TeamNames() {
			fmt.Fprintln(out, t)
		}
	case "/status":
		NewRenderer(out).Render(game.Snapshot())
	case "/help":
		_, _ = io.WriteString(out, helpText)
	case "/quit", "/exit":
		return true, nil
	default:
		fmt.Fprintf(out, "unknown command %s, try /help\n", cmd)
	}
	return false, err
}

func describe(err error) string {
	switch {
	case errors.Is(err, service.ErrSessionActive):
		return "finish this round first"
	case errors.Is(err, service.ErrRunOver):
		return "this run is over, pick a mode to play again"
	case errors.Is(err, service.ErrAdvanceUnsupported):
		return "/next only works in gauntlet and reverse runs"
	case errors.Is(err, service.ErrNoMode):
		return "pick a mode first, see /help"
	case errors.Is(err, model.ErrNotFound):
		return "no such team, see /teams"
	case errors.Is(err, model.ErrConfiguration):
		return "the catalog cannot support this mode: " + err.Error()
	default:
		return err.Error()
	}
}
