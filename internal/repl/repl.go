// Package repl is the interactive terminal front end: one command or code
// per line, answers printed back.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/solvemind/internal/game"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	fitColor     = color.New(color.FgGreen)
	missColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

const helpText = `Enter a code (e.g. abcd) to have it scored, or a command:
  :best   best next guess and its worst-case remaining count
  :pos    list the codes consistent with the turns so far
  :turns  list the turns, most recent first
  :pop    undo the most recent turn
  :new    new secret, clear the turns
  :rev    reveal the secret
  :help   this text
  :q      quit (any command starting with :q, or :exit)`

// REPL drives one game from line-oriented input.
type REPL struct {
	game *game.Game
	in   *bufio.Scanner
	out  io.Writer
	seed func() uint64
}

type Option func(*REPL)

// WithSeeds sets the source of seeds for :new. Defaults to math/rand/v2.
func WithSeeds(fn func() uint64) Option {
	return func(r *REPL) { r.seed = fn }
}

func New(g *game.Game, in io.Reader, out io.Writer, opts ...Option) *REPL {
	r := &REPL{game: g, in: bufio.NewScanner(in), out: out, seed: mrand.Uint64}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads commands until :q or end of input. It returns ctx.Err() when
// the context ends, including during a :best scan.
func (r *REPL) Run(ctx context.Context) error {
	headerColor.Fprintf(r.out, "Solvemind: %v, letters a-%c\n", r.game.Space(), 'a'+r.game.Space().Alphabet()-1)
	dimColor.Fprintln(r.out, "Type :help for commands.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, "\n> ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.in.Err()
		}
		quit, err := r.exec(ctx, strings.TrimSpace(r.in.Text()))
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// exec runs one line. Only context errors are returned; everything else is
// reported to the user.
func (r *REPL) exec(ctx context.Context, line string) (quit bool, err error) {
	if strings.HasPrefix(line, ":q") || line == ":exit" {
		return true, nil
	}
	switch line {
	case "":
	case ":help":
		fmt.Fprintln(r.out, helpText)
	case ":rev":
		fmt.Fprintln(r.out, r.game.Reveal())
	case ":pos":
		n := 0
		for c := range r.game.Consistent() {
			n++
			fmt.Fprintf(r.out, "Code #%d: %v\n", n, c)
		}
		if n == 0 {
			errorColor.Fprintln(r.out, "No code fits the turns so far.")
		}
	case ":best":
		return false, r.best(ctx)
	case ":new":
		r.game.Reset(r.seed())
		fmt.Fprintln(r.out, "New secret, turns cleared.")
	case ":turns":
		turns := r.game.Turns()
		for i := len(turns) - 1; i >= 0; i-- {
			fmt.Fprintf(r.out, "%v %d, %d\n", turns[i].Guess, turns[i].Feedback.Fit, turns[i].Feedback.Misplaced)
		}
	case ":pop":
		t, err := r.game.Undo()
		if err != nil {
			errorColor.Fprintln(r.out, "Nothing to undo.")
			break
		}
		fmt.Fprintf(r.out, "Removed %v\n", t.Guess)
	default:
		if strings.HasPrefix(line, ":") {
			errorColor.Fprintf(r.out, "Unknown command %s, try :help\n", line)
			break
		}
		r.guess(line)
	}
	return false, nil
}

func (r *REPL) guess(text string) {
	_, f, err := r.game.SubmitText(text)
	if err != nil {
		errorColor.Fprintln(r.out, err)
		return
	}
	fmt.Fprintf(r.out, "%s %s\n",
		fitColor.Sprintf("Fit %d,", f.Fit),
		missColor.Sprintf("Misplaced %d", f.Misplaced))
	if r.game.State() == game.StateWon {
		successColor.Fprintf(r.out, "You've won! (%d guesses)\n", r.game.Guesses())
		return
	}
	dimColor.Fprintf(r.out, "%d codes remain\n", r.game.Remaining())
}

func (r *REPL) best(ctx context.Context) error {
	res, err := r.game.BestGuess(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		log.Debug().Err(err).Msg("best guess")
		errorColor.Fprintln(r.out, err)
		return nil
	}
	tag := ""
	if res.Candidate {
		tag = " (could be the secret)"
	}
	fmt.Fprintf(r.out, "%v%s\n", res.Guess, tag)
	dimColor.Fprintf(r.out, "worst case %d of %d codes remain\n", res.Score, res.Remaining)
	return nil
}
