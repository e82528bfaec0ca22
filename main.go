package main

import (
	"context"
	"fmt"
	"io"
	mrand "math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/solvemind/internal/config"
	"github.com/robalobadob/solvemind/internal/daily"
	"github.com/robalobadob/solvemind/internal/game"
	"github.com/robalobadob/solvemind/internal/httpserver"
	"github.com/robalobadob/solvemind/internal/repl"
	"github.com/robalobadob/solvemind/internal/solver"
	"github.com/robalobadob/solvemind/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	root := &cobra.Command{
		Use:           "solvemind",
		Short:         "Mastermind code breaker: play against a secret or let the solver play",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(playCmd(&cfg), serveCmd(&cfg), solveCmd(&cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// shapeFlags binds --alphabet, --length and --workers with config defaults.
func shapeFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().IntVar(&cfg.Alphabet, "alphabet", cfg.Alphabet, "number of symbols (colors)")
	cmd.Flags().IntVar(&cfg.Length, "length", cfg.Length, "code length (pegs)")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "goroutines scoring guesses")
}

// newSolver builds the solver for cfg's shape, backed by the opening book
// when DB_PATH is set.
func newSolver(cfg *config.Config, opts ...solver.Option) (*solver.Solver, func(), error) {
	space, err := cfg.Space()
	if err != nil {
		return nil, nil, err
	}
	b, closeBook, err := openBook(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, solver.WithWorkers(cfg.Workers), solver.WithMemoryLimit(cfg.MemoryLimit))
	if b != nil {
		opts = append(opts, solver.WithCache(b))
	}
	sv, err := solver.New(space, opts...)
	if err != nil {
		closeBook()
		return nil, nil, err
	}
	return sv, closeBook, nil
}

func playCmd(cfg *config.Config) *cobra.Command {
	var (
		seed    uint64
		isDaily bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Guess a hidden code interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

			sv, closeBook, err := newSolver(cfg, solver.WithProgress(repl.NewProgress(os.Stderr).Update))
			if err != nil {
				return err
			}
			defer closeBook()

			switch {
			case isDaily:
				seed = daily.Today(cfg.DailySalt)
			case !cmd.Flags().Changed("seed"):
				seed = mrand.Uint64()
			}
			g := game.New(sv, seed)
			return repl.New(g, os.Stdin, os.Stdout).Run(cmd.Context())
		},
	}
	shapeFlags(cmd, cfg)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for the secret (random when unset)")
	cmd.Flags().BoolVar(&isDaily, "daily", false, "play today's shared secret")
	cmd.MarkFlagsMutuallyExclusive("seed", "daily")
	return cmd
}

func serveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP session API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			b, closeBook, err := openBook(cfg.DBPath)
			if err != nil {
				return err
			}
			defer closeBook()

			srv := httpserver.New(store.NewMemoryStore(store.WithTTL(cfg.TokenTTL)), httpserver.Options{
				JWTSecret:      cfg.JWTSecret,
				TokenTTL:       cfg.TokenTTL,
				RequestTimeout: cfg.RequestTimeout,
				AllowReveal:    cfg.AllowReveal,
				DailySalt:      cfg.DailySalt,
				Alphabet:       cfg.Alphabet,
				Length:         cfg.Length,
				Workers:        cfg.Workers,
				MemoryLimit:    cfg.MemoryLimit,
				Book:           b,
			})
			log.Info().Str("port", cfg.Port).Msg("starting solvemind server")
			return srv.Start(":" + cfg.Port)
		},
	}
}

func solveCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <secret>",
		Short: "Let the solver break a given secret, printing every turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

			sv, closeBook, err := newSolver(cfg)
			if err != nil {
				return err
			}
			defer closeBook()

			secret, err := sv.Space().Parse(args[0])
			if err != nil {
				return err
			}
			return autoPlay(cmd.Context(), game.NewWithSecret(sv, secret), cmd.OutOrStdout())
		},
	}
	shapeFlags(cmd, cfg)
	return cmd
}

// autoPlay submits the best guess until the secret is found.
func autoPlay(ctx context.Context, g *game.Game, out io.Writer) error {
	limit := g.Space().Population()
	for g.State() != game.StateWon {
		if g.Guesses() >= limit {
			return fmt.Errorf("no win after %d guesses", limit)
		}
		res, err := g.BestGuess(ctx)
		if err != nil {
			return err
		}
		f, err := g.Submit(res.Guess)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%2d. %v  %v", g.Guesses(), res.Guess, f)
		if g.State() != game.StateWon {
			fmt.Fprintf(out, "  (%d of %d left)", g.Remaining(), res.Remaining)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Solved %v in %d guesses\n", g.Reveal(), g.Guesses())
	return nil
}
