package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/rosterquiz/internal/adapters/repository"
	"github.com/okian/rosterquiz/internal/adapters/terminal"
	service "github.com/okian/rosterquiz/internal/app"
	"github.com/okian/rosterquiz/internal/config"
	"github.com/okian/rosterquiz/internal/domain/model"
	"github.com/okian/rosterquiz/internal/domain/roster"
	"github.com/okian/rosterquiz/pkg/logger"
	"github.com/okian/rosterquiz/pkg/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// appEnv holds what the subcommands share once setup has run.
type appEnv struct {
	cfg     *config.Config
	catalog *roster.Catalog
	store   repository.Store
	log     logger.Logger
}

type flagValues struct {
	store       string
	catalog     string
	logLevel    string
	metricsFile string
	mode        string
	team        string
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var (
		fv flagValues
		rt appEnv
	)

	cmd := &cobra.Command{
		Use:           "rosterquiz",
		Short:         "Name every player on a team roster.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(cmd.Context(), cmd.Flags(), fv, errOut)
		},
		RunE: rt.closing(func(cmd *cobra.Command) error {
			return rt.play(cmd.Context(), fv, in, out)
		}),
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.StringVar(&fv.store, "store", "", "SQLite file for the rotation pool and daily state, empty for memory (env: ROSTERQUIZ_STORE_PATH)")
	fs.StringVar(&fv.catalog, "catalog", "", "YAML team catalog, empty for the bundled one (env: ROSTERQUIZ_CATALOG_PATH)")
	fs.StringVar(&fv.logLevel, "log-level", "", "debug, info, warn or error (env: ROSTERQUIZ_LOG_LEVEL)")
	fs.StringVar(&fv.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit (env: ROSTERQUIZ_METRICS_FILE)")

	cmd.Flags().StringVar(&fv.mode, "mode", "daily", "mode to start in: daily, gauntlet, free or reverse")
	cmd.Flags().StringVar(&fv.team, "team", "", "team for free mode")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "teams",
			Short: "List the catalog teams.",
			Args:  cobra.NoArgs,
			RunE: rt.closing(func(*cobra.Command) error {
				for _, t := range rt.catalog.TeamNames() {
					if _, err := fmt.Fprintln(out, t); err != nil {
						return err
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "daily",
			Short: "Print today's challenge team.",
			Args:  cobra.NoArgs,
			RunE: rt.closing(func(cmd *cobra.Command) error {
				ctrl, err := rt.controller(nil)
				if err != nil {
					return err
				}
				team, err := ctrl.DailyTeam(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, team)
				return err
			}),
		},
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	return cmd
}

// setup loads configuration, applies flag overrides and opens the catalog
// and store.
func (rt *appEnv) setup(ctx context.Context, fs *pflag.FlagSet, fv flagValues, errOut io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if fs.Changed("store") {
		cfg.StorePath = fv.store
	}
	if fs.Changed("catalog") {
		cfg.CatalogPath = fv.catalog
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = fv.logLevel
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = fv.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithMetricsEnabled(cfg.MetricsFile != ""),
	)

	// Logs go to stderr so the game owns stdout.
	if err := logger.Init(logger.WithWriter(errOut), logger.WithJSON(cfg.LogJSON)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	rt.log = logger.Get()
	rt.cfg = cfg

	if cfg.CatalogPath != "" {
		rt.catalog, err = roster.LoadFile(cfg.CatalogPath)
	} else {
		rt.catalog, err = roster.Default()
	}
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	if cfg.StorePath != "" {
		rt.store, err = repository.OpenSQLite(ctx, cfg.StorePath)
		if err != nil {
			return err
		}
	} else {
		rt.store = repository.NewMemoryStore()
	}

	rt.log.Debug(ctx, "ready",
		logger.Int("teams", rt.catalog.Len()),
		logger.Int("players", rt.catalog.PlayerCount()),
		logger.String("store", cfg.StorePath),
	)
	return nil
}

func (rt *appEnv) controller(p service.Presenter) (*service.Controller, error) {
	loc, err := rt.cfg.Location()
	if err != nil {
		return nil, err
	}
	boundary, err := rt.cfg.Boundary()
	if err != nil {
		return nil, err
	}
	return service.New(rt.catalog, rt.store,
		service.WithLogger(rt.log.Named("controller")),
		service.WithPresenter(p),
		service.WithDailyLocation(loc),
		service.WithDailyBoundary(boundary),
		service.WithDailyMaxMisses(rt.cfg.DailyMaxMisses),
		service.WithGauntletMaxMisses(rt.cfg.GauntletMaxMisses),
		service.WithReverseDeck(rt.cfg.ReverseDeckSize, rt.cfg.ReverseWinThreshold, rt.cfg.ReverseMaxMisses),
		service.WithSuggestionLimit(rt.cfg.SuggestionLimit),
	)
}

// play starts the requested mode and hands the terminal to the REPL.
func (rt *appEnv) play(ctx context.Context, fv flagValues, in io.Reader, out io.Writer) error {
	mode, err := model.ParseMode(fv.mode)
	if err != nil {
		return fmt.Errorf("--mode: %w", err)
	}
	ctrl, err := rt.controller(terminal.NewRenderer(out))
	if err != nil {
		return err
	}
	if _, err := ctrl.SelectMode(ctx, mode, service.ModeParams{Team: fv.team}); err != nil {
		_, _ = fmt.Fprintf(out, "Could not start %s: %v\n", mode, err)
	}
	if err := terminal.Run(ctx, ctrl, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// closing wraps a command body so the store is closed and metrics are
// written however the body ends.
func (rt *appEnv) closing(fn func(*cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		err := fn(cmd)
		return errors.Join(err, rt.close(cmd.Context()))
	}
}

func (rt *appEnv) close(ctx context.Context) error {
	var firstErr error
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			firstErr = err
		}
	}
	if rt.cfg != nil && rt.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(rt.cfg.MetricsFile); err != nil {
			rt.log.Error(ctx, "metrics not written", logger.String("path", rt.cfg.MetricsFile), logger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
