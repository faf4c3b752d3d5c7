package main

import (
	"context"
	"time"

	service "github.com/okian/loadmon/internal/app"
	"github.com/okian/loadmon/internal/config"
	"github.com/okian/loadmon/internal/synth"
	"github.com/okian/loadmon/pkg/logger"
	"github.com/okian/loadmon/pkg/metrics"
	"github.com/spf13/cobra"
)

// cli holds the state shared by the subcommands.
type cli struct {
	configPath string
	logLevel   string

	dataDir      string
	outDir       string
	snapshotDate string
	players      []string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "loadmon",
		Short:         "Athlete load and readiness monitoring",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $LOADMON_CONFIG)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(c.runCmd(), c.standupCmd(), c.exportCmd(), generateCmd())
	return root
}

// setup loads the config and applies flag overrides on top of it.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), c.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = c.dataDir
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = c.outDir
	}
	if flags.Changed("snapshot-date") {
		cfg.SnapshotDate = c.snapshotDate
	}
	if flags.Changed("player") {
		cfg.SnapshotPlayers = c.players
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// pipeline builds the service, processes the data directory and hands the
// result to fn. The metrics file is written whatever the outcome.
func (c *cli) pipeline(cmd *cobra.Command, fn func(context.Context, *service.Service, *service.Result) error) (err error) {
	if err := c.setup(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	if c.cfg.MetricsFile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(c.cfg.MetricsFile); werr != nil {
				logger.Get().Warn(ctx, "metrics file not written", logger.String("path", c.cfg.MetricsFile), logger.Error(werr))
			}
		}()
	}

	svc, err := service.New(c.cfg)
	if err != nil {
		return err
	}
	res, err := svc.Process(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, svc, res)
}

func (c *cli) dataFlags(cmd *cobra.Command, withOut, withSnapshot bool) {
	cmd.Flags().StringVar(&c.dataDir, "data-dir", "", "directory with players.csv, sessions.csv and wellness.csv")
	if withOut {
		cmd.Flags().StringVar(&c.outDir, "out-dir", "", "output directory")
	}
	if withSnapshot {
		cmd.Flags().StringVar(&c.snapshotDate, "snapshot-date", "", "report date YYYY-MM-DD (default latest)")
	}
}

func (c *cli) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline and write reports, snapshots and BI tables",
		Long: `Run loads the source tables, builds the flagged daily table and writes
daily.csv, the team report, player snapshots and the BI export.

Examples:
  loadmon run
  loadmon run --data-dir data --out-dir outputs --snapshot-date 2024-03-14
  loadmon run --player P001 --player P007`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.pipeline(cmd, func(ctx context.Context, svc *service.Service, res *service.Result) error {
				if _, err := svc.WriteReports(ctx, res); err != nil {
					return err
				}
				_, err := svc.Export(ctx, res)
				return err
			})
		},
	}
	c.dataFlags(cmd, true, true)
	cmd.Flags().StringArrayVar(&c.players, "player", nil, "snapshot player id (repeatable, default auto)")
	return cmd
}

func (c *cli) standupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standup",
		Short: "Print the daily standup summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.pipeline(cmd, func(ctx context.Context, svc *service.Service, res *service.Result) error {
				return svc.Standup(ctx, cmd.OutOrStdout(), res)
			})
		},
	}
	c.dataFlags(cmd, false, true)
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the BI tables only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.pipeline(cmd, func(ctx context.Context, svc *service.Service, res *service.Result) error {
				_, err := svc.Export(ctx, res)
				return err
			})
		},
	}
	c.dataFlags(cmd, true, false)
	return cmd
}

func generateCmd() *cobra.Command {
	gen := synth.DefaultConfig()
	var (
		out   string
		start string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic players, sessions and wellness CSVs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if start != "" {
				t, err := time.Parse(time.DateOnly, start)
				if err != nil {
					return err
				}
				gen.Start = t
			}
			tables, err := synth.Generate(gen)
			if err != nil {
				return err
			}
			paths, err := synth.Write(ctx, out, tables)
			if err != nil {
				return err
			}
			logger.Get().Info(ctx, "synthetic data written",
				logger.String("dir", out),
				logger.Int("files", len(paths)),
				logger.Int("sessions", len(tables.Sessions)),
				logger.Int("wellness", len(tables.Wellness)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "data", "output directory")
	cmd.Flags().IntVar(&gen.Players, "players", gen.Players, "number of players")
	cmd.Flags().IntVar(&gen.Days, "days", gen.Days, "number of days")
	cmd.Flags().Uint64Var(&gen.Seed, "seed", gen.Seed, "random seed")
	cmd.Flags().StringVar(&start, "start", "", "first date YYYY-MM-DD (default 2024-01-01)")
	return cmd
}
