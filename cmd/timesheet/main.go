/*
main.go - Application entry point

PURPOSE:
  The hwtimesheet CLI. Every subcommand shares one startup sequence and one
  set of global flags.

STARTUP SEQUENCE (PersistentPreRunE):
  1. Load configuration (file, .env, TIMESHEET_* environment)
  2. Build the zap logger
  3. Open the SQLite store, which verifies and repairs the schema
  4. Build the timesheet service

  A failure in any step aborts the command with a non-zero exit. A schema
  that had to be rebuilt is logged as a warning: old shifts are gone.

COMMANDS:
  serve                        Run the HTTP API
  shift add|bulk|list|delete|clear
  pay period|current|analysis|project
  periods                      Print the pay period table
  demo list|load               Demo timesheets
  config init                  Write a default config file

GLOBAL FLAGS:
  --config   Config file (default: ./timesheet.yaml or ~/.config/hwtimesheet)
  --db       SQLite path, overrides database.path
  --tax      Tax rate percent, overrides payroll.tax_rate_percent

SEE ALSO:
  - config/config.go: Keys and environment variables
  - api/server.go: Routes served by `serve`
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amauryrb/hwtimesheet/config"
	"github.com/amauryrb/hwtimesheet/logging"
	"github.com/amauryrb/hwtimesheet/payroll"
	"github.com/amauryrb/hwtimesheet/store/sqlite"
	"github.com/amauryrb/hwtimesheet/timesheet"
)

// App holds the application dependencies.
type App struct {
	cfg     *config.Config
	params  payroll.Params
	store   *sqlite.Store
	service *timesheet.Service
	logger  *zap.Logger
	ctx     context.Context
}

// globalFlags are bound to the root command's persistent flags.
type globalFlags struct {
	configPath string
	dbPath     string
	taxRate    float64
}

// skipInit marks commands that run without a store.
const skipInit = "skip-init"

func main() {
	rootCmd, app := newRootCmd()
	if err := execute(rootCmd, app); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree, then closes the store and syncs the logger
// whether or not the command failed.
func execute(rootCmd *cobra.Command, app *App) error {
	defer app.close()
	return rootCmd.Execute()
}

func newRootCmd() (*cobra.Command, *App) {
	app := &App{}
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "timesheet",
		Short:         "hwtimesheet - personal timesheet and pay estimator",
		Long:          `Record work shifts, then see biweekly pay with weekly overtime, per diems, site bonuses and tax, plus monthly projections.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipInit] == "true" {
				return nil
			}
			return app.setup(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flags.taxRate, "tax", 0, "Tax rate percent, 10-25 (overrides config)")

	rootCmd.AddCommand(serveCmd(app))
	rootCmd.AddCommand(shiftCmd(app))
	rootCmd.AddCommand(payCmd(app))
	rootCmd.AddCommand(periodsCmd(app))
	rootCmd.AddCommand(demoCmd(app))
	rootCmd.AddCommand(configCmd())

	return rootCmd, app
}

// setup loads config, then builds the logger, store and service.
func (app *App) setup(cmd *cobra.Command, flags *globalFlags) error {
	var err error
	app.ctx = cmd.Context()
	if app.ctx == nil {
		app.ctx = context.Background()
	}

	app.cfg, err = config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flags.dbPath != "" {
		app.cfg.Database.Path = flags.dbPath
	}
	if cmd.Flags().Changed("tax") {
		app.cfg.Payroll.TaxRatePercent = flags.taxRate
		if err := app.cfg.Validate(); err != nil {
			return err
		}
	}
	app.params = app.cfg.Params()

	app.logger, err = logging.New(app.cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Debug("opening database", zap.String("path", app.cfg.Database.Path))
	app.store, err = sqlite.New(app.cfg.Database.Path, sqlite.WithLogger(app.logger))
	if err != nil {
		app.logger.Error("database schema check failed", zap.Error(err))
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	report := app.store.SchemaReport()
	if report.Rebuilt {
		app.logger.Warn("shifts table was missing columns and has been recreated; existing shifts were discarded",
			zap.Strings("missing_columns", report.MissingColumns))
	}

	app.service = timesheet.NewService(app.store, app.logger)
	return nil
}

func (app *App) close() {
	if app.store != nil {
		app.store.Close()
		app.store = nil
	}
	if app.logger != nil {
		app.logger.Sync()
		app.logger = nil
	}
}
