// Package cli implements the divelog command: a terminal view of a local
// SQLite logbook through the same dive list the API serves.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/pkordes/dive-logbook/internal/grouping"
	"github.com/pkordes/dive-logbook/internal/repo"
	"github.com/pkordes/dive-logbook/internal/service"
	"github.com/pkordes/dive-logbook/internal/units"
)

// DefaultDBPath is the logbook opened when --db is not given.
const DefaultDBPath = "~/.divelog.sqlite"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	dbPath    string
	units     string
	window    time.Duration
	autogroup bool
	logLevel  string
	noColor   bool

	log *slog.Logger
}

// New returns the divelog root command with every subcommand attached.
func New() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "divelog",
		Short:         "Browse and edit a dive logbook from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q", opts.logLevel)
			}
			opts.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if opts.noColor {
				color.NoColor = true
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.dbPath, "db", DefaultDBPath, "SQLite logbook file")
	f.StringVar(&opts.units, "units", "metric", "display units: metric or imperial")
	f.DurationVar(&opts.window, "window", grouping.DefaultWindow, "longest gap between dives of one trip")
	f.BoolVar(&opts.autogroup, "autogroup", true, "group unassigned dives into trips by time")
	f.StringVarP(&opts.logLevel, "log-level", "l", "warn", "log level: debug, info, warn, error")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	addList(cmd, opts)
	addTrips(cmd, opts)
	addShow(cmd, opts)
	addAdd(cmd, opts)
	return cmd
}

// open loads the logbook into a dive list service. The returned func closes
// the database.
func (o *rootOptions) open(ctx context.Context) (*service.DiveListService, func(), error) {
	u, err := units.Parse(o.units)
	if err != nil {
		return nil, nil, err
	}
	path, err := homedir.Expand(o.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve --db: %w", err)
	}

	db, err := repo.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	svc := service.NewDiveListService(repo.NewSQLiteDiveRepo(db), repo.NewSQLiteTripHintRepo(db), service.Options{
		Autogroup: o.autogroup,
		Window:    o.window,
		Units:     u,
		Logger:    o.log,
	})
	if err := svc.Load(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	o.log.Debug("logbook loaded", "path", path, "dives", len(svc.List()))
	return svc, closeDB, nil
}
