package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mma-calendar/internal/calendar"
	"github.com/pfrederiksen/mma-calendar/internal/config"
	"github.com/pfrederiksen/mma-calendar/internal/logger"
	"github.com/pfrederiksen/mma-calendar/internal/pipeline"
	"github.com/pfrederiksen/mma-calendar/internal/reconcile"
	"github.com/pfrederiksen/mma-calendar/internal/scraper"
	"github.com/pfrederiksen/mma-calendar/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitPartial = 2 // some source or event failed
)

// retryInterval is the first backoff interval between fetch retries
const retryInterval = 500 * time.Millisecond

// ExitCodeError carries a non-zero exit code out of a command
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type rootOptions struct {
	configPath string
	dataDir    string
	format     string
	logLevel   string
	verbose    bool
}

// app is everything a command needs, built from the loaded config
type app struct {
	cfg      *config.Config
	scraper  *scraper.Scraper
	store    *calendar.ICSStore
	ids      *storage.Storage
	pipeline *pipeline.Pipeline
	format   OutputFormat
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mma-calendar",
		Short: "Load upcoming UFC and Bellator events into a calendar",
		Long: `A CLI tool that scrapes the public MMA schedule pages and keeps a calendar
in sync: new events are added, and known events get their fight card updated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Data directory (overrides config)")
	flags.StringVar(&opts.format, "format", "text", "Output format: text or json")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.BoolVar(&opts.verbose, "verbose", false, "Show dates and fights in text output")

	cmd.AddCommand(
		newSyncCmd(opts),
		newWatchCmd(opts),
		newCalendarsCmd(opts),
		newParseCmd(opts),
	)
	return cmd
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Scrape the schedules once and update the calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.syncOnce(cmd.Context(), cmd.OutOrStdout(), opts.verbose)
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync on the configured cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.watch(ctx, cmd.OutOrStdout(), opts.verbose, now)
		},
	}

	cmd.Flags().BoolVar(&now, "now", true, "Run a sync immediately before waiting for the schedule")
	return cmd
}

func newCalendarsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List configured calendars and the default used for new events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.build(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rows, err := a.calendarRows(cmd.Context())
			if err != nil {
				return err
			}
			return WriteCalendars(cmd.OutOrStdout(), rows, a.format)
		},
	}
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	var sortOrder string

	cmd := &cobra.Command{
		Use:   "parse <event-type>",
		Short: "Fetch and parse one schedule without touching the calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateEventType(args[0]); err != nil {
				return err
			}

			order := SortOrder(sortOrder)
			if order != SortByPage && order != SortByDate && order != SortByName {
				return fmt.Errorf("invalid sort: %s (must be 'page', 'date' or 'name')", sortOrder)
			}

			a, err := opts.build(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			res, err := a.scraper.FetchEvents(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sortEvents(res.Events, order)
			return WriteEvents(cmd.OutOrStdout(), res.Events, a.format)
		},
	}

	cmd.Flags().StringVar(&sortOrder, "sort", string(SortByPage), "Sort order: page, date or name")
	return cmd
}

// build loads config, applies flag overrides, and wires the components
func (o *rootOptions) build(logOutput io.Writer) (*app, error) {
	format, err := parseFormat(o.format)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(logger.New(level, logOutput))

	scraperOpts := []scraper.Option{
		scraper.WithBaseURL(cfg.ScheduleURL),
		scraper.WithTimeout(cfg.FetchTimeout),
		scraper.WithRetries(uint64(cfg.FetchRetries), retryInterval),
	}
	if cfg.UserAgent != "" {
		scraperOpts = append(scraperOpts, scraper.WithUserAgent(cfg.UserAgent))
	}
	sc := scraper.New(scraperOpts...)

	ids, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	sources, err := cfg.CalendarSources()
	if err != nil {
		return nil, err
	}
	store := calendar.NewICSStore(sources)

	rec, err := reconcile.New(store, ids)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded configuration", logger.Fields{
		"config":      o.configPath,
		"data_dir":    cfg.DataDir,
		"event_types": cfg.EventTypes,
		"calendars":   len(sources),
		"known":       ids.Len(),
	})

	return &app{
		cfg:      cfg,
		scraper:  sc,
		store:    store,
		ids:      ids,
		pipeline: pipeline.New(sc, store, rec),
		format:   format,
	}, nil
}

// syncOnce runs the pipeline and writes its report. A partial failure is
// reported through *ExitCodeError after the report is written.
func (a *app) syncOnce(ctx context.Context, out io.Writer, verbose bool) error {
	metrics := logger.DefaultMetrics()
	metrics.Reset()

	report, err := a.pipeline.Run(ctx, a.cfg.EventTypes)
	if err != nil {
		return err
	}

	if err := a.ids.Flush(); err != nil {
		logger.Warn("Event id map is still not written; ids are kept in memory", logger.Fields{
			"path":  a.ids.Path(),
			"error": err.Error(),
		})
	}

	if err := WriteReport(out, report, a.format, verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	logger.Info("Sync finished", metrics.GetSnapshot().Fields())

	if report.Failed() {
		return &ExitCodeError{Code: ExitPartial}
	}
	return nil
}

// watch runs syncOnce on the cron schedule until ctx is done.
// A run still in progress when the next one is due is not overlapped.
func (a *app) watch(ctx context.Context, out io.Writer, verbose, now bool) error {
	run := func() {
		if err := a.syncOnce(ctx, out, verbose); err != nil {
			var exitErr *ExitCodeError
			if !errors.As(err, &exitErr) {
				logger.Error("Sync failed", nil, err)
			}
		}
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(a.cfg.WatchSchedule, run); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", a.cfg.WatchSchedule, err)
	}

	if now {
		run()
	}

	c.Start()
	logger.Info("Watching schedules", logger.Fields{"schedule": a.cfg.WatchSchedule})

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Watch stopped", nil)
	return nil
}

func (a *app) calendarRows(ctx context.Context) ([]CalendarRow, error) {
	infos, err := a.store.Calendars(ctx)
	if err != nil {
		return nil, err
	}

	defaultID, err := reconcile.SelectDefault(infos)
	if err != nil && !errors.Is(err, reconcile.ErrNoCalendarAvailable) {
		return nil, err
	}
	hasDefault := err == nil

	sources, err := a.cfg.CalendarSources()
	if err != nil {
		return nil, err
	}

	rows := make([]CalendarRow, 0, len(infos))
	for i, info := range infos {
		events, err := a.store.Events(info.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, CalendarRow{
			CalendarInfo: info,
			Path:         sources[i].Path,
			Events:       len(events),
			Default:      hasDefault && info.ID == defaultID,
		})
	}
	return rows, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		var exitErr *ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
