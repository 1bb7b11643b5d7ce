package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"medcal/internal/calendar"
	"medcal/internal/capture"
	"medcal/internal/config"
	"medcal/internal/ics"
	appLog "medcal/internal/log"
	"medcal/internal/schedule"
	"medcal/internal/store"
	"medcal/internal/term"
	"medcal/internal/view"
	"medcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	month      string
	date       string
	dumpICS    string
}

func main() {
	flags := parseFlags()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		appLog.Error("failed to load .env", err)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err := conf.ApplyEnv(); err != nil {
		appLog.Error("failed to apply env overrides", err)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"locale", conf.Locale,
		"rollover", conf.Rollover,
		"snapshot_cron", conf.Snapshot.Cron,
		"metrics", conf.Metrics,
		"once", flags.once,
	)

	// The sample schedule is generated once, relative to startup.
	loc := conf.Location()
	events := store.Sample(time.Now(), loc)
	appLog.Info("sample schedule generated", "events", events.Len())

	if flags.dumpICS != "" {
		if err := dumpICS(flags.dumpICS, events, conf); err != nil {
			appLog.Error("ics dump failed", err, "path", flags.dumpICS)
			os.Exit(1)
		}
		appLog.Info("ics dump written", "path", flags.dumpICS)
		if !flags.once {
			return
		}
	}

	if flags.once {
		if err := printOnce(flags, conf, events); err != nil {
			appLog.Error("render failed", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	srv := web.NewServer(conf, events)

	sched := schedule.New(ctx, loc)
	if err := sched.Add("rollover", conf.Rollover, srv.Rollover); err != nil {
		appLog.Error("failed to schedule rollover", err)
		os.Exit(1)
	}
	if err := sched.Add("snapshot", conf.Snapshot.Cron, snapshotJob(conf)); err != nil {
		appLog.Error("failed to schedule snapshot", err)
		os.Exit(1)
	}
	go sched.Run(ctx)

	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	appLog.Info("medcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/medcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Print the calendar to the terminal and exit")
	flag.StringVar(&cfg.month, "month", "", "Month to print with -once (YYYY-MM)")
	flag.StringVar(&cfg.date, "date", "", "Day to select with -once (YYYY-MM-DD)")
	flag.StringVar(&cfg.dumpICS, "dump-ics", "", "Write the schedule as an .ics file and exit")

	flag.Parse()

	return cfg
}

// printOnce renders a single frame to stdout, applying -date then -month the
// same way the view API does.
func printOnce(flags flagConfig, conf *config.Config, events *store.Store) error {
	cal := calendar.New(conf.Location(), conf.FirstWeekday())
	now := time.Now()
	st := view.NewState(cal, now)

	if flags.date != "" {
		d, err := view.ParseDate(cal, flags.date)
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", flags.date, err)
		}
		st = view.Reduce(cal, st, view.SelectDate{Date: d})
	}
	if flags.month != "" {
		m, err := view.ParseMonth(cal, flags.month)
		if err != nil {
			return fmt.Errorf("invalid -month %q: %w", flags.month, err)
		}
		st.CurrentMonth = m
		st = view.Reconcile(cal, st)
	}

	r := view.Renderer{Calendar: cal, Events: events, Locale: view.LookupLocale(conf.Locale)}
	return term.Print(os.Stdout, r.Render(st, now))
}

func dumpICS(path string, events *store.Store, conf *config.Config) error {
	body, err := ics.Encode(events.All(), ics.ExportOptions{
		Name:     view.LookupLocale(conf.Locale).Title,
		Location: conf.Location(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o644)
}

// snapshotJob captures the served /calendar page to conf.Snapshot.Output.
func snapshotJob(conf *config.Config) schedule.Job {
	url := conf.Snapshot.URL
	if url == "" {
		url = "http://" + conf.Listen + "/calendar"
	}
	return func(ctx context.Context) error {
		opts := capture.Options{
			URL:        url,
			OutputPath: conf.Snapshot.Output,
			Width:      conf.Snapshot.Width,
			Height:     conf.Snapshot.Height,
		}
		if conf.BasicAuth != nil && conf.Snapshot.URL == "" {
			// Chromium cannot answer the auth prompt.
			return errors.New("snapshot: basic auth is enabled; set snapshot.url with credentials")
		}
		if err := capture.CalendarPNG(ctx, opts); err != nil {
			return err
		}
		appLog.Info("snapshot written", "path", opts.OutputPath)
		return nil
	}
}
