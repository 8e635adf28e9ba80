package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/app"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/config"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/logging"
	"github.com/Lezhaa/web-dashboard-suhu-ds18b20/internal/modules/temperature/service"
)

const appName = "suhu-server"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

const usage = `usage: suhu-server [flags] [serve|fetch|migrate]

commands:
  serve     run the HTTP server and the collection schedule (default)
  fetch     run one collection tick and exit
  migrate   apply pending database migrations and exit

flags:
`

type options struct {
	command     string
	showVersion bool
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	opts, err := parseArgs(os.Args[1:], &cfg, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println(version)
		return
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	logger.Info("starting",
		"version", version,
		"env", cfg.AppEnv,
		"command", opts.command,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, opts.command, cfg, logger)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, command string, cfg config.Config, logger *slog.Logger) int {
	switch command {
	case "serve":
		if err := app.Run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("run failed", "err", err)
			return 1
		}
		logger.Info("shutting down")
		return 0

	case "fetch":
		res, err := app.RunFetch(ctx, cfg, logger)
		if err != nil {
			logger.Error("fetch failed", "result", res.String(), "err", err)
		} else {
			logger.Info("fetch finished", "result", res.String())
		}
		return fetchExitCode(res)

	case "migrate":
		n, err := app.RunMigrate(ctx, cfg, logger)
		if err != nil {
			logger.Error("migrate failed", "err", err)
			return 1
		}
		logger.Info("migrations complete", "applied", n)
		return 0
	}

	logger.Error("unknown command", "command", command)
	return 2
}

func fetchExitCode(res service.TickResult) int {
	switch res {
	case service.TickStored, service.TickDuplicate, service.TickOffSchedule:
		return 0
	default:
		return 1
	}
}

// parseArgs applies command line overrides to cfg and returns the selected
// subcommand.
func parseArgs(args []string, cfg *config.Config, out io.Writer) (options, error) {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}

	var opts options
	httpAddr := fs.String("http-addr", cfg.HTTPAddr, "HTTP listen address (overrides HTTP_ADDR)")
	feedSource := fs.String("feed", cfg.FeedSource, "feed source: thingspeak or firebase (overrides FEED_SOURCE)")
	everyMinute := fs.Bool("every-minute", cfg.ScheduleEveryMinute, "fire the schedule every minute (development)")
	fs.BoolVar(&opts.showVersion, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch fs.NArg() {
	case 0:
		opts.command = "serve"
	case 1:
		opts.command = strings.ToLower(fs.Arg(0))
	default:
		return options{}, fmt.Errorf("expected at most one command, got %q", fs.Args())
	}
	switch opts.command {
	case "serve", "fetch", "migrate":
	default:
		return options{}, fmt.Errorf("unknown command %q (allowed: serve, fetch, migrate)", opts.command)
	}

	source := strings.ToLower(strings.TrimSpace(*feedSource))
	switch source {
	case "thingspeak", "firebase":
	default:
		return options{}, fmt.Errorf("invalid --feed %q (allowed: thingspeak, firebase)", *feedSource)
	}

	cfg.HTTPAddr = *httpAddr
	cfg.FeedSource = source
	cfg.ScheduleEveryMinute = *everyMinute
	return opts, nil
}
