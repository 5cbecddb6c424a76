package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/okian/thrive/internal/simulate"
	"github.com/okian/thrive/pkg/logger"
)

// Default configuration constants.
const (
	defaultUsers      = 200
	defaultDays       = 45
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultSettle     = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
	defaultSeed       = 42
)

func main() {
	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		_, _ = os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: stop already called
	}
}

func run(ctx context.Context, args []string, usage io.Writer) error {
	cfg, err := parseFlags(args, usage)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger.SetLevel(slog.LevelDebug)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	_, err = simulate.Run(ctx, cfg)
	return err
}

func parseFlags(args []string, usage io.Writer) (*simulate.Config, error) {
	cfg := &simulate.Config{}
	var start string

	fs := pflag.NewFlagSet("simulate", pflag.ContinueOnError)
	fs.SetOutput(usage)
	fs.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	fs.IntVar(&cfg.Users, "users", defaultUsers, "number of synthetic users")
	fs.IntVar(&cfg.Days, "days", defaultDays, "days simulated per user")
	fs.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "users submitted concurrently")
	fs.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	fs.DurationVar(&cfg.Settle, "settle", defaultSettle, "how long to wait for each profile to catch up")
	fs.Uint64Var(&cfg.Seed, "seed", defaultSeed, "seed for a reproducible plan")
	fs.StringVar(&start, "start", "", "first simulated day, YYYY-MM-DD (default: --days before today)")
	fs.Float64Var(&cfg.SkipRate, "skip-rate", 0.1, "chance a user skips a day")
	fs.Float64Var(&cfg.RelogRate, "relog-rate", 0.05, "chance a user logs the same day twice")
	fs.Float64Var(&cfg.DuplicateRate, "duplicate-rate", 0.05, "chance a check-in is resent with the same id")
	fs.IntVar(&cfg.CheckInXP, "checkin-xp", 0, "server checkin_xp (0 uses the default)")
	fs.IntVar(&cfg.HistoryWindow, "history-window", 0, "server history_window (0 uses the default)")
	fs.StringVarP(&cfg.OutputFile, "output", "o", "", "write the generated plan as JSON to this file")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every verified profile")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(usage, `Thrive check-in simulator

Submits synthetic daily check-ins for many users and verifies the served
profiles against a local replay of the same rules.

Usage:
  simulate [flags]

Flags:
%s`, fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if cfg.Users <= 0 || cfg.Days <= 0 {
		return nil, errors.New("--users and --days must be positive")
	}
	for name, rate := range map[string]float64{
		"skip-rate": cfg.SkipRate, "relog-rate": cfg.RelogRate, "duplicate-rate": cfg.DuplicateRate,
	} {
		if rate < 0 || rate > 1 {
			return nil, fmt.Errorf("--%s must be within [0, 1]", name)
		}
	}

	if start == "" {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		cfg.Start = today.AddDate(0, 0, -cfg.Days)
	} else {
		t, err := time.Parse(time.DateOnly, start)
		if err != nil {
			return nil, fmt.Errorf("invalid --start: %w", err)
		}
		cfg.Start = t
	}
	return cfg, nil
}
