package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/rategate/internal/config"
)

// newRootCmd builds the command from the environment. Flags default to the
// environment values, so a flag given on the command line wins.
func newRootCmd() *cobra.Command {
	cfg, loadErr := config.Load()

	cmd := &cobra.Command{
		Use:           "rategate",
		Short:         "Send HTTP calls through a sliding window rate gate",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if loadErr != nil {
				return loadErr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))

			return run(cmd.Context(), cfg, log, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.IntVarP(&cfg.Requests, "requests", "n", cfg.Requests, "Number of calls to send")
	f.StringVarP(&cfg.Method, "method", "X", cfg.Method, "HTTP method")
	f.StringVarP(&cfg.URL, "url", "u", cfg.URL, "Target URL")
	f.StringVarP(&cfg.Payload, "payload", "d", cfg.Payload, "JSON body sent with every call")
	f.IntVar(&cfg.Status, "status", cfg.Status, "Expected response status")
	f.IntVarP(&cfg.Limit, "limit", "l", cfg.Limit, "Calls admitted per window")
	f.DurationVarP(&cfg.Window, "window", "w", cfg.Window, "Length of the trailing window")
	f.DurationVar(&cfg.Poll, "poll", cfg.Poll, "Longest sleep between capacity checks")
	f.DurationVar(&cfg.MaxWait, "max-wait", cfg.MaxWait, "Give up on a call after waiting this long for capacity (0 waits forever)")
	f.IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "Calls in flight at once (0 is unlimited)")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per call HTTP timeout, including time spent waiting at the gate (0 is none)")
	f.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent header")
	f.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Record admission counters in this Redis")
	f.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "Key prefix for Redis counters")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	return cmd
}
