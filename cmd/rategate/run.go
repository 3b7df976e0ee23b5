package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adamwoolhether/rategate/batch"
	"github.com/adamwoolhether/rategate/client"
	"github.com/adamwoolhether/rategate/gate"
	"github.com/adamwoolhether/rategate/internal/config"
	"github.com/adamwoolhether/rategate/stats"
)

// ErrCallsFailed is returned when at least one call did not succeed.
var ErrCallsFailed = errors.New("calls failed")

// run sends cfg.Requests calls through a throttled client and writes a
// summary to out.
func run(ctx context.Context, cfg config.Config, log *slog.Logger, out io.Writer) error {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}

	mem := stats.NewMemoryStore()
	recorders := []stats.Recorder{mem}

	var redisStore *stats.RedisStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			return fmt.Errorf("redis stats ping: %w", err)
		}

		redisStore, err = stats.NewRedisStore(rdb, stats.WithPrefix(cfg.RedisPrefix))
		if err != nil {
			return fmt.Errorf("configuring redis stats: %w", err)
		}
		recorders = append(recorders, redisStore)
	}

	c, err := client.Build(
		client.WithLogger(log),
		client.WithTimeout(cfg.Timeout),
		client.WithUserAgent(cfg.UserAgent),
		client.WithRequestID(),
		client.WithThrottle(cfg.Limit, cfg.Window,
			gate.WithPollInterval(cfg.Poll),
			gate.WithMaxWait(cfg.MaxWait),
			gate.WithRecorder(stats.Multi(recorders...)),
		),
	)
	if err != nil {
		return fmt.Errorf("building client: %w", err)
	}

	var reqOpts []client.RequestOption
	if cfg.Payload != "" {
		reqOpts = append(reqOpts, client.WithPayload(json.RawMessage(cfg.Payload)))
	}

	log.Info("starting calls", "requests", cfg.Requests, "method", cfg.Method, "url", target.Redacted(),
		"limit", cfg.Limit, "window", cfg.Window.String(), "concurrency", cfg.Concurrency)

	var succeeded, failed atomic.Int64
	start := time.Now()

	q := batch.NewQueue(cfg.Concurrency)
	for i := range cfg.Requests {
		call := i + 1
		q.Start(ctx, func(ctx context.Context) error {
			callStart := time.Now()

			req, err := client.Request(ctx, target, cfg.Method, reqOpts...)
			if err != nil {
				failed.Add(1)
				return fmt.Errorf("call %d: %w", call, err)
			}

			if err := c.Do(req, cfg.Status); err != nil {
				failed.Add(1)
				log.Warn("call failed", "call", call, "took", time.Since(callStart).String(), "error", err)
				return fmt.Errorf("call %d: %w", call, err)
			}

			succeeded.Add(1)
			log.Info("call complete", "call", call, "took", time.Since(callStart).String())
			return nil
		})
	}

	waitErr := q.Wait()
	elapsed := time.Since(start)

	totals := mem.Total()
	st := c.Gate().Stats()

	fmt.Fprintf(out, "calls: %d succeeded: %d failed: %d elapsed: %s\n",
		cfg.Requests, succeeded.Load(), failed.Load(), elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "gate: granted: %d delayed: %d canceled: %d completed: %d failed: %d waited: %s\n",
		totals.Granted, totals.Delayed, totals.Canceled, totals.Completed, totals.Failed, mem.Waited().Round(time.Millisecond))
	fmt.Fprintf(out, "window: %d of %d slots in use\n", st.Used, st.Limit)

	if redisStore != nil {
		rt, err := redisStore.Totals(context.WithoutCancel(ctx))
		if err != nil {
			log.Warn("reading redis totals", "error", err)
		} else {
			log.Info("redis totals", "admitted", rt.Admitted(), "completed", rt.Completed, "failed", rt.Failed)
		}
	}

	if waitErr != nil {
		log.Debug("call errors", "error", waitErr)
		return fmt.Errorf("%d of %d %w", failed.Load(), cfg.Requests, ErrCallsFailed)
	}

	return nil
}
