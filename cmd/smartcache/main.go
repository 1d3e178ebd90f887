package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"smartcache/internal/cache"
)

// cacheName is the "cache" label on every exported series.
const cacheName = "smartcache"

type loadConfig struct {
	Workers  int
	Ops      int
	KeySpace int
	ReadPct  int
}

func (l *loadConfig) Validate() error {
	if l.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if l.Ops <= 0 {
		return fmt.Errorf("ops must be positive")
	}
	if l.KeySpace <= 0 {
		return fmt.Errorf("key space must be positive")
	}
	if l.ReadPct < 0 || l.ReadPct > 100 {
		return fmt.Errorf("read percentage must be within [0,100]")
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run owns every deferred cleanup; main only turns its result into an exit code.
func run(args []string) int {
	var (
		maxSize         int
		defaultTTL      time.Duration
		cleanupInterval time.Duration
		traceCapacity   int
		metricsAddr     string
		logLevel        string
		mode            string
		load            loadConfig
	)

	fs := flag.NewFlagSet("smartcache", flag.ContinueOnError)
	fs.IntVar(&maxSize, "max-size", 3, "Maximum number of cache entries")
	fs.DurationVar(&defaultTTL, "default-ttl", time.Minute, "TTL applied when a put omits one (0 = never expire)")
	fs.DurationVar(&cleanupInterval, "cleanup-interval", 100*time.Millisecond, "Expiry sweeper period")
	fs.IntVar(&traceCapacity, "trace-capacity", cache.DefaultTraceCapacity, "Operations kept in the trace log (0 disables)")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (empty disables)")
	fs.StringVar(&mode, "mode", "demo", "Run mode: demo, load")
	fs.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.IntVar(&load.Workers, "workers", 8, "Concurrent workers in load mode")
	fs.IntVar(&load.Ops, "ops", 10000, "Operations per worker in load mode")
	fs.IntVar(&load.KeySpace, "keys", 1000, "Distinct keys per worker in load mode")
	fs.IntVar(&load.ReadPct, "read-pct", 80, "Percentage of gets in load mode")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Setup logger
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(logLevel, level.InfoValue())))

	// Signal-aware context is the root of ownership for long-lived background work.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := cache.New[string](cache.Config{
		MaxSize:         maxSize,
		DefaultTTL:      defaultTTL,
		CleanupInterval: cleanupInterval,
		TraceCapacity:   traceCapacity,
		Logger:          log.With(logger, "component", "cache"),
	})
	if err != nil {
		level.Error(logger).Log("msg", "failed to create cache", "err", err)
		return 1
	}
	defer func() {
		// Close is idempotent; safe to call in defer.
		if err := c.Close(); err != nil {
			level.Error(logger).Log("msg", "cache close failed", "err", err)
		}
	}()

	c.AddEventListener(func(ev cache.Event[string]) {
		level.Debug(logger).Log("msg", "cache event", "event", ev.Kind, "key", ev.Key)
	})

	reg := newRegistry(c)

	var metricsServer *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: metricsAddr, Handler: mux}

		go func() {
			level.Info(logger).Log("msg", "starting metrics server", "addr", metricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				level.Error(logger).Log("msg", "metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				level.Error(logger).Log("msg", "metrics server shutdown failed", "err", err)
			}
		}()
	}

	level.Info(logger).Log(
		"msg", "smartcache starting",
		"mode", mode,
		"max_size", maxSize,
		"default_ttl", defaultTTL,
		"cleanup_interval", cleanupInterval,
	)

	switch mode {
	case "demo":
		err = runDemo(ctx, c, logger)
	case "load":
		if err = load.Validate(); err == nil {
			err = runLoad(ctx, c, load, logger)
		}
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	logStats(logger, c.Stats())
	if err != nil && !errors.Is(err, context.Canceled) {
		level.Error(logger).Log("msg", "run failed", "err", err)
		return 1
	}

	level.Info(logger).Log("msg", "shutdown complete")
	return 0
}

// runDemo walks through priority eviction and TTL expiry.
func runDemo(ctx context.Context, c *cache.Cache[string], logger log.Logger) error {
	// -------------------------------------------------------------------
	// 1) Priority eviction: the lowest priority entry goes first.
	// -------------------------------------------------------------------
	c.Put("user:1", "alice", 0, 1)
	c.Put("user:2", "bob", 0, 5)
	c.Put("config", "v1", 0, 10)

	// Touch user:1 so it is MRU; it is still evicted on priority.
	c.Get("user:1")
	level.Info(logger).Log("msg", "explain", "key", "user:1", "reason", c.ExplainEviction("user:1").Reason)

	c.Put("user:3", "carol", 0, 3)
	if !c.Contains("user:1") {
		level.Info(logger).Log("msg", "user:1 evicted (lowest priority)")
	}
	level.Info(logger).Log("msg", "keys after eviction (MRU->LRU)", "keys", fmt.Sprint(c.Keys()))

	// -------------------------------------------------------------------
	// 2) TTL expiration (shows background cleanup)
	// -------------------------------------------------------------------
	// We intentionally do NOT call Get() after it expires;
	// the sweeper should remove it during its periodic scan.
	c.Delete("user:3")
	c.Put("session", "short", 200*time.Millisecond, 8)

	wait := time.NewTimer(500 * time.Millisecond)
	defer wait.Stop()

	select {
	case <-ctx.Done():
		level.Info(logger).Log("msg", "received shutdown signal")
		return ctx.Err()
	case <-wait.C:
	}

	if _, ok := c.Get("session"); !ok {
		level.Info(logger).Log("msg", "session missing (expired and removed)")
	}

	for _, it := range c.Info().Items {
		level.Info(logger).Log(
			"msg", "entry",
			"key", it.Key,
			"priority", it.Priority,
			"ttl_remaining", it.TTLRemaining,
			"access_count", it.AccessCount,
		)
	}
	// -------------------------------------------------------------------
	// 3) Hot reload: shrinking capacity evicts by the same policy.
	// -------------------------------------------------------------------
	c.Put("user:4", "dave", 0, 2)
	level.Info(logger).Log("msg", "high priority keys", "count", len(c.ItemsAbove(5)))
	if err := c.Reconfigure(cache.Config{MaxSize: 1, DefaultTTL: time.Minute}); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "keys after shrinking to one entry", "keys", fmt.Sprint(c.Keys()))

	for _, op := range c.Trace() {
		level.Debug(logger).Log("msg", "trace", "op", op.Kind, "key", op.Key, "priority", op.Priority, "hit", op.Hit)
	}
	return nil
}

// runLoad drives the cache from concurrent workers with a mixed get/put workload.
func runLoad(ctx context.Context, c *cache.Cache[string], cfg loadConfig, logger log.Logger) error {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := range cfg.Workers {
		g.Go(func() error {
			//nolint:gosec // non-crypto randomness is fine for workload generation
			rng := rand.New(rand.NewPCG(uint64(w), uint64(start.UnixNano())))
			for i := range cfg.Ops {
				if i%1024 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				key := fmt.Sprintf("w%d:k%d", w, rng.IntN(cfg.KeySpace))
				if rng.IntN(100) < cfg.ReadPct {
					c.Get(key)
					continue
				}
				c.Put(key, key, 0, rng.IntN(cache.MaxPriority)+1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	total := cfg.Workers * cfg.Ops
	level.Info(logger).Log(
		"msg", "load finished",
		"workers", cfg.Workers,
		"ops", total,
		"elapsed", elapsed,
		"ops_per_sec", fmt.Sprintf("%.0f", float64(total)/elapsed.Seconds()),
	)
	return nil
}

func newRegistry(c *cache.Cache[string]) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	cache.NewMetrics(reg, cacheName, c)
	return reg
}

func logStats(logger log.Logger, s cache.Stats) {
	level.Info(logger).Log(
		"msg", "cache stats",
		"hits", s.Hits,
		"misses", s.Misses,
		"hit_rate", fmt.Sprintf("%.3f", s.HitRate),
		"evictions", s.Evictions,
		"insertions", s.Insertions,
		"size", s.Size,
		"capacity", s.Capacity,
	)
}
