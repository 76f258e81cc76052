// Command lrubench runs a synthetic Zipf workload against a cache.Sync buffer
// and exposes its Prometheus metrics. It is configured through LRUBENCH_*
// environment variables (see Config).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/lrubuffer/cache"
	"github.com/IvanBrykalov/lrubuffer/hooks/redisstore"
	pmet "github.com/IvanBrykalov/lrubuffer/metrics/prom"
)

func main() {
	cfg, err := loadConfig(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := cfg.logger(os.Stderr)
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, log, os.Stdout); err != nil {
		log.Error("lrubench failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// report holds the workload totals.
type report struct {
	ops, reads, writes, hits, misses atomic.Uint64
}

func run(ctx context.Context, cfg Config, log *slog.Logger, out io.Writer) error {
	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "lru", "bench", nil)

	opt := cache.Options[string, string]{
		Capacity: cfg.Capacity,
		Metrics:  metrics,
		Logger:   log,
	}
	if cfg.Redis {
		client, err := redisstore.Connect(ctx, cfg.redisConfig())
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		opt.Hooks = redisstore.New[string](client, redisstore.Options[string]{
			Prefix:         cfg.RedisPrefix,
			WriteBack:      true,
			TTL:            2 * cfg.Duration,
			DeleteOnRemove: true,
			Codec:          redisstore.StringCodec{},
			Logger:         log,
		})
		log.Info("redis tier enabled", slog.String("prefix", cfg.RedisPrefix))
	}

	c, err := cache.NewSync(opt)
	if err != nil {
		return err
	}

	if cfg.HTTPAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Info("metrics: serving", slog.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	for i := 0; i < cfg.Preload; i++ {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}
	log.Debug("preloaded", slog.Int("entries", c.Len()))

	var rep report
	start := time.Now()
	if err := workload(ctx, cfg, c, &rep); err != nil {
		return err
	}
	elapsed := time.Since(start)

	hitRate := 0.0
	if reads := rep.reads.Load(); reads > 0 {
		hitRate = float64(rep.hits.Load()) / float64(reads) * 100
	}
	st := c.Stats()

	fmt.Fprintf(out, "cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Capacity, cfg.Workers, cfg.Keys, elapsed.Round(time.Millisecond), cfg.Seed)
	fmt.Fprintf(out, "ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		rep.ops.Load(), float64(rep.ops.Load())/elapsed.Seconds(), rep.reads.Load(), rep.writes.Load())
	fmt.Fprintf(out, "hits=%d  misses=%d  hit-rate=%.2f%%\n", rep.hits.Load(), rep.misses.Load(), hitRate)
	fmt.Fprintf(out, "puts=%d  removals=%d  creates=%d  len=%d\n", st.Puts, st.Removals, st.Creates, st.Len)
	fmt.Fprintln(out, c.String())
	return nil
}

// workload runs cfg.Workers goroutines until cfg.Duration elapses.
func workload(ctx context.Context, cfg Config, c *cache.Sync[string, string], rep *report) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			// rand.Rand is not goroutine-safe: one RNG + Zipf per worker.
			r := rand.New(rand.NewSource(cfg.Seed + int64(w)*9973))
			zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, cfg.Keys-1)

			for ctx.Err() == nil {
				k := "k:" + strconv.FormatUint(zipf.Uint64(), 10)
				rep.ops.Add(1)
				if r.Intn(100) < cfg.ReadPct {
					rep.reads.Add(1)
					if _, ok := c.Get(k); ok {
						rep.hits.Add(1)
					} else {
						rep.misses.Add(1)
					}
					continue
				}
				rep.writes.Add(1)
				c.Put(k, "v"+strconv.Itoa(r.Int()))
			}
			return nil
		})
	}
	return g.Wait()
}
