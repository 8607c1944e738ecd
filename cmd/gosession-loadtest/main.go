package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var routes = []struct {
	path string
	req  goSession.Requirement
}{
	{"/", goSession.Public()},
	{"/products", goSession.Public()},
	{"/cart", goSession.Authenticated()},
	{"/checkout", goSession.Authenticated()},
	{"/orders", goSession.Authenticated()},
	{"/admin", goSession.RequireRole("ADMIN")},
	{"/admin/products", goSession.RequireRole("ADMIN")},
}

func main() {
	_ = godotenv.Load()

	var (
		backend     = flag.String("backend", "redis", "session backend: memory, redis or sqlite")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "loadtest", "session key prefix")
		logLevel    = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg := goSession.DefaultConfig()
	cfg.Session.Backend = *backend
	cfg.Session.KeyPrefix = *prefix
	cfg.Access.Roles = []string{"USER", "ADMIN"}
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Activity.SlowOperationThreshold = 0
	cfg.Log.Level = *logLevel

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	builder := goSession.New().WithLogger(log)
	for _, r := range routes {
		builder.WithRoute(r.path, r.req)
	}

	cleanup := func() {}
	switch *backend {
	case goSession.BackendRedis:
		client, done, err := redisClient(*redisAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis: %v\n", err)
			os.Exit(1)
		}
		cleanup = done
		builder.WithRedis(client)
	case goSession.BackendSQLite:
		dir, err := os.MkdirTemp("", "gosession-loadtest")
		if err != nil {
			fmt.Fprintf(os.Stderr, "temp dir: %v\n", err)
			os.Exit(1)
		}
		cfg.SQLite.Path = filepath.Join(dir, "session.db")
		cleanup = func() { _ = os.RemoveAll(dir) }
		fmt.Printf("using sqlite at %s\n", cfg.SQLite.Path)
	}
	defer cleanup()

	engine, err := builder.WithConfig(cfg).Build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	mutateStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand, i int) error {
		if i%4 == 3 {
			return engine.Clear(ctx)
		}
		role := "USER"
		if r.Intn(10) == 0 {
			role = "ADMIN"
		}
		id := fmt.Sprintf("u-%d", r.Intn(1000))
		return engine.Establish(ctx, goSession.Profile{"id": id, "role": role}, "tok-"+id)
	})

	if err := engine.Establish(ctx, goSession.Profile{"id": "u-0", "role": "USER"}, "tok-u-0"); err != nil {
		fmt.Fprintf(os.Stderr, "establish: %v\n", err)
		os.Exit(1)
	}
	decideStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand, _ int) error {
		engine.DecideRoute(ctx, routes[r.Intn(len(routes))].path)
		return nil
	})

	activityStats := runPhase(*ops, *concurrency, 4099, func(*rand.Rand, int) error {
		return engine.End(engine.Begin())
	})

	fmt.Println("---- results ----")
	printStats("establish/clear", mutateStats)
	printStats("decide", decideStats)
	printStats("begin/end", activityStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("persist failures=%d redirects login=%d home=%d in-flight=%d\n",
		snap.Counters[goSession.MetricSessionPersistFailure],
		snap.Counters[goSession.MetricGuardRedirectLogin],
		snap.Counters[goSession.MetricGuardRedirectHome],
		engine.ActivityCount(),
	)
}

func redisClient(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
