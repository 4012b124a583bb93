// Command authcore-loadtest measures session store throughput: a lookup
// phase (the per-request hot path) and a regenerate phase (the login-time id
// rotation, which is a Lua round-trip). Runs against a real Redis via
// -redis-addr or REDIS_ADDR, or an embedded miniredis by default.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/authcore-io/authcore/session"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 100000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ases", "session key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store := session.NewStore(client, *prefix, 24*time.Hour)

	ids := make([]string, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := range ids {
		sess, err := store.Create(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		sess.PrincipalID = fmt.Sprintf("principal-%d", i)
		sess.Email = fmt.Sprintf("user%d@example.com", i)
		if err := store.Save(ctx, sess); err != nil {
			fmt.Fprintf(os.Stderr, "seed save failed: %v\n", err)
			os.Exit(1)
		}
		ids[i] = sess.ID
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	lookupStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		_, err := store.Get(ctx, ids[r.Intn(len(ids))])
		return err
	})

	// Each regenerate invalidates the old id, so swap the new one in for
	// later iterations.
	var mu sync.Mutex
	regenStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		mu.Lock()
		idx := r.Intn(len(ids))
		oldID := ids[idx]
		mu.Unlock()

		sess, err := store.Regenerate(ctx, oldID)
		if err != nil {
			return err
		}
		mu.Lock()
		if ids[idx] == oldID {
			ids[idx] = sess.ID
		}
		mu.Unlock()
		return nil
	})

	fmt.Println("---- results ----")
	printStats("lookup", lookupStats)
	printStats("regenerate", regenStats)
}

type phaseStats struct {
	total     time.Duration
	ops       int
	failures  int64
	latencies []time.Duration
}

func runPhase(ops, concurrency int, op func(*rand.Rand) error) phaseStats {
	var (
		wg       sync.WaitGroup
		cursor   int64
		failures int64
		mu       sync.Mutex
	)
	latencies := make([]time.Duration, 0, ops)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				opStart := time.Now()
				if err := op(r); err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				elapsed := time.Since(opStart)
				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	return phaseStats{
		total:     time.Since(start),
		ops:       ops,
		failures:  failures,
		latencies: latencies,
	}
}

func printStats(name string, s phaseStats) {
	sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
	pct := func(p float64) time.Duration {
		if len(s.latencies) == 0 {
			return 0
		}
		idx := int(float64(len(s.latencies)-1) * p)
		return s.latencies[idx]
	}
	rate := float64(s.ops) / s.total.Seconds()
	fmt.Printf("%-10s  %8.0f ops/s  p50=%-10s p95=%-10s p99=%-10s failures=%d\n",
		name, rate, pct(0.50), pct(0.95), pct(0.99), s.failures)
}
