package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/codewandler/inbox-go/adapters/nats"
	prom "github.com/codewandler/inbox-go/adapters/prometheus"
	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/inbox"
	"github.com/codewandler/inbox-go/core/scheduler"
)

// === Config ===

// NOTE: set NATS_SUBJECT to route producers through nats, e.g.
// docker run --net=host nats:latest

var (
	logLevel    = slog.LevelInfo
	producers   = getEnvInt("P", 4)
	N           = getEnvInt("N", 100_000)
	channels    = getEnvInt("C", 16)
	receivers   = getEnvInt("R", 4)
	fibers      = getEnvInt("FIBERS", runtime.GOMAXPROCS(0))
	timeout     = time.Duration(getEnvInt("TIMEOUT_MS", 50)) * time.Millisecond
	deadline    = time.Duration(getEnvInt("DEADLINE_S", 60)) * time.Second
	metricsAddr = getEnv("METRICS_ADDR", "")
	natsSubject = getEnv("NATS_SUBJECT", "")
	debug       = getEnvBool("DEBUG", false)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	return v == "1" || strings.ToLower(v) == "true"
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

//

type job struct {
	Channel  int `json:"c"`
	Producer int `json:"p"`
	Seq      int `json:"s"`
}

type stats struct {
	delivered atomic.Int64
	timedOut  atomic.Int64
}

func main() {
	if debug {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	reg := prometheus.NewRegistry()
	m := prom.NewAllMetrics(reg)
	if metricsAddr != "" {
		srv := &http.Server{
			Addr:    metricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", slog.String("addr", metricsAddr))
	}

	pool := fiber.NewPool(fiber.PoolOptions{
		Options: fiber.Options{ID: "bench", Logger: log, Metrics: m.Fiber},
		Size:    fibers,
	})
	sched := scheduler.New(scheduler.Options{ID: "bench", Logger: log, Metrics: m.Scheduler})

	var st stats
	inboxes := make([]*inbox.Inbox[job], channels)
	for c := range inboxes {
		key := "channel-" + strconv.Itoa(c)
		f := pool.For(key)
		in := inbox.New[job](f, sched,
			inbox.WithID(key),
			inbox.WithLogger(log),
			inbox.WithMetrics(m.Inbox),
		)
		inboxes[c] = in
		for r := 0; r < receivers; r++ {
			f.Add(func() { receiveLoop(in, r, &st) })
		}
	}

	send := func(j job) error {
		inboxes[j.Channel].Send(j)
		return nil
	}
	if natsSubject != "" {
		var closeNats func()
		send, closeNats = viaNats(log, inboxes)
		defer closeNats()
	}

	fmt.Printf("producers: %d x %d messages\n", producers, N)
	fmt.Printf(" channels: %d (%d receivers each) on %d fibers\n", channels, receivers, pool.Size())
	fmt.Printf("  timeout: %s\n", timeout)

	startAt := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < producers; p++ {
		g.Go(func() error {
			for i := 0; i < N; i++ {
				if i%1000 == 0 && gctx.Err() != nil {
					return gctx.Err()
				}
				if err := send(job{Channel: (p + i) % channels, Producer: p, Seq: i}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	checkErr(g.Wait())
	sentAt := time.Now()

	total := int64(producers * N)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
wait:
	for st.delivered.Load() < total {
		select {
		case <-ctx.Done():
			log.Warn("deadline reached before all messages were delivered")
			break wait
		case <-ticker.C:
		}
	}
	doneAt := time.Now()

	for _, in := range inboxes {
		in.Dispose()
	}
	sched.Stop()
	pool.Stop()
	<-pool.Done()

	// === stats ===
	println("")
	println("==========================================")

	took := doneAt.Sub(startAt)
	mu := getMemUsage()
	fmt.Printf("   send time: %.3f seconds\n", sentAt.Sub(startAt).Seconds())
	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("    delivered: %d / %d\n", st.delivered.Load(), total)
	fmt.Printf("     timeouts: %d\n", st.timedOut.Load())
	fmt.Printf("  delivered/s: %d\n", int(float64(st.delivered.Load())/took.Seconds()))
	fmt.Printf("       memory: %d / %d MiB (alloc / sys), %d gc\n", mu.Alloc/1024/1024, mu.Sys/1024/1024, mu.NumGC)
}

// receiveLoop keeps one selective receive registered for the messages whose
// sequence number maps to receiver r. A timeout just registers again.
func receiveLoop(in *inbox.Inbox[job], r int, st *stats) {
	in.ReceiveWithTimeout(
		inbox.When(
			func(j job) bool { return j.Seq%receivers == r },
			func(job) {
				st.delivered.Add(1)
				receiveLoop(in, r, st)
			},
		),
		timeout,
		func() {
			st.timedOut.Add(1)
			receiveLoop(in, r, st)
		},
	)
}

// viaNats publishes jobs on natsSubject and bridges them back into the
// inboxes.
func viaNats(log *slog.Logger, inboxes []*inbox.Inbox[job]) (func(job) error, func()) {
	connect := nats.ReuseConnection(nats.ConnectDefault())

	bridge, err := nats.NewBridge(nats.BridgeConfig[job]{
		Connect: connect,
		Subject: natsSubject,
		Target:  router(inboxes),
		Logger:  log,
	})
	checkErr(err)

	pub, err := nats.NewPublisher[job](connect, natsSubject, nil)
	checkErr(err)

	return pub.Publish, func() {
		_ = bridge.Close()
		pub.Close()
	}
}

// router sends each job to the inbox of its channel.
type router []*inbox.Inbox[job]

func (r router) Send(j job) { r[j.Channel].Send(j) }

// === stats helpers ===

type MemUsage struct {
	Alloc uint64 // bytes allocated and not yet freed (heap)
	Sys   uint64 // total bytes obtained from OS
	NumGC uint32 // gc cycles
}

func getMemUsage() MemUsage {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc: m.Alloc,
		Sys:   m.Sys,
		NumGC: m.NumGC,
	}
}

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
