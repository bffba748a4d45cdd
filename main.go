package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CristiGvl/picoCPUFreq/api"
	"github.com/CristiGvl/picoCPUFreq/internal/config"
	"github.com/CristiGvl/picoCPUFreq/internal/cpu"
	"github.com/CristiGvl/picoCPUFreq/internal/cpufreq"
	"github.com/CristiGvl/picoCPUFreq/internal/ledger"
	"github.com/CristiGvl/picoCPUFreq/internal/logger"
	"github.com/CristiGvl/picoCPUFreq/internal/platform"
	"github.com/CristiGvl/picoCPUFreq/internal/publish"
	"github.com/CristiGvl/picoCPUFreq/internal/report"
	"github.com/CristiGvl/picoCPUFreq/internal/session"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run wires the collaborators and returns the process exit code once every
// deferred close has happened
func run(args []string) int {
	cfg := config.Load()

	// Parse command line flags
	flags := flag.NewFlagSet("picoCPUFreq", flag.ContinueOnError)
	port := flags.String("port", cfg.Port, "Port to run the server on")
	bind := flags.String("bind", cfg.Bind, "IP address to bind the server to")
	duration := flags.Duration("duration", 0, "Run a single profiling session for this long and exit")
	note := flags.String("note", "", "Note attached to a -duration session")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	appLog := logger.New(cfg)

	// Validate platform support
	if err := platform.ValidateSupport(); err != nil {
		appLog.Error("platform validation failed", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := cpufreq.NewSysfsSource(cfg.SysfsCPURoot)
	collector := cpufreq.NewCollector(source, cfg.ReadTimeout, appLog)
	sink := report.NewFileSink(cfg.ReportRoot, cfg.ReportSubdir)

	var (
		observers []session.Observer
		reports   api.ReportLister
	)

	if cfg.LedgerPath != "" {
		db, err := ledger.Open(cfg.LedgerPath, appLog)
		if err != nil {
			appLog.Error("failed to open report ledger", "error", err)
		} else {
			defer db.Close()
			repo := ledger.NewRepository(db)
			observers = append(observers, repo)
			reports = repo
		}
	}

	if cfg.RedisAddress != "" {
		client, err := publish.Init(ctx, &publish.ClientOptions{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			appLog.Error("failed to init redis", "error", err)
		} else {
			defer client.Close()
			appLog.Info("redis connected", "stream", cfg.RedisStream)
			observers = append(observers, publish.NewStreamPublisher(client, cfg.RedisStream, cfg.RedisMaxLen))
		}
	}

	profiler := session.NewProfiler(source, collector, sink, appLog, observers...)

	if *duration > 0 {
		if err := runOnce(ctx, profiler, *duration, *note, appLog); err != nil {
			appLog.Error("profiling session failed", "error", err)
			return 1
		}
		return 0
	}

	server := api.NewServer(api.Deps{
		Sessions: session.NewManager(profiler),
		CPU:      cpu.NewReader(cfg.SysfsCPURoot),
		Reports:  reports,
	})

	g, gCtx := errgroup.WithContext(ctx)

	// HTTP server
	g.Go(func() error {
		addr := *bind + ":" + *port
		appLog.Info("starting picoCPUFreq server", "address", addr, "reports", sink.Dir())
		return server.Start(addr)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		return server.Shutdown()
	})

	if err := g.Wait(); err != nil {
		appLog.Error("server stopped with error", "error", err)
		return 1
	}

	appLog.Info("server stopped")
	return 0
}

// runOnce profiles a single session lasting d, or until ctx is cancelled
func runOnce(ctx context.Context, profiler *session.Profiler, d time.Duration, note string, log logger.Logger) error {
	sess, err := profiler.Begin(ctx, note)
	if err != nil {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		log.Info("interrupted, ending session early")
	}

	// the signal context may already be cancelled
	endCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := profiler.End(endCtx, sess)
	if err != nil {
		return err
	}

	fmt.Println(result.ReportPath)
	return nil
}
