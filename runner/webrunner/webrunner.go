package webrunner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sadewadee/hashcat-dashboard/internal/api"
	"github.com/sadewadee/hashcat-dashboard/internal/api/handlers"
	"github.com/sadewadee/hashcat-dashboard/internal/cache"
	"github.com/sadewadee/hashcat-dashboard/internal/clipboard"
	"github.com/sadewadee/hashcat-dashboard/internal/heartbeat"
	"github.com/sadewadee/hashcat-dashboard/internal/perfdata"
	"github.com/sadewadee/hashcat-dashboard/internal/repository"
	"github.com/sadewadee/hashcat-dashboard/internal/service"
	"github.com/sadewadee/hashcat-dashboard/internal/web"
	"github.com/sadewadee/hashcat-dashboard/runner"
	"github.com/sadewadee/hashcat-dashboard/tlmt"
)

// webrunner serves the dashboard and runs its background loops
type webrunner struct {
	cfg      *runner.Config
	store    *repository.Store
	cache    cache.Cache
	srv      *http.Server
	chart    *perfdata.Controller
	monitor  *heartbeat.Monitor
	recorder *heartbeat.Recorder
}

// New wires storage, cache, services and handlers for cfg
func New(cfg *runner.Config) (runner.Runner, error) {
	if cfg.RunMode != runner.RunModeWeb {
		return nil, fmt.Errorf("%w: %d", runner.ErrInvalidRunMode, cfg.RunMode)
	}

	if err := os.MkdirAll(cfg.DataFolder, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create data folder: %w", err)
	}

	if cfg.Dsn == "" {
		cfg.Dsn = filepath.Join(cfg.DataFolder, "hashcat.db")
	}

	store, err := repository.Open(cfg.Dsn)
	if err != nil {
		return nil, err
	}

	c, err := cache.Open(context.Background(), cfg.RedisURL, cfg.DisableCache)
	if err != nil {
		store.Close()
		return nil, err
	}

	tasks := service.NewTaskService(store.Tasks)
	agents := service.NewAgentService(store.Agents)
	results := service.NewResultService(store.Results, store.Tasks)
	stats := service.NewStatsService(store.Tasks, store.Agents, store.Results)
	perf := service.NewPerformanceService(store.Performance, store.Tasks, store.Agents)

	fetcher := perfdata.NewFetcher(cfg.MetricsURL).WithToken(cfg.APIToken)
	chart := perfdata.NewController(fetcher, cfg.RefreshInterval)
	chart.OnApply(func(s perfdata.Snapshot) {
		log.Printf("[Chart] applied %s series #%d (%d buckets)", s.Source, s.Token, len(s.Series.Labels))
	})

	renderer, err := web.NewRenderer(runner.Version)
	if err != nil {
		store.Close()
		c.Close()
		return nil, err
	}

	invalidator := handlers.NewCacheInvalidator(c)

	resultHandler := handlers.NewResultHandler(results, invalidator)
	if cfg.SystemClipboard {
		resultHandler.WithClipboard(clipboard.SystemClipboard{})
	}

	router := api.NewRouter(api.Handlers{
		Pages:       handlers.NewPageHandler(renderer, stats, tasks, results, chart, invalidator),
		Charts:      handlers.NewChartHandler(chart),
		Tasks:       handlers.NewTaskHandler(tasks, invalidator),
		Agents:      handlers.NewAgentHandler(agents, invalidator),
		Results:     resultHandler,
		Performance: handlers.NewPerformanceHandler(perf, chart),
		AttackModes: handlers.NewAttackModeHandler(),
		Debug:       handlers.NewDebugHandler(runner.Version, store.DB),
		Stats:       handlers.NewCachedStatsHandler(stats, c),
		Series:      handlers.NewCachedPerformanceHandler(perf, c),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Setup(cfg.APIToken),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	monitor := heartbeat.NewMonitor(agents, cfg.HeartbeatInterval).OnOffline(func(ctx context.Context, _ int) {
		invalidator.InvalidateStats(ctx)
	})

	return &webrunner{
		cfg:      cfg,
		store:    store,
		cache:    c,
		srv:      srv,
		chart:    chart,
		monitor:  monitor,
		recorder: heartbeat.NewRecorder(perf, c, cache.KeyPrefixPerformance+"*", cfg.RecordInterval),
	}, nil
}

// Run listens first, so the chart controller's first poll of this
// server is answered, then runs everything until ctx is cancelled.
func (w *webrunner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", w.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", w.cfg.Addr, err)
	}

	_ = runner.Telemetry().Send(ctx, tlmt.NewEvent("web_start", map[string]any{
		"database": w.store.Backend,
		"redis":    w.cfg.RedisURL != "",
		"version":  runner.Version,
	}))

	egroup, ctx := errgroup.WithContext(ctx)

	egroup.Go(func() error {
		return w.serve(ctx, ln)
	})

	egroup.Go(func() error {
		return w.monitor.Run(ctx)
	})

	egroup.Go(func() error {
		return w.recorder.Run(ctx)
	})

	egroup.Go(func() error {
		return w.chart.Run(ctx)
	})

	return egroup.Wait()
}

// Close cleans up resources
func (w *webrunner) Close(_ context.Context) error {
	w.chart.Stop()

	var errs []error
	if err := w.cache.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := w.store.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (w *webrunner) serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := w.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("error shutting down server: %v", err)
		}
	}()

	log.Printf("dashboard starting on %s", w.cfg.MetricsURL)
	log.Printf("using %s database", w.store.Backend)
	if w.cfg.APIToken == "" {
		log.Printf("WARNING: no API token set, the dashboard is open to anyone who can reach it")
	}

	err := w.srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
