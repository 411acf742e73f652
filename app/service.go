// Package app wires the configuration into a running dispatch service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/medifleet/dispatch/api/dispatch"
	"github.com/medifleet/dispatch/api/drones"
	apiqueue "github.com/medifleet/dispatch/api/queue"
	"github.com/medifleet/dispatch/config"
	coredispatch "github.com/medifleet/dispatch/core/dispatch"
	"github.com/medifleet/dispatch/core/dispatch/logging"
	"github.com/medifleet/dispatch/core/dronestatus"
	"github.com/medifleet/dispatch/core/geo"
	"github.com/medifleet/dispatch/core/matching"
	coremetrics "github.com/medifleet/dispatch/core/metrics"
	"github.com/medifleet/dispatch/core/monitoring"
	"github.com/medifleet/dispatch/core/notify"
	"github.com/medifleet/dispatch/core/queue"
	"github.com/medifleet/dispatch/core/scoring"
	"github.com/medifleet/dispatch/core/sla"
	"github.com/medifleet/dispatch/core/storage"
	"github.com/medifleet/dispatch/infra/logger"
	inframetrics "github.com/medifleet/dispatch/infra/metrics"
	inframonitoring "github.com/medifleet/dispatch/infra/monitoring"
	"github.com/medifleet/dispatch/infra/mqtt"
	"github.com/medifleet/dispatch/infra/storage/memory"
	"github.com/medifleet/dispatch/infra/storage/postgres"
	"github.com/medifleet/dispatch/internal/clock"
	"github.com/medifleet/dispatch/internal/eventbus"
)

// Service wires the dispatch engine, the SLA monitor and the operations API.
type Service struct {
	Orchestrator *coredispatch.Orchestrator
	Monitor      *sla.Monitor
	Store        storage.Store
	StatusStore  dronestatus.Store

	cfg      *config.Config
	bus      eventbus.EventBus
	log      logger.Logger
	sink     coremetrics.MetricsSink
	notifier notify.Notifier
	reporter *queue.StatusReporter
	logStore logging.LogStore
	closers  []func() error
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := inframonitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	svc := &Service{cfg: cfg, log: logg, bus: eventbus.New()}

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	svc.Store = store

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.sink = sink

	var notifier notify.Notifier = notify.Nop{}
	if cfg.MQTT.Enabled {
		n, err := mqtt.NewNotifier(cfg.MQTT.Conn)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		svc.closers = append(svc.closers, func() error { n.Disconnect(); return nil })
		notifier = n
	}
	svc.notifier = notifier

	logStore, err := newLogStore(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("log store: %w", err)
	}
	svc.logStore = logStore

	c := clock.Real{}
	scorer := scoring.NewScorer(c)
	provider := queue.NewProvider(store, store, store, scorer)
	locator := geo.NewHubLocator(store, store)
	matcher := matching.NewMatcher(store, store, c)

	orchestrator, err := coredispatch.NewOrchestrator(provider, locator, matcher, store, notifier, c, logger.New("dispatch"), sink, svc.bus)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	orchestrator.SetLogStore(logStore)
	svc.StatusStore = dronestatus.NewMemoryStore()
	orchestrator.SetStatusStore(svc.StatusStore)
	svc.Orchestrator = orchestrator

	threshold := time.Duration(cfg.Dispatch.SLAThresholdMinutes) * time.Minute
	svc.Monitor = sla.NewMonitor(store, store, store, threshold, c, logger.New("sla"), svc.bus)
	svc.reporter = queue.NewStatusReporter(provider, store, c)
	return svc, nil
}

func newStore(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	switch cfg.Backend {
	case "postgres":
		return postgres.New(ctx, cfg.DSN)
	default:
		return memory.New(), nil
	}
}

func newLogStore(cfg config.Logging) (logging.LogStore, error) {
	if cfg.Backend == "sqlite" {
		return logging.NewSQLiteStore(cfg.Path)
	}
	return logging.NewJSONLStore(cfg.Path)
}

// Run starts the dispatch loop, the SLA scanner and the HTTP servers, then
// blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go func() {
		defer monitoring.Recover()
		s.Orchestrator.Run(ctx, time.Duration(s.cfg.Dispatch.IntervalSeconds)*time.Second)
	}()
	go s.runSLAScanner(ctx)
	go inframetrics.StartEventCollector(ctx, s.bus, s.sink)

	if s.cfg.API.MetricsAddr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, s.cfg.API.MetricsAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		if err := s.serveAPI(ctx); err != nil {
			s.log.Errorf("api server: %v", err)
		}
	}()

	<-ctx.Done()
	return nil
}

// runSLAScanner checks for breaches on a tighter cadence than dispatch
// cycles and forwards each breach to the notifier.
func (s *Service) runSLAScanner(ctx context.Context) {
	defer monitoring.Recover()
	interval := time.Duration(s.cfg.Dispatch.SLAIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, a := range s.Monitor.Check(ctx) {
				breach := notify.SLABreach{
					AlertID:     a.ID,
					DeliveryID:  a.DeliveryID,
					WaitMinutes: a.WaitMinutes,
					Message:     a.Message,
					DetectedAt:  a.DetectedAt,
				}
				if err := s.notifier.NotifySLABreach(ctx, breach); err != nil {
					s.log.Errorf("sla notification for %s failed: %v", a.DeliveryID, err)
				}
			}
		}
	}
}

// QueueStatus returns the current queue snapshot.
func (s *Service) QueueStatus(ctx context.Context) (queue.Status, error) {
	return s.reporter.Snapshot(ctx)
}

// Handler assembles the operations API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/dispatch/run", dispatch.NewRunHandler(s.Orchestrator))
	mux.Handle("/api/dispatch/logs", dispatch.NewLogHandler(s.logStore, ""))
	mux.Handle("/api/queue/status", apiqueue.NewStatusHandler(s.reporter))
	mux.Handle("/api/alerts", apiqueue.NewAlertsHandler(s.Monitor))
	mux.Handle("/api/drones/status", drones.NewStatusHandler(s.StatusStore))
	return mux
}

func (s *Service) serveAPI(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var firstErr error
	if err := s.Orchestrator.Close(); err != nil {
		firstErr = err
	}
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	monitoring.Flush(2 * time.Second)
	return firstErr
}
