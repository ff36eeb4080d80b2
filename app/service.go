// Package app assembles the service from its configuration: cohort
// source, planning manager, route delivery, metrics sinks, plan log and
// the HTTP surface.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apinotify "github.com/uzazi-health/chwplan/api/notify"
	"github.com/uzazi-health/chwplan/api/plans"
	"github.com/uzazi-health/chwplan/api/triage"
	"github.com/uzazi-health/chwplan/config"
	coremetrics "github.com/uzazi-health/chwplan/core/metrics"
	"github.com/uzazi-health/chwplan/core/metrics/visitkpi"
	coremon "github.com/uzazi-health/chwplan/core/monitoring"
	"github.com/uzazi-health/chwplan/core/planner"
	"github.com/uzazi-health/chwplan/core/planner/planlog"
	"github.com/uzazi-health/chwplan/infra/kpi"
	"github.com/uzazi-health/chwplan/infra/logger"
	"github.com/uzazi-health/chwplan/infra/monitoring"
	"github.com/uzazi-health/chwplan/infra/mqtt"
	"github.com/uzazi-health/chwplan/infra/sms"
	"github.com/uzazi-health/chwplan/infra/telemetry"
	"github.com/uzazi-health/chwplan/internal/eventbus"
	"github.com/uzazi-health/chwplan/registry"

	// Built-in stores, sources and sinks.
	_ "github.com/uzazi-health/chwplan/app/plugins"
)

// Service orchestrates the planning pipeline and serves the HTTP API.
type Service struct {
	Manager *planner.PlanManager
	Source  registry.Source

	store     planlog.Store
	publisher *mqtt.PahoPublisher
	collector *telemetry.Collector
	kpiStore  visitkpi.Store
	srv       *http.Server
	log       logger.Logger
	shutdown  time.Duration
}

// New creates a Service from the configuration. The MQTT publisher and
// the cohort source are optional; without a broker routes are planned
// but not delivered, without a source cohorts arrive via the API only.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	store, err := planlog.NewStore(cfg.PlanLog.Module())
	if err != nil {
		return nil, fmt.Errorf("plan log: %w", err)
	}

	var publisher *mqtt.PahoPublisher
	var routePub mqtt.Publisher
	if cfg.MQTT.Broker != "" {
		publisher, err = mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		routePub = publisher
	}

	bus := eventbus.New()
	ackTimeout := time.Duration(cfg.Planner.AckTimeoutSeconds) * time.Second
	manager := planner.NewPlanManager(routePub, ackTimeout, sink, bus, logg)
	if store != nil {
		manager.SetLogStore(store)
	}

	var source registry.Source
	if cfg.Registry.Type != "" {
		source, err = registry.New(cfg.Registry)
		if err != nil {
			return nil, fmt.Errorf("cohort source: %w", err)
		}
	}

	var collector *telemetry.Collector
	var kpiStore visitkpi.Store
	if cfg.Telemetry.Enabled && cfg.MQTT.Broker != "" {
		if cfg.Telemetry.KPIPath != "" {
			st, serr := kpi.NewSQLiteStore(cfg.Telemetry.KPIPath)
			if serr != nil {
				return nil, fmt.Errorf("kpi store: %w", serr)
			}
			kpiStore = st
		} else {
			kpiStore = visitkpi.NewMemoryStore()
		}
		collector, err = telemetry.NewCollector(cfg.MQTT, cfg.Telemetry, kpiStore)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
	}

	twilio := sms.NewTwilioClient(cfg.Notify, logger.New("twilio"))

	mux := http.NewServeMux()
	mux.Handle("/api/plans", plans.NewPlanHandler(manager))
	mux.Handle("/api/plans/compare", plans.NewCompareHandler(manager))
	if source != nil {
		mux.Handle("/api/plans/run", plans.NewRunHandler(manager, source))
	}
	if store != nil {
		mux.Handle("/api/plans/logs", plans.NewLogHandler(store, cfg.API.BearerToken))
	}
	mux.Handle("/api/triage", triage.NewHandler(manager))
	mux.Handle("/notify/sms", apinotify.NewSMSHandler(twilio))
	mux.Handle("/notify/voice", apinotify.NewVoiceHandler(twilio))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return &Service{
		Manager:   manager,
		Source:    source,
		store:     store,
		publisher: publisher,
		collector: collector,
		kpiStore:  kpiStore,
		srv: &http.Server{
			Addr:              cfg.API.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log:      logg,
		shutdown: time.Duration(cfg.API.ShutdownSeconds) * time.Second,
	}, nil
}

// Run serves the HTTP API and blocks until the context is cancelled,
// then shuts the server down gracefully.
func (s *Service) Run(ctx context.Context) error {
	if s.collector != nil {
		go s.collector.Start(ctx)
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// Close releases everything the service holds. The manager closes the
// event bus and the plan log store.
func (s *Service) Close() error {
	err := s.Manager.Close()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if s.Source != nil {
		if cerr := s.Source.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if c, ok := s.kpiStore.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	coremon.Flush(2 * time.Second)
	return err
}
