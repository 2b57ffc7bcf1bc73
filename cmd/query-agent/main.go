// cmd/query-agent/main.go

// The query agent answers natural-language air-quality questions over HTTP,
// suspending for location disambiguation when a reference is ambiguous.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airquality-agent/internal/agents"
	comparisonagent "airquality-agent/internal/agents/comparison"
	currentreading "airquality-agent/internal/agents/current-reading"
	forecastagent "airquality-agent/internal/agents/forecast"
	hotspotagent "airquality-agent/internal/agents/hotspot"
	trendagent "airquality-agent/internal/agents/trend"
	"airquality-agent/internal/cache"
	"airquality-agent/internal/common/config"
	"airquality-agent/internal/common/database"
	"airquality-agent/internal/common/logger"
	"airquality-agent/internal/common/observability"
	"airquality-agent/internal/metricstore"
	"airquality-agent/internal/parser"
	"airquality-agent/internal/resolver"
	"airquality-agent/internal/search"
	"airquality-agent/internal/transport/httpapi"
	"airquality-agent/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting query agent", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres carries measurements and, unless Elasticsearch is selected,
	// location search too.
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.WithError(err).Error("failed to create postgres client", nil)
		os.Exit(1)
	}
	defer pg.Close()
	if err := retryWithBackoff(ctx, "postgres", 5, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pg.Ping(pingCtx)
	}, log); err != nil {
		log.WithError(err).Error("postgres is unreachable", nil)
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.WithError(err).Error("failed to create redis client", nil)
		os.Exit(1)
	}
	defer rdb.Close()
	if err := retryWithBackoff(ctx, "redis", 5, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx)
	}, log); err != nil {
		log.WithError(err).Error("redis is unreachable", nil)
		os.Exit(1)
	}

	healthChecks := []httpapi.HealthCheck{
		{Name: "postgres", Check: pg.Ping},
		{Name: "redis", Check: rdb.Ping},
	}

	var searcher resolver.Searcher
	if cfg.Search.Backend == "elasticsearch" {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.WithError(err).Error("failed to create elasticsearch client", nil)
			os.Exit(1)
		}
		if err := retryWithBackoff(ctx, "elasticsearch", 5, es.Ping, log); err != nil {
			log.WithError(err).Error("elasticsearch is unreachable", nil)
			os.Exit(1)
		}
		healthChecks = append(healthChecks, httpapi.HealthCheck{
			Name:  "elasticsearch",
			Check: func(context.Context) error { return es.Ping() },
		})
		searcher = search.NewElasticsearchSearcher(es.Client, cfg.Database.Elasticsearch.Index, cfg.Search.CandidateCap)
	} else {
		searcher = search.NewPostgresSearcher(pg.DB, cfg.Search.CandidateCap)
	}

	locationResolver := resolver.New(searcher, resolver.Config{
		Timeout:      config.GetDuration(cfg.Search.Timeout),
		CandidateCap: cfg.Search.CandidateCap,
	}, log)

	observer := observability.PrometheusObserver{}
	resultCache := cache.New(
		config.GetSeconds(cfg.Cache.DefaultTTL),
		cache.WithSweepInterval(config.GetSeconds(cfg.Cache.SweepInterval)),
		cache.WithObserver(observer),
	)
	defer resultCache.Close()

	store := metricstore.New(pg.DB, log)
	agentList := []agents.Agent{
		currentreading.NewHandler(store, currentreading.ConfigFrom(cfg.Agents.CurrentReading), log),
		trendagent.NewHandler(store, trendagent.ConfigFrom(cfg.Agents.Trend, cfg.Agents.Thresholds), log),
		comparisonagent.NewHandler(store, comparisonagent.ConfigFrom(cfg.Agents.Comparison, cfg.Agents.Thresholds), log),
		forecastagent.NewHandler(store, forecastagent.ConfigFrom(cfg.Agents.Forecast), log),
		hotspotagent.NewHandler(store, hotspotagent.ConfigFrom(cfg.Agents.Hotspot, cfg.Agents.Thresholds), log),
	}

	stateStore := workflow.NewRedisStateStore(rdb.Client, config.GetSeconds(cfg.Workflow.StateTTL), log)
	engine := workflow.NewEngine(
		parser.New(),
		locationResolver,
		agentList,
		resultCache,
		stateStore,
		observer,
		log,
		workflow.Config{ResultTTL: config.GetSeconds(cfg.Cache.DefaultTTL)},
	)

	apiServer := httpapi.NewServer(engine, resultCache, obs, healthChecks, cfg.Server, log)
	metricsServer := newMetricsServer(cfg.Server.MetricsAddress)

	errCh := make(chan error, 2)
	go func() {
		errCh <- apiServer.Start()
	}()
	go func() {
		log.Info("metrics server starting", map[string]interface{}{
			"address": cfg.Server.MetricsAddress,
		})
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-errCh:
		log.WithError(err).Error("server error", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("api server shutdown failed", nil)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("metrics server shutdown failed", nil)
	}
	log.Info("query agent stopped", nil)
}

func newMetricsServer(address string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return &http.Server{
		Addr:    address,
		Handler: mux,
	}
}

// retryWithBackoff retries fn with exponential backoff until it succeeds,
// attempts are exhausted, or ctx is cancelled.
func retryWithBackoff(ctx context.Context, name string, maxAttempts int, fn func() error, log logger.Logger) error {
	backoff := time.Second
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		log.Warn("connection attempt failed, retrying", map[string]interface{}{
			"target":  name,
			"attempt": attempt,
			"backoff": backoff.String(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", name, maxAttempts, err)
}
