// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"lending-workers/internal/common/aws"
	"lending-workers/internal/common/camunda"
	"lending-workers/internal/common/config"
	"lending-workers/internal/common/database"
	apperrors "lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/observability"
	"lending-workers/internal/common/validation"
	"lending-workers/internal/search"
	"lending-workers/internal/store"
	"lending-workers/pkg/registry"

	// Matching (2)
	cms "lending-workers/internal/workers/matching/calculate-match-score"
	ra "lending-workers/internal/workers/matching/rank-applications"

	// Applications (3)
	am "lending-workers/internal/workers/application/amend-application"
	car "lending-workers/internal/workers/application/create-application-record"
	vad "lending-workers/internal/workers/application/validate-application-data"

	// Preferences (1)
	cp "lending-workers/internal/workers/preference/create-preference"

	// Bidding (3)
	fb "lending-workers/internal/workers/bidding/finalize-bid"
	pb "lending-workers/internal/workers/bidding/place-bid"
	rf "lending-workers/internal/workers/bidding/record-funding"

	// Search & assistant (2)
	mpa "lending-workers/internal/workers/assistant/marketplace-assistant"
	sa "lending-workers/internal/workers/search/search-applications"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// deps holds the shared clients every worker is built from.
type deps struct {
	cfg          *config.Config
	log          logger.Logger
	obs          *observability.Observability
	applications *store.ApplicationStore
	preferences  *store.PreferenceStore
	bids         *store.BidStore
	index        *search.Index
	events       *aws.EventPublisher
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}

	index := search.NewIndex(esClient.Client, cfg.Search.ApplicationIndex, log)
	if err := index.EnsureIndex(ctx); err != nil {
		// search and the ranking pre-filter degrade; nothing else needs the index
		zapLog.Error("application index unavailable", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Activity registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("input schemas failed to compile", zap.Error(err))
	}

	// --- Bid events (optional) ---
	var events *aws.EventPublisher
	if cfg.Events.Enabled() {
		events, err = aws.NewEventPublisher(context.Background(), cfg.Events.Region, cfg.Events.TopicARN, cfg.App.Name)
		if err != nil {
			zapLog.Fatal("event publisher setup failed", zap.Error(err))
		}
		zapLog.Info("Bid events enabled", zap.String("topic", cfg.Events.TopicARN))
	}

	applications := store.NewApplicationStore(pg.GetDB())
	d := &deps{
		cfg:          cfg,
		log:          log,
		obs:          obs,
		applications: applications,
		preferences:  store.NewPreferenceStore(pg.GetDB(), rdb.GetClient(), time.Duration(cfg.Database.Redis.CacheTTL)*time.Second, log),
		bids:         store.NewBidStore(pg.GetDB(), applications),
		index:        index,
		events:       events,
	}

	pool := camunda.NewWorkerPool(zeebe.GetClient(), log)
	errHandler := apperrors.NewErrorHandler(log)

	handlers, err := buildHandlers(d)
	if err != nil {
		zapLog.Fatal("failed to create worker handlers", zap.Error(err))
	}
	for taskType, handle := range handlers {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			continue
		}
		if _, ok := reg.FindByTaskType(taskType); !ok {
			zapLog.Warn("worker has no registry entry, input is not schema-checked", zap.String("taskType", taskType))
		}
		pool.Start(taskType, config.GetWorkerConfig(cfg, taskType),
			camunda.WithInputValidation(validator, taskType, handle, errHandler))
	}
	zapLog.Info("workers registered", zap.Int("count", pool.Len()))

	// --- Periodic search reindex ---
	scheduler := cron.New()
	if spec := cfg.Search.ReindexSchedule; spec != "" {
		reindexer := search.NewReindexer(applications, index, log.WithFields(map[string]interface{}{"job": "reindex"}))
		_, err := scheduler.AddFunc(spec, func() {
			runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := reindexer.Run(runCtx); err != nil {
				zapLog.Warn("search reindex incomplete", zap.Error(err))
			}
		})
		if err != nil {
			zapLog.Fatal("invalid reindex schedule", zap.String("schedule", spec), zap.Error(err))
		}
		scheduler.Start()
		zapLog.Info("Search reindex scheduled", zap.String("schedule", spec))
	}

	// --- Health & Metrics Server ---
	var ready atomic.Bool
	ready.Store(true)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, "stopping")
			return
		}
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := readiness(checkCtx, pg, rdb, zeebe); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	<-scheduler.Stop().Done()
	pool.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// buildHandlers constructs every worker keyed by task type.
func buildHandlers(d *deps) (map[string]worker.JobHandler, error) {
	cfg, log, obs := d.cfg, d.log, d.obs
	handlers := make(map[string]worker.JobHandler)

	rank, err := ra.NewHandler(ra.LoadConfig(cfg), d.preferences, d.applications, d.index, log, obs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ra.TaskType, err)
	}
	handlers[ra.TaskType] = rank.Handle

	score, err := cms.NewHandler(cms.LoadConfig(cfg), d.preferences, d.applications, log, obs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cms.TaskType, err)
	}
	handlers[cms.TaskType] = score.Handle

	handlers[car.TaskType] = car.NewHandler(car.LoadConfig(cfg), d.applications, d.index, log, obs).Handle
	handlers[vad.TaskType] = vad.NewHandler(vad.LoadConfig(cfg), log, obs).Handle
	handlers[am.TaskType] = am.NewHandler(am.LoadConfig(cfg), d.applications, d.index, log, obs).Handle

	handlers[cp.TaskType] = cp.NewHandler(cp.LoadConfig(cfg), d.preferences, log, obs).Handle

	handlers[pb.TaskType] = pb.NewHandler(pb.LoadConfig(cfg), d.applications, d.bids, log, obs).Handle
	finalize := fb.NewHandler(fb.LoadConfig(cfg), d.bids, log, obs)
	funding := rf.NewHandler(rf.LoadConfig(cfg), d.bids, log, obs)
	if d.events != nil {
		finalize.WithEvents(d.events)
		funding.WithEvents(d.events)
	}
	handlers[fb.TaskType] = finalize.Handle
	handlers[rf.TaskType] = funding.Handle

	handlers[sa.TaskType] = sa.NewHandler(sa.LoadConfig(cfg), d.index, log, obs).Handle
	handlers[mpa.TaskType] = mpa.NewHandler(mpa.LoadConfig(cfg), nil, log, obs).Handle

	return handlers, nil
}

func readiness(ctx context.Context, pg *database.PostgresClient, rdb *database.RedisClient, zeebe *camunda.Client) error {
	if err := pg.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := zeebe.HealthCheck(ctx); err != nil {
		return fmt.Errorf("zeebe: %w", err)
	}
	return nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
