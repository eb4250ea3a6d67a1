// cmd/automation-engine/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	awsclient "recruit-automation/internal/common/aws"
	"recruit-automation/internal/common/camunda"
	"recruit-automation/internal/common/config"
	"recruit-automation/internal/common/database"
	"recruit-automation/internal/common/logger"
	"recruit-automation/internal/common/observability"
	"recruit-automation/internal/engine"
	"recruit-automation/internal/engine/dispatch"
	"recruit-automation/internal/engine/loader"
	"recruit-automation/internal/engine/preview"
	"recruit-automation/internal/engine/rules"
	"recruit-automation/internal/httpapi"
	"recruit-automation/internal/models"
	"recruit-automation/internal/store/cache"
	"recruit-automation/internal/store/postgres"
	"recruit-automation/pkg/registry"

	da "recruit-automation/internal/workers/automation/dispatch-automation"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting automation engine...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	ctx := context.Background()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	readiness := map[string]httpapi.Pinger{"postgres": pg, "redis": rdb}

	// --- Elasticsearch (optional audit log) ---
	var audit dispatch.AuditSink
	if cfg.Database.Elasticsearch.Enabled() {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 10, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if err := esClient.EnsureIndex(ctx, cfg.Automation.AuditIndex); err != nil {
			zapLog.Fatal("audit index setup failed", zap.Error(err))
		}
		audit = dispatch.NewElasticAudit(esClient.Client, cfg.Automation.AuditIndex)
		readiness["elasticsearch"] = esClient
		zapLog.Info("Elasticsearch audit log enabled", zap.String("index", cfg.Automation.AuditIndex))
	}

	// --- Channels ---
	router := dispatch.NewRouter()
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			router.Register(models.ChannelEmail,
				dispatch.NewEmailSender(awsclient.NewSESClient(awsCfg), cfg.Notifications.Email.FromEmail))
		}
		if cfg.Notifications.SMS.Enabled {
			router.Register(models.ChannelSMS,
				dispatch.NewSMSSender(awsclient.NewSNSClient(awsCfg), cfg.Notifications.SMS.SenderID))
		}
	}
	if cfg.Notifications.InApp.Enabled {
		router.Register(models.ChannelInApp, dispatch.NewInAppSender(
			rdb.Client, cfg.Notifications.InApp.ChannelPrefix, cfg.Notifications.InApp.InboxSize))
	}
	zapLog.Info("Dispatch channels registered", zap.Any("channels", router.Channels()))

	// --- Engine ---
	ttl := time.Duration(cfg.Automation.CacheTTL) * time.Second
	entityCache := cache.NewEntities(postgres.NewEntityProvider(pg), rdb.Client, ttl, log)
	templateCache := cache.NewTemplates(postgres.NewTemplateStore(pg), rdb.Client, ttl, log)
	entities := loader.New(entityCache, config.GetDuration(cfg.Automation.FetchTimeout), log)

	ruleSvc := rules.NewService(postgres.NewRuleStore(pg), log)
	executor := preview.NewExecutor(entities, templateCache, preview.NewGuard(cfg.Automation.PlaceholderDomains), log)
	coordinator := dispatch.NewCoordinator(ruleSvc, entities, templateCache, router, audit, log)
	eng := engine.New(ruleSvc, executor, coordinator, templateCache)

	// --- Workflow worker ---
	var jobWorker *camunda.Worker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClient(ctx, cfg.Camunda.BrokerAddress)
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		reg, err := registry.Load(cfg.Camunda.RegistryPath)
		if err != nil {
			zapLog.Fatal("activity registry load failed", zap.Error(err))
		}

		wcfg := da.FromWorkerConfig(cfg)
		if wcfg.Enabled {
			handler, err := da.NewHandler(wcfg, eng, reg, obs, log)
			if err != nil {
				zapLog.Fatal("worker setup failed", zap.Error(err))
			}
			jobWorker = camunda.StartWorker(zeebe.GetClient(), da.TaskType, wcfg.MaxJobsActive, wcfg.Timeout, handler, log)
		}
	}

	// --- HTTP ---
	operator := models.OperatorProfile{
		Name:  cfg.Automation.DefaultSender.Name,
		Email: cfg.Automation.DefaultSender.Email,
		Phone: cfg.Automation.DefaultSender.Phone,
	}
	handler := httpapi.NewHandler(eng, operator, log, entityCache, templateCache)
	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      httpapi.NewRouter(handler, log, readiness),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		zapLog.Info("server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown", zap.Error(err))
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("metrics shutdown", zap.Error(err))
	}
	zapLog.Info("Automation engine stopped")
}
