// cmd/hub/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"onboarding-hub/internal/api"
	"onboarding-hub/internal/common/config"
	"onboarding-hub/internal/common/database"
	hubhttp "onboarding-hub/internal/common/http"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/common/observability"
	"onboarding-hub/internal/engine/dispatch"
	"onboarding-hub/internal/engine/escalation"
	"onboarding-hub/internal/engine/routing"
	"onboarding-hub/internal/engine/template"
	"onboarding-hub/internal/engine/trigger"
	"onboarding-hub/internal/events"
	"onboarding-hub/internal/logindex"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/sender"
	"onboarding-hub/internal/store/postgres"
	"onboarding-hub/internal/store/seed"
	triggerevent "onboarding-hub/internal/workers/trigger-event"
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

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting onboarding messaging hub...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
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
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (optional) ---
	var indexer *logindex.Indexer
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		indexer = logindex.NewIndexer(esClient, cfg.Database.Elasticsearch.LogIndex, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init RabbitMQ publisher (optional) ---
	var publisher *events.Publisher
	if cfg.Events.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			publisher, err = events.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, log)
			return err
		}, 10, 2*time.Second, zapLog, "RabbitMQ connection")
		if err != nil {
			zapLog.Fatal("rabbitmq failed after retries", zap.Error(err))
		}
		defer publisher.Close()
		zapLog.Info("RabbitMQ connected successfully")
	}

	// --- Channel senders ---
	registry := sender.NewRegistry()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Integrations.AWS.Region))
	if err != nil {
		zapLog.Fatal("aws config load failed", zap.Error(err))
	}
	if cfg.Integrations.AWS.SES.Enabled {
		registry.Register(models.ChannelEmail,
			sender.NewEmailSender(ses.NewFromConfig(awsCfg), cfg.Integrations.AWS.SES.FromEmail))
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		registry.Register(models.ChannelSMS,
			sender.NewSMSSender(sns.NewFromConfig(awsCfg), cfg.Integrations.AWS.SNS.DefaultSMSSenderID))
	}
	if cfg.Integrations.WhatsApp.Enabled {
		registry.Register(models.ChannelWhatsApp, sender.NewWhatsAppSender(
			hubhttp.NewClient(config.GetDuration(cfg.Integrations.WhatsApp.Timeout)),
			cfg.Integrations.WhatsApp.APIBaseURL,
			cfg.Integrations.WhatsApp.PhoneID,
			cfg.Integrations.WhatsApp.AccessToken,
		))
	}
	if cfg.Integrations.Teams.Enabled {
		registry.Register(models.ChannelTeams, sender.NewTeamsSender(
			hubhttp.NewClient(config.GetDuration(cfg.Integrations.Teams.Timeout)),
			cfg.Integrations.Teams.WebhookURL,
		))
	}

	// --- Engine ---
	st := postgres.New(pg.DB)

	if cfg.App.SeedFile != "" {
		fixture, err := seed.Load(cfg.App.SeedFile)
		if err != nil {
			zapLog.Fatal("seed file load failed", zap.Error(err))
		}
		if err := seed.Apply(ctx, st, fixture, log); err != nil {
			zapLog.Fatal("seed apply failed", zap.Error(err))
		}
	}

	resolver := routing.NewResolver(st, log)
	renderer := template.NewRenderer(st.Templates(), template.SupportContacts{
		Email:     cfg.Messaging.SupportEmail,
		Phone:     cfg.Messaging.SupportPhone,
		PortalURL: cfg.Messaging.PortalURL,
	}, log)
	dispatcher := dispatch.NewDispatcher(st.MessageLogs(), registry, publisher, indexer, obs, log)
	coordinator := trigger.NewCoordinator(st, resolver, renderer, dispatcher, log)

	sweeper := escalation.NewSweeper(st, renderer, dispatcher, redis, escalation.Config{
		SweepInterval: time.Duration(cfg.Messaging.Escalation.SweepInterval) * time.Second,
		LockTTL:       time.Duration(cfg.Messaging.Escalation.LockTTL) * time.Second,
		BatchSize:     cfg.Messaging.Escalation.BatchSize,
		Horizon:       time.Duration(cfg.Messaging.Escalation.HorizonDays) * 24 * time.Hour,
	}, log)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sweeper.Run(runCtx)

	// --- Init Zeebe worker (optional) ---
	if cfg.Camunda.Enabled {
		var zeebeClient zbc.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		handler := triggerevent.NewHandler(triggerevent.LoadConfig(), coordinator, st.Events(), log)
		jobWorker := zeebeClient.NewJobWorker().
			JobType(triggerevent.TaskType).
			Handler(handler.Handle).
			MaxJobsActive(cfg.Camunda.MaxJobsActive).
			Timeout(config.GetDuration(cfg.Camunda.Timeout)).
			Open()
		defer jobWorker.Close()

		zapLog.Info("worker started",
			zap.String("taskType", triggerevent.TaskType),
			zap.Int("maxJobsActive", cfg.Camunda.MaxJobsActive),
			zap.Int("timeout_ms", cfg.Camunda.Timeout),
		)
	}

	// --- HTTP API ---
	server := api.NewServer(st, coordinator, dispatcher, log)
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: server.Handler(),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-runCtx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
