package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/api/handlers/http/system"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/classifier/gemini"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/config"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/geocode"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/messaging"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/notify"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/notify/push"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/notify/whatsapp"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/render"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/service"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/storage/postgres"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/storage/redis"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/internal/workers"
	"github.com/vanshaggarwal27/Project-Drishti-sub000/pkg/logger"
)

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
	// Nil when the broker is disabled or unreachable at startup.
	RabbitMQ   *messaging.RabbitMQ
	Consumer   *messaging.Consumer
	Classifier *gemini.Classifier
	// Nil when EMERGENCY_WEBHOOK_DISABLED is set.
	Webhook *service.WebhookSender
	// Nil when ALERT_RECOVER_INTERVAL is zero.
	Recovery *service.AlertRecovery
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	c := &Components{logger: logger}

	logger.Info("Initializing Postgres")
	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres", slog.Any("error", err))
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}
	c.Postgres = storage

	if err := postgres.Migrate(ctx, storage.Pool); err != nil {
		c.ShutdownAll()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		c.ShutdownAll()
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}
	c.Redis = redisClient

	emergencyQueue := redis.NewEmergencyQueue(redisClient.Client, redis.EmergencyQueueKey)
	statsCache := redis.NewStatsCache(redisClient, cfg.Redis.StatsTTL)
	ledger := redis.NewDeliveryLedger(redisClient, cfg.Redis.LedgerTTL)

	var events service.EventPublisher
	if cfg.RabbitMQ.Disabled {
		logger.Warn("RabbitMQ disabled, sos events will not be published")
	} else {
		logger.Info("Initializing RabbitMQ")
		rmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Error("RabbitMQ unavailable, continuing without events", slog.Any("error", err))
		} else {
			c.RabbitMQ = rmq
			events = rmq
		}
	}

	var geocoder service.Geocoder
	if cfg.Geocoder.APIKey != "" {
		geocoder = geocode.New(logger, cfg.Geocoder)
	} else {
		logger.Warn("GEOCODER_API_KEY not set, reports keep coordinates only")
	}

	adapters := make([]notify.Adapter, 0, 2)
	switch {
	case cfg.Push.Disabled:
		logger.Warn("push notifications disabled")
	case cfg.Push.CredentialsFile == "":
		logger.Warn("FCM_CREDENTIALS_FILE not set, push channel not configured")
	default:
		fcm, err := push.NewFromCredentials(ctx, cfg.Push.CredentialsFile, logger)
		if err != nil {
			logger.Error("Failed to init FCM, push channel not configured", slog.Any("error", err))
		} else {
			adapters = append(adapters, fcm)
		}
	}
	if cfg.Twilio.Enabled() {
		adapters = append(adapters, whatsapp.NewFromCredentials(
			cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, cfg.Twilio.SMSMode, logger,
		))
	} else {
		logger.Warn("Twilio credentials not set, whatsapp channel not configured")
	}

	renderer, err := render.NewRenderer()
	if err != nil {
		c.ShutdownAll()
		return nil, fmt.Errorf("failed to init renderer: %w", err)
	}

	pool := workers.NewFanOut(cfg.Alert.BatchSize, cfg.Alert.BatchInterval, cfg.Alert.SendTimeout)
	orchestrator := service.NewAlertOrchestrator(
		logger, cfg.Alert, storage.Recipients(), storage.Alerts(), ledger, renderer, pool, adapters...,
	)
	review := service.NewReviewWorkflow(logger, storage.Incidents(), orchestrator, emergencyQueue, statsCache)

	if cfg.Alert.RecoverInterval > 0 {
		c.Recovery = service.NewAlertRecovery(
			logger, storage.Incidents(), storage.Alerts(), orchestrator, cfg.Alert.RecoverAfter, cfg.Alert.RecoverInterval,
		)
	}

	classification := service.NewClassificationService(logger, storage.Incidents())
	srv := service.NewService(
		service.NewReportService(logger, storage.Incidents(), storage.Recipients(), geocoder, events, statsCache, cfg.Report.DefaultDurationSec),
		service.NewAdminSOSService(storage.Incidents(), storage.Recipients(), review),
		service.NewStatsService(logger, storage.Stats(), statsCache),
		classification,
	)

	if !cfg.Webhook.Disabled {
		c.Webhook = service.NewWebhookSender(logger, cfg.Webhook, emergencyQueue)
	}

	if c.RabbitMQ != nil {
		consumer := messaging.NewConsumer(logger, c.RabbitMQ)
		consumer.Handle(messaging.QueueSOSClassified, messaging.ClassificationHandler(classification.Apply))

		if cfg.Classifier.Enabled() {
			logger.Info("Initializing Gemini classifier", slog.String("model", cfg.Classifier.Model))
			classifier, err := gemini.New(ctx, logger, cfg.Classifier)
			if err != nil {
				logger.Error("Failed to init classifier, sos.created will not be consumed", slog.Any("error", err))
			} else {
				c.Classifier = classifier
				worker := workers.NewClassifyWorker(logger, classifier, c.RabbitMQ, cfg.Classifier.Timeout)
				consumer.Handle(messaging.QueueSOSCreated, worker.Handle)
			}
		}
		c.Consumer = consumer
	}

	checks := map[string]system.Pinger{
		"postgres": storage.Pool,
		"redis":    redisClient,
	}
	c.HttpServer = api.NewServer(ctx, cfg, logger, srv, checks)
	logger.Info("Initialized server",
		slog.Int("alert_channels", len(adapters)),
		slog.Bool("events", events != nil),
		slog.Bool("classifier", c.Classifier != nil),
	)

	return c, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	if c.RabbitMQ != nil {
		if err := c.RabbitMQ.Close(); err != nil {
			c.logger.Error("RabbitMQ close failed", slog.Any("error", err))
		}
	}
	if c.Classifier != nil {
		if err := c.Classifier.Close(); err != nil {
			c.logger.Error("Classifier close failed", slog.Any("error", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.Any("error", err))
		}
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}

	c.logger.Info("All components stopped", slog.Duration("latency", time.Since(start)))
}
