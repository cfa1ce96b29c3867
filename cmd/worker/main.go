package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shopify-insights-core/internal/application"
	"shopify-insights-core/internal/application/reconciler"
	"shopify-insights-core/internal/infrastructure/config"
	"shopify-insights-core/internal/infrastructure/metrics"
	"shopify-insights-core/internal/infrastructure/postgres"
	"shopify-insights-core/internal/infrastructure/queue"
	"shopify-insights-core/internal/infrastructure/repository"
	shopifyinfra "shopify-insights-core/internal/infrastructure/shopify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "worker").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	consumer, err := queue.NewConsumer(ctx, redisClient, cfg.QueueStream, cfg.QueueGroup, consumerName(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create queue consumer")
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	auditLog := repository.NewMongoWebhookLogRepository(mongoClient.Database(cfg.MongoDatabase))

	m := metrics.New(prometheus.DefaultRegisterer)

	// The worker owns its own counters; expose them for scraping here, the
	// api process only serves its own.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
			logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	tenantRepo := postgres.NewTenantRepository(db)
	resolver := application.NewTenantResolver(tenantRepo, logger)

	rec := reconciler.New(
		postgres.NewCustomerRepository(db),
		postgres.NewProductRepository(db),
		postgres.NewOrderRepository(db),
		postgres.NewCartRepository(db),
		logger,
	)

	verifier := shopifyinfra.NewWebhookVerifier(cfg.ShopifyAPISecret)

	worker := application.NewWorker(consumer, verifier, resolver, rec, auditLog, m, logger)
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("Worker stopped with error")
	}
}

// consumerName identifies this worker within the consumer group. It must be
// stable across restarts: a restarted worker re-reads the pending backlog of
// its own name, which is how a message received before a crash gets
// redelivered instead of stranded.
func consumerName() string {
	host, err := os.Hostname()
	if err != nil {
		return "worker"
	}
	return host
}
