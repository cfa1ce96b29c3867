package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"shopify-insights-core/internal/application"
	apiinfra "shopify-insights-core/internal/infrastructure/api"
	"shopify-insights-core/internal/infrastructure/config"
	"shopify-insights-core/internal/infrastructure/metrics"
	"shopify-insights-core/internal/infrastructure/postgres"
	"shopify-insights-core/internal/infrastructure/queue"
	shopifyinfra "shopify-insights-core/internal/infrastructure/shopify"

	"shopify-insights-core/internal/domain"
	"shopify-insights-core/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to Postgres and apply the schema.
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	// Connect to Redis; the ingress endpoint publishes envelopes to the
	// durable stream, the worker process consumes them.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	publisher := queue.NewPublisher(redisClient, cfg.QueueStream, logger)

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories and services.
	tenantRepo := postgres.NewTenantRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	reportService := application.NewReportService(tenantRepo, reportRepo, logger)

	installer := shopifyinfra.NewInstaller(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret, cfg.AppURL, logger)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks", webhookHandler(publisher, m, logger))

	r.Get("/auth", oauthInitHandler(installer, logger))
	r.Get("/auth/callback", oauthCallbackHandler(installer, logger))

	reportsHandler := apiinfra.NewReportsHandler(reportService, logger)
	r.Mount("/reports", reportsHandler.Routes())

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// webhookHandler is the ingress endpoint. It answers 200 as soon as the
// request is structurally complete: the platform enforces a short timeout
// and retries aggressively on non-2xx, so all correctness work is deferred
// to the worker. Signature verification happens there, over the raw body the
// envelope carries forward.
func webhookHandler(publisher ports.Publisher, m *metrics.Metrics, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.WebhooksReceived.Inc()

		topic := r.Header.Get("X-Shopify-Topic")
		shop := r.Header.Get("X-Shopify-Shop-Domain")
		hmacHeader := r.Header.Get("X-Shopify-Hmac-Sha256")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read webhook body")
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		w.WriteHeader(http.StatusOK)

		if topic == "" || shop == "" {
			// Structural gap; redelivery would repeat it, so drop.
			m.WebhooksDropped.Inc()
			logger.Warn().Str("topic", topic).Str("shop", shop).
				Msg("Webhook missing required headers, dropping")
			return
		}

		env := &domain.Envelope{
			Topic:      domain.Topic(topic),
			ShopDomain: shop,
			HMAC:       hmacHeader,
			Body:       string(body),
		}

		// Publish detached from the request context: the client hanging up
		// must not cancel a publish the broker could have served.
		if err := publisher.Publish(context.WithoutCancel(r.Context()), env); err != nil {
			// No local buffering: the platform's own retry tier redelivers.
			m.WebhooksDropped.Inc()
			logger.Error().Err(err).Str("topic", topic).Str("shop", shop).
				Msg("Failed to queue webhook, dropping")
			return
		}

		m.WebhooksPublished.Inc()
		logger.Info().Str("topic", topic).Str("shop", shop).Msg("Webhook queued")
	}
}

// oauthInitHandler redirects the merchant to the platform consent screen.
func oauthInitHandler(installer *shopifyinfra.Installer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		stateBytes := make([]byte, 16)
		if _, err := rand.Read(stateBytes); err != nil {
			logger.Error().Err(err).Msg("Failed to generate state")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		state := hex.EncodeToString(stateBytes)

		authURL, err := installer.AuthorizeURL(shop, state)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to build authorize URL")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// oauthCallbackHandler exchanges the code for a token and registers the
// webhook subscriptions that feed the pipeline.
func oauthCallbackHandler(installer *shopifyinfra.Installer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		if shop == "" || code == "" {
			http.Error(w, "Missing required parameters", http.StatusBadRequest)
			return
		}

		if err := installer.CompleteInstall(r.Context(), shop, code); err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to complete installation")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}

		logger.Info().Str("shop", shop).Msg("App installed, webhooks registered")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<h1>App installed and webhooks registered.</h1><p>You can close this window.</p>"))
	}
}
