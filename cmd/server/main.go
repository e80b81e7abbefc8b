package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/nits-community-backend/internal/config"
	"github.com/AnshRaj112/nits-community-backend/internal/database"
	"github.com/AnshRaj112/nits-community-backend/internal/handlers"
	"github.com/AnshRaj112/nits-community-backend/internal/logger"
	"github.com/AnshRaj112/nits-community-backend/internal/middleware"
	"github.com/AnshRaj112/nits-community-backend/internal/routes"
	"github.com/AnshRaj112/nits-community-backend/internal/services"
	"github.com/getsentry/sentry-go"
)

func main() {
	// Load env
	envErr := godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.IsProduction(), cfg.SentryDSN)
	defer sentry.Flush(2 * time.Second)
	if envErr != nil {
		slog.Debug("no .env file found")
	}

	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set; admin login is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional; it backs the redis store driver, the feed relay and dev rate limiting.
	var redisClient *redis.Client
	if cfg.RedisURI != "" {
		slog.Info("connecting to Redis")
		client, err := database.ConnectRedis(cfg.RedisURI)
		if err != nil {
			fatal("failed to connect to Redis", err)
		}
		redisClient = client
		defer redisClient.Close()
	}

	slog.Info("opening document store", "driver", cfg.StoreDriver)
	store, err := database.Open(cfg, redisClient)
	if err != nil {
		fatal("failed to open document store", err)
	}
	defer store.Close()

	objects := openObjectStore(ctx, cfg)

	hub := services.NewFeedHub()
	var feed services.FeedPublisher = hub
	if cfg.FeedRelay == "redis" {
		if redisClient == nil {
			slog.Warn("FEED_RELAY=redis needs REDIS_URI; falling back to local feed")
		} else {
			relay := services.NewRedisFeedRelay(redisClient, hub)
			relay.Start(ctx)
			feed = relay
			slog.Info("feed relay enabled", "channel", "feed:posts")
		}
	}

	gate := services.NewIdentityGate(cfg.AdminUsername, cfg.AdminPassword)
	h := &handlers.Handler{
		Posts:    services.NewPostService(store, gate, objects, feed),
		Profiles: services.NewProfileService(store),
		Uploads:  services.NewUploadGateway(objects),
		Gate:     gate,
		Feed:     hub,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit when Redis is available
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.TrustProxy) {
			r.Use(mw)
		}
		slog.Info("production security enabled")
	} else if redisClient != nil {
		r.Use(middleware.RedisRateLimit(redisClient, cfg.TrustProxy))
	}

	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("nits community backend running", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server failed", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	h.Posts.WaitMediaCleanup()
}

// openObjectStore returns nil when no media host is configured; uploads then fail with "Upload failed".
func openObjectStore(ctx context.Context, cfg *config.Config) services.ObjectStore {
	switch cfg.ObjectStore {
	case "s3":
		s3svc, err := services.NewS3Service(ctx, services.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			Folder:    cfg.CloudinaryFolder,
		})
		if err != nil {
			slog.Warn("failed to initialize S3; uploads unavailable", "error", err)
			return nil
		}
		slog.Info("S3 object store initialized", "bucket", cfg.S3Bucket)
		return s3svc
	default:
		if !cfg.CloudinaryConfigured() {
			slog.Warn("Cloudinary credentials not found; uploads unavailable")
			return nil
		}
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			slog.Warn("failed to initialize Cloudinary; uploads unavailable", "error", err)
			return nil
		}
		slog.Info("Cloudinary service initialized")
		return cld
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	sentry.Flush(2 * time.Second)
	os.Exit(1)
}
