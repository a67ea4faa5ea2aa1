//	@title			Misiones Arrienda API
//	@version		1.0
//	@description	Backend for Misiones Arrienda, rental listings and roommate search in Misiones.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/misionesarrienda/api/internal/config"
	"github.com/misionesarrienda/api/internal/db"
	"github.com/misionesarrienda/api/internal/displayname"
	"github.com/misionesarrienda/api/internal/logger"
	appMiddleware "github.com/misionesarrienda/api/internal/middleware"
	"github.com/misionesarrienda/api/internal/property"
	"github.com/misionesarrienda/api/internal/roommate"
	"github.com/misionesarrienda/api/internal/storage"
	"github.com/misionesarrienda/api/internal/user"

	_ "github.com/misionesarrienda/api/docs/swagger"
)

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !dotenv {
		log.Debug("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		if cfg.IsProduction() {
			log.Fatal("invalid configuration", zap.Error(err))
		}
		log.Warn("configuration incomplete, continuing outside production", zap.Error(err))
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	applied, err := db.Migrate(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}
	log.Info("database ready", zap.Bool("migrated", applied))

	minioClient, err := storage.NewMinioClient(storage.MinioOptions{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		UseSSL:    cfg.StorageUseSSL,
	})
	if err != nil {
		log.Fatal("object storage init failed", zap.Error(err))
	}

	propertyStore, err := storage.NewMinioStorage(ctx, minioClient, cfg.PropertyBucket, cfg.PropertyPublicBase, log)
	if err != nil {
		log.Fatal("property bucket init failed", zap.Error(err))
	}
	roommateStore, err := storage.NewMinioStorage(ctx, minioClient, cfg.RoommateBucket, cfg.RoommatePublicBase, log)
	if err != nil {
		log.Fatal("roommate bucket init failed", zap.Error(err))
	}
	avatarStore, err := storage.NewMinioStorage(ctx, minioClient, cfg.AvatarBucket, cfg.AvatarPublicBase, log)
	if err != nil {
		log.Fatal("avatar bucket init failed", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("listing cache disabled", zap.Error(err))
			rdb = nil
		} else {
			defer func() { _ = rdb.Close() }()
		}
	}
	lister := func(s *storage.MinioStorage) storage.Lister {
		if rdb == nil {
			return s
		}
		return storage.NewCachedLister(s, rdb, s.Bucket(), cfg.ListingCacheTTL, log)
	}

	propertyGallery := storage.NewGallery(lister(propertyStore), propertyStore.Resolver(), log)
	roommateGallery := storage.NewGallery(lister(roommateStore), roommateStore.Resolver(), log)

	// Local MinIO serves avatars from localhost during development.
	avatars := displayname.AvatarPolicy{AllowLocal: !cfg.IsProduction()}

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo, avatarStore, avatarStore.Resolver(), avatars,
		displayname.Guard{Enabled: cfg.DisplayNameGuardEnabled}, log)
	userHandler := user.NewHandler(userSvc, log)

	propertyRepo := property.NewRepository(pool)
	propertySvc := property.NewService(propertyRepo, propertyStore, propertyGallery, avatars, log)
	propertyHandler := property.NewHandler(propertySvc, log)

	roommateRepo := roommate.NewRepository(pool)
	roommateSvc := roommate.NewService(roommateRepo, roommateGallery, avatars)
	roommateHandler := roommate.NewHandler(roommateSvc, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := appMiddleware.NewMetrics(reg)

	requireAuth := appMiddleware.RequireAuth(cfg.JWTSecret)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if err := pool.Ping(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Swagger UI at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			r.Get("/", propertyHandler.List)
			r.Get("/{id}", propertyHandler.Get)
			r.With(requireAuth).Post("/{id}/images", propertyHandler.UploadImage)
		})

		r.Route("/roommates", func(r chi.Router) {
			r.Get("/", roommateHandler.List)
			r.Get("/{id}", roommateHandler.Get)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", userHandler.GetMe)
			r.Patch("/me", userHandler.UpdateProfile)
			r.Post("/me/avatar", userHandler.UploadAvatar)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv),
			zap.String("swagger", "http://localhost:"+cfg.Port+"/swagger/"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
		return
	}

	log.Info("server stopped")
}
