package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/httpserver"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/revocation"
	"github.com/Skotchmaster/shop_backend/internal/search"
	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/pkg/config"
	pkgdb "github.com/Skotchmaster/shop_backend/pkg/db"
	"github.com/Skotchmaster/shop_backend/pkg/es"
	"github.com/Skotchmaster/shop_backend/pkg/logging"
	middleware "github.com/Skotchmaster/shop_backend/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/shop_backend/pkg/middleware/logging"
	"github.com/Skotchmaster/shop_backend/pkg/mykafka"
	"github.com/Skotchmaster/shop_backend/pkg/redisdb"
)

const initTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustOneOf(cfg.DatabaseDriver, "DB_DRIVER", "postgres", "sqlite")
	config.MustOneOf(cfg.RevocationBackend, "REVOCATION_BACKEND",
		revocation.BackendMemory, revocation.BackendRedis, revocation.BackendDB)
	if cfg.DatabaseDriver == "postgres" {
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	db, err := pkgdb.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	r := repo.New(db)
	if err := r.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	store, rdb, err := revocationStore(ctx, cfg, db)
	if err != nil {
		cancel()
		log.Fatalf("revocation store: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers, mykafka.Options{})
		if err != nil {
			cancel()
			log.Fatalf("kafka producer: %v", err)
		}
		publisher = producer
	} else {
		logger.Warn("kafka disabled", "reason", "KAFKA_BROKERS is empty")
	}
	emitter := events.NewEmitter(publisher, cfg.KafkaTopicPrefix)

	catalog := &service.CatalogService{Repo: r, Events: emitter}
	if cfg.ESURL != "" {
		idx, err := productIndex(ctx, cfg)
		if err != nil {
			logger.Warn("elasticsearch disabled", "error", err)
		} else {
			catalog.Index = idx
		}
	}

	tokens := service.NewTokenService(r, store, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auth := &service.AuthService{Repo: r, Tokens: tokens, Events: emitter}

	if cfg.AdminEmail != "" {
		admin, err := auth.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			cancel()
			log.Fatalf("seed admin: %v", err)
		}
		logger.Info("admin account ready", "user_id", admin.ID)
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.BodyLimit("1M"))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: auth},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: emitter}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		StatsHandler:   &httpserver.StatsHTTP{Svc: service.NewStatsService(r)},
		AuthMW:         middleware.NewBearerAuth(tokens, auth, service.ErrUnauthorized),
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close", "error", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("server stopped")
}

func revocationStore(ctx context.Context, cfg config.Config, db *gorm.DB) (revocation.Store, *redis.Client, error) {
	switch cfg.RevocationBackend {
	case revocation.BackendRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return revocation.NewRedisStore(rdb), rdb, nil
	case revocation.BackendDB:
		return revocation.NewGormStore(db), nil, nil
	default:
		return revocation.NewMemoryStore(), nil, nil
	}
}

func productIndex(ctx context.Context, cfg config.Config) (*search.Index, error) {
	client, err := es.NewClient(ctx, es.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
	})
	if err != nil {
		return nil, err
	}
	idx := search.NewIndex(client, cfg.ESIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}
