package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	arango "tickevo.app/backend/common/arangodb"
	"tickevo.app/backend/common/id"
	"tickevo.app/backend/common/logger"
	"tickevo.app/backend/common/otel"
	"tickevo.app/backend/common/token"
	"tickevo.app/backend/core/config"
	"tickevo.app/backend/core/db"
	"tickevo.app/backend/internal/http/middleware"
	httprouter "tickevo.app/backend/internal/http/router"
	"tickevo.app/backend/internal/queue"
	"tickevo.app/backend/internal/service"
	"tickevo.app/backend/internal/store"
	"tickevo.app/backend/internal/store/arangostore"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel before logger: the production handler bridges into the OTel log provider.
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "tickevo starting", "env", cfg.Env, "backend", cfg.Backend)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	stores, txRunner, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open store", "backend", cfg.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	eventProducer, err := openProducer(ctx, cfg.Events)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer eventProducer.Close()

	services := service.NewServices(service.Deps{
		Stores:   stores,
		TxRunner: txRunner,
		Events:   eventProducer,
		Turn:     cfg.Turn,
	}, token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// openStore connects the configured backend and makes sure its schema exists.
func openStore(ctx context.Context, cfg config.Config) (service.StoreProvider, service.TxRunner, func(), error) {
	switch cfg.Backend {
	case config.StoreBackendArangoDB:
		client, err := arango.New(ctx, arango.Config{
			URL:      cfg.ArangoDB.URL,
			Username: cfg.ArangoDB.Username,
			Password: cfg.ArangoDB.Password,
			Database: cfg.ArangoDB.Database,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		if err := client.EnsureDatabase(ctx); err != nil {
			return nil, nil, nil, err
		}
		if err := client.EnsureCollections(ctx); err != nil {
			return nil, nil, nil, err
		}
		slog.InfoContext(ctx, "arangodb connected", "database", cfg.ArangoDB.Database)
		return arangostore.NewStores(client.Queries()), service.NewArangoTxRunner(client), func() { _ = client.Close() }, nil

	default:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, nil, err
		}
		slog.InfoContext(ctx, "database connected")
		return store.NewStores(database.Queries()), service.NewTxRunner(database), database.Close, nil
	}
}

// openProducer publishes to a Redis stream when REDIS_URL is set.
func openProducer(ctx context.Context, cfg config.EventsConfig) (queue.Producer, error) {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "event stream disabled (no redis url configured)")
		return queue.NewNoopProducer(), nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.RedisStream)

	return queue.NewRedisProducer(redisClient, cfg.RedisStream, slog.Default()), nil
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// OTel span first so Recovery and Logger records carry the trace.
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		StaticDir:        cfg.HTTP.StaticDir,
	})

	return router
}

const banner = `
 _____ _      _        _____
|_   _(_) ___| | __   | ____|_   _____
  | | | |/ __| |/ /   |  _| \ \ / / _ \
  | | | | (__|   <    | |___ \ V / (_) |
  |_| |_|\___|_|\_\   |_____| \_/ \___/
`
