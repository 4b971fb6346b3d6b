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

	"basegraph.app/arena/common/id"
	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/common/otel"
	"basegraph.app/arena/core/config"
	"basegraph.app/arena/core/db"
	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/http/middleware"
	httprouter "basegraph.app/arena/internal/http/router"
	"basegraph.app/arena/internal/queue"
	"basegraph.app/arena/internal/service"
	"basegraph.app/arena/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
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

	slog.InfoContext(ctx, "arena starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.Catalog.File,
		catalog.WithCompleterPolicy(cfg.Debate.LLMTimeout, cfg.Debate.LLMRetries, time.Second))
	if err != nil {
		slog.ErrorContext(ctx, "failed to load catalog", "error", err, "file", cfg.Catalog.File)
		os.Exit(1)
	}

	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		cat, err = cat.Overlay(ctx, store.NewPersonaPresetStore(database.Queries()))
		if err != nil {
			slog.ErrorContext(ctx, "failed to load stored persona presets", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "database connected", "presets", len(cat.PresetsMeta()))
	}

	var (
		producer    queue.Producer
		broadcaster queue.Broadcaster
		redisClient *redis.Client
	)
	if cfg.Queue.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.JobStream)

		producer = queue.NewRedisProducer(redisClient, cfg.Queue.JobStream, slog.Default())
		defer producer.Close()

		broadcaster = queue.NewRedisBroadcaster(redisClient, queue.BroadcastConfig{
			TTL:    cfg.Queue.EventStreamTTL,
			MaxLen: cfg.Queue.EventStreamLen,
		})
	} else {
		slog.InfoContext(ctx, "redis disabled, async debates and spectators unavailable")
	}

	services := service.NewServices(service.ServicesConfig{
		Catalog:       cat,
		Composer:      debate.NewComposer(cfg.Debate.Language, cfg.Debate.MaxChars),
		Producer:      producer,
		Broadcaster:   broadcaster,
		DefaultRounds: cfg.Debate.DefaultRounds,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, redisClient)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Debates stream for minutes; handlers are bounded by the client and the LLM timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
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

func setupRouter(cfg config.Config, services *service.Services, redisClient *redis.Client) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		TraceHeaderName: cfg.Queue.TraceHeaderName,
		Redis:           redisClient,
	})

	return router
}

const banner = `
 █████╗ ██████╗ ███████╗███╗   ██╗ █████╗
██╔══██╗██╔══██╗██╔════╝████╗  ██║██╔══██╗
███████║██████╔╝█████╗  ██╔██╗ ██║███████║
██╔══██║██╔══██╗██╔══╝  ██║╚██╗██║██╔══██║
██║  ██║██║  ██║███████╗██║ ╚████║██║  ██║
╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═══╝╚═╝  ╚═╝
`
