package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/arena/common/id"
	"basegraph.app/arena/common/logger"
	"basegraph.app/arena/common/otel"
	"basegraph.app/arena/core/config"
	"basegraph.app/arena/core/db"
	"basegraph.app/arena/internal/catalog"
	"basegraph.app/arena/internal/debate"
	"basegraph.app/arena/internal/queue"
	"basegraph.app/arena/internal/service"
	"basegraph.app/arena/internal/store"
	"basegraph.app/arena/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "arena worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Queue.JobGroup,
		"consumer_name", cfg.Queue.JobConsumer)

	// Different node ID than the server
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
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
		slog.InfoContext(ctx, "database connected")
	}

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.JobStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Queue.JobStream,
		Group:        cfg.Queue.JobGroup,
		Consumer:     cfg.Queue.JobConsumer,
		DLQStream:    cfg.Queue.JobDLQStream,
		BatchSize:    1, // One debate at a time
		Block:        5 * time.Second,
		MaxAttempts:  cfg.Queue.MaxAttempts,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	broadcaster := queue.NewRedisBroadcaster(redisClient, queue.BroadcastConfig{
		TTL:    cfg.Queue.EventStreamTTL,
		MaxLen: cfg.Queue.EventStreamLen,
	})

	services := service.NewServices(service.ServicesConfig{
		Catalog:       cat,
		Composer:      debate.NewComposer(cfg.Debate.Language, cfg.Debate.MaxChars),
		Broadcaster:   broadcaster,
		DefaultRounds: cfg.Debate.DefaultRounds,
	})

	w := worker.New(consumer, services.Debates(), broadcaster, worker.Config{
		MaxAttempts: cfg.Queue.MaxAttempts,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:        cfg.Queue.JobStream,
		Group:         cfg.Queue.JobGroup,
		Consumer:      cfg.Queue.JobConsumer + "-reclaimer",
		MinIdle:       cfg.Queue.ReclaimMinIdle,
		Interval:      cfg.Queue.ReclaimInterval,
		MaxDeliveries: cfg.Queue.MaxDeliveries,
		BatchSize:     10,
	}, consumer, broadcaster, w.HandleMessage)

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Reclaimer first (quick), then the worker which may be mid-debate
	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
 █████╗ ██████╗ ███████╗███╗   ██╗ █████╗     ██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗███████╗██████╗
██╔══██╗██╔══██╗██╔════╝████╗  ██║██╔══██╗    ██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝██╔════╝██╔══██╗
███████║██████╔╝█████╗  ██╔██╗ ██║███████║    ██║ █╗ ██║██║   ██║██████╔╝█████╔╝ █████╗  ██████╔╝
██╔══██║██╔══██╗██╔══╝  ██║╚██╗██║██╔══██║    ██║███╗██║██║   ██║██╔══██╗██╔═██╗ ██╔══╝  ██╔══██╗
██║  ██║██║  ██║███████╗██║ ╚████║██║  ██║    ╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗███████╗██║  ██║
╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═══╝╚═╝  ╚═╝     ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
