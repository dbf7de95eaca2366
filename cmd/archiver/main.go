// cmd/archiver/main.go drains resolved matches from the Redis queue into the matches table.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/ratedrps/ratedrps-service/internal/archive"
	"github.com/ratedrps/ratedrps-service/internal/cache"
	"github.com/ratedrps/ratedrps-service/internal/config"
	"github.com/ratedrps/ratedrps-service/internal/database"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.ConnectDB(ctx)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("schema setup failed: %v", err)
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	queue := cache.NewMatchQueue(rdb, cfg.ArchiveQueue)
	if n, err := queue.Len(ctx); err == nil {
		logger.Infof("%d matches waiting in %s", n, cfg.ArchiveQueue)
	}

	a := archive.New(queue, database.NewStore(pool), logger, archive.Options{
		BatchSize:  cfg.ArchiveBatchSize,
		FlushEvery: cfg.ArchiveFlush,
	})
	if err := a.Run(ctx); err != nil {
		logger.Fatalf("archiver: %v", err)
	}
	logger.Info("Archiver shutdown complete.")
}
