// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-co-op/gocron/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ratedrps/ratedrps-service/internal/auth"
	"github.com/ratedrps/ratedrps-service/internal/cache"
	"github.com/ratedrps/ratedrps-service/internal/config"
	"github.com/ratedrps/ratedrps-service/internal/database"
	"github.com/ratedrps/ratedrps-service/internal/game"
	"github.com/ratedrps/ratedrps-service/internal/handlers"
	"github.com/ratedrps/ratedrps-service/internal/middleware"
	"github.com/ratedrps/ratedrps-service/internal/monitor"
	"github.com/ratedrps/ratedrps-service/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	if cfg.JWTSecret != "" {
		if err := auth.InitWithSecret(cfg.JWTSecret); err != nil {
			logger.Fatalf("auth init failed: %v", err)
		}
	} else {
		logger.Warn("JWT_SECRET not set; using an ephemeral signing key")
		if err := auth.Init(); err != nil {
			logger.Fatalf("auth init failed: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := monitor.NewMetrics("ratedrps", prometheus.DefaultRegisterer)

	var (
		stats   game.StatsStore
		archive game.MatchArchive
		players handlers.PlayerStore
		avatars handlers.AvatarStore
	)

	pool, err := database.ConnectDB(ctx)
	if err != nil {
		logger.Warnf("postgres unavailable, ratings will not be persisted: %v", err)
	} else {
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Fatalf("schema setup failed: %v", err)
		}
		store := database.NewStore(pool)
		stats, archive, players = store, store, store
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Warnf("redis unavailable, archiving matches directly: %v", err)
	} else {
		defer rdb.Close()
		archive = cache.NewMatchQueue(rdb, cfg.ArchiveQueue)
	}

	if cfg.Avatars.Enabled() {
		client, err := storage.NewS3Client(ctx, cfg.Avatars)
		if err != nil {
			logger.Warnf("avatar storage disabled: %v", err)
		} else {
			avatars = storage.NewAvatars(client, cfg.Avatars.Bucket, cfg.Avatars.PublicBaseURL, cfg.Avatars.MaxBytes)
		}
	}

	coord := game.NewCoordinator(logger, stats, archive, metrics)
	coord.CallTimeout = cfg.CallTimeout

	sched, err := startJobs(coord, cfg, logger)
	if err != nil {
		logger.Fatalf("scheduler setup failed: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(middleware.LogMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers.NewAPIServer(logger, players, avatars).Routes(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws/game", handlers.GameWSHandler(logger, coord, metrics))

	// Websocket handlers run on this context so shutdown reaches hijacked connections.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	cancelBase()
	if err := sched.Shutdown(); err != nil {
		logger.Warnf("scheduler shutdown: %v", err)
	}
	coord.Wait()
	logger.Info("shutdown complete")
}

// startJobs schedules the occupancy gauge refresh and, when enabled, the idle match sweep.
func startJobs(coord *game.Coordinator, cfg config.Config, logger *logrus.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(15*time.Second),
		gocron.NewTask(coord.RefreshMetrics),
	); err != nil {
		return nil, err
	}

	if cfg.MatchIdleTimeout > 0 {
		every := cfg.MatchIdleTimeout / 4
		if every < time.Second {
			every = time.Second
		}
		_, err := sched.NewJob(
			gocron.DurationJob(every),
			gocron.NewTask(func() {
				if n := coord.ExpireIdleMatches(context.Background(), cfg.MatchIdleTimeout); n > 0 {
					logger.Infof("expired %d idle matches", n)
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, err
		}
	}

	sched.Start()
	return sched, nil
}
