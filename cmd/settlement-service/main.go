package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/settlement"
	"github.com/radieske/quiniela-backoffice/internal/settlement/cache"
	httpapi "github.com/radieske/quiniela-backoffice/internal/settlement/http"
	"github.com/radieske/quiniela-backoffice/internal/settlement/pubsub"
	"github.com/radieske/quiniela-backoffice/internal/settlement/repo"
	sharedcache "github.com/radieske/quiniela-backoffice/internal/shared/cache"
	"github.com/radieske/quiniela-backoffice/internal/shared/config"
	"github.com/radieske/quiniela-backoffice/internal/shared/db"
	"github.com/radieske/quiniela-backoffice/internal/shared/logger"
	"github.com/radieske/quiniela-backoffice/internal/shared/metrics"
	"github.com/radieske/quiniela-backoffice/internal/shared/middleware"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	if cfg.MigrateOnStart {
		if err := db.Migrate(pg); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
		log.Info("migrations applied")
	}

	// conecta com cache Redis
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	recalcs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_recalculo_seconds",
		Help:    "duração de um recálculo interativo",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	prometheus.MustRegister(recalcs)

	pgRepo := repo.NewPostgres(pg)
	readCache := cache.NewRedisCache(redisClient, cfg.CacheTTL)
	svc := &settlement.Service{
		Log:         log,
		Bets:        pgRepo,
		Extractos:   pgRepo,
		Ledger:      pgRepo,
		Store:       pgRepo,
		Cache:       readCache,
		Notifier:    pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel),
		Parallelism: cfg.FanOutParallelism,
		OnRecalculo: func(d time.Duration, err error) {
			result := "ok"
			if err != nil {
				result = "error"
			}
			recalcs.WithLabelValues(result).Observe(d.Seconds())
		},
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	api := &httpapi.API{
		Log:      log,
		Svc:      svc,
		ReadRepo: pgRepo,
		Cache:    readCache,
		Limiter:  limiter,
		Origins:  cfg.CORSOrigins,
	}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// métricas e health: valida dependências críticas
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.All(
		pg.PingContext,
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	), log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// limpa limitadores de clientes inativos
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				limiter.Cleanup(5 * time.Minute)
			}
		}
	}()

	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("settlement-service stopped")
}
