package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	bhttp "github.com/radieske/quiniela-backoffice/internal/bet-service/http"
	kpub "github.com/radieske/quiniela-backoffice/internal/bet-service/producer"
	"github.com/radieske/quiniela-backoffice/internal/bet-service/repo"
	"github.com/radieske/quiniela-backoffice/internal/bet-service/sorteos"
	"github.com/radieske/quiniela-backoffice/internal/shared/cache"
	"github.com/radieske/quiniela-backoffice/internal/shared/config"
	"github.com/radieske/quiniela-backoffice/internal/shared/db"
	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/internal/shared/logger"
	"github.com/radieske/quiniela-backoffice/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()
	if cfg.MigrateOnStart {
		if err := db.Migrate(pg); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	// Redis (extratos já publicados)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic apuesta_registrada)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicApuestaRegistrada)
	defer writer.Close()

	api := bhttp.NewServer(log, repo.NewPostgres(pg), sorteos.NewValidator(rdb), kpub.NewKafkaPublisher(writer))
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.All(
		pg.PingContext,
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	), log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("bet-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("bet-service stopped")
}
