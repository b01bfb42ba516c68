package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	lhttp "github.com/radieske/quiniela-backoffice/internal/ledger-service/http"
	lpub "github.com/radieske/quiniela-backoffice/internal/ledger-service/producer"
	lrepo "github.com/radieske/quiniela-backoffice/internal/ledger-service/repo"
	"github.com/radieske/quiniela-backoffice/internal/shared/config"
	"github.com/radieske/quiniela-backoffice/internal/shared/db"
	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/internal/shared/logger"
	"github.com/radieske/quiniela-backoffice/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("ledger-service", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "ledger-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres para pagos/cobros
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()
	if cfg.MigrateOnStart {
		if err := db.Migrate(pg); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	// Cada movimento novo dispara recálculo do agente no aciertos-worker
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMovimientoRegistrado)
	defer writer.Close()

	api := lhttp.NewServer(log, lrepo.NewPostgres(pg), lpub.NewKafkaPublisher(writer))

	// Servidor HTTP público (API do ledger)
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort, // ex: 8082
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Servidor de métricas e health check, ex: 9098
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("api listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api srv", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
