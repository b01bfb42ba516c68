package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/gateway"
	"github.com/radieske/quiniela-backoffice/internal/shared/config"
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

	h, err := gateway.New(log, gateway.Targets{
		Bets:       cfg.BetURL,
		Ledger:     cfg.LedgerURL,
		Settlement: cfg.SettlementURL,
	}, cfg.CORSOrigins)
	if err != nil {
		log.Fatal("gateway config", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Info("api-gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("gateway failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
