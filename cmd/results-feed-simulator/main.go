package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/results-feed-simulator/feed"
	"github.com/radieske/quiniela-backoffice/internal/shared/config"
	"github.com/radieske/quiniela-backoffice/internal/shared/logger"
	"github.com/radieske/quiniela-backoffice/internal/shared/metrics"
)

// Métricas Prometheus para monitoramento de conexões e mensagens
var (
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "results_feed_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "results_feed_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(wsConnections, wsMessagesSent)

	h := feed.NewHub(log)
	h.OnConnect = func(delta int) { wsConnections.Add(float64(delta)) }
	h.OnSent = wsMessagesSent.Inc

	gen := feed.Generator{Source: cfg.ServiceName}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Reenvia a cada 5s os extratos das sessões já fechadas; o processor ignora slots finalizados
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				for _, ev := range gen.Sorteados(now) {
					h.Broadcast(ev)
				}
			}
		}
	}()

	// MUX PÚBLICO: /ws e /extractos
	appMux := http.NewServeMux()
	appMux.HandleFunc("/ws", h.ServeWS)
	appMux.HandleFunc("/extractos", h.PublishHandler)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           appMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil, log)

	go func() {
		log.Info("results feed simulator running",
			zap.String("addr", srv.Addr),
			zap.String("paths", "/ws,/extractos"),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
