package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/results-ingest/publisher"
	"github.com/radieske/quiniela-backoffice/internal/results-ingest/service"
	"github.com/radieske/quiniela-backoffice/internal/shared/config"
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

	log.Info("Kafka brokers", zap.String("brokers", cfg.KafkaBrokers))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Em local/dev os tópicos são criados no boot (single-broker)
	if cfg.Env == "local" || cfg.Env == "dev" {
		tctx, tcancel := context.WithTimeout(ctx, 10*time.Second)
		if err := kafka.EnsureTopics(tctx, cfg.KafkaBrokers, log,
			cfg.TopicExtractos, cfg.TopicExtractoActualizado,
			cfg.TopicApuestaRegistrada, cfg.TopicMovimientoRegistrado, cfg.TopicRecalculoDLQ,
		); err != nil {
			log.Warn("ensure topics", zap.Error(err))
		}
		tcancel()
	}

	// Kafka Publisher
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicExtractos)
	defer writer.Close()
	pub := publisher.NewKafkaPublisher(writer, log)

	received := prometheus.NewCounter(prometheus.CounterOpts{Name: "results_ingest_messages_received_total", Help: "mensagens recebidas do feed"})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "results_ingest_messages_rejected_total", Help: "mensagens descartadas (json/normalização)"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "results_ingest_extractos_published_total", Help: "extratos publicados no Kafka"})
	prometheus.MustRegister(received, rejected, published)

	// WS Client
	wsClient := &service.WSClient{
		URL:         cfg.ResultsFeedURL,
		Log:         log,
		Publisher:   pub,
		OnReceived:  received.Inc,
		OnRejected:  rejected.Inc,
		OnPublished: published.Inc,
	}

	// Metrics e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil, log)

	wsClient.Start(ctx)
	log.Info("shutdown signal received")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	_ = metricsSrv.Shutdown(shutdownCtx)
}
