package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/quiniela-backoffice/internal/aciertos-worker/consumer"
	"github.com/radieske/quiniela-backoffice/internal/aciertos-worker/dto"
	"github.com/radieske/quiniela-backoffice/internal/aciertos-worker/schedule"
	"github.com/radieske/quiniela-backoffice/internal/settlement"
	scache "github.com/radieske/quiniela-backoffice/internal/settlement/cache"
	"github.com/radieske/quiniela-backoffice/internal/settlement/pubsub"
	srepo "github.com/radieske/quiniela-backoffice/internal/settlement/repo"
	sharedcache "github.com/radieske/quiniela-backoffice/internal/shared/cache"
	"github.com/radieske/quiniela-backoffice/internal/shared/config"
	"github.com/radieske/quiniela-backoffice/internal/shared/db"
	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/internal/shared/logger"
	"github.com/radieske/quiniela-backoffice/internal/shared/metrics"
)

const consumerGroup = "aciertos-worker"

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres: apostas, extratos, ledger e fechamento
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()
	if cfg.MigrateOnStart {
		if err := db.Migrate(pg); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	// Redis: invalidação do cache de leitura e aviso de saldo novo
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Métricas Prometheus
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "aciertos_messages_consumed_total", Help: "gatilhos consumidos por tópico"}, []string{"topic"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "aciertos_errors_total", Help: "erros por estágio"}, []string{"stage"})
	dlqTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "aciertos_dlq_total", Help: "recálculos enviados à DLQ"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aciertos_recalculo_seconds",
		Help:    "duração de um recálculo (agente, fecha)",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	cierres := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "aciertos_cierres_total", Help: "fechamentos do dia"}, []string{"result"})
	prometheus.MustRegister(consumed, errorsBy, dlqTotal, duration, cierres)

	repo := srepo.NewPostgres(pg)
	svc := &settlement.Service{
		Log:         log,
		Bets:        repo,
		Extractos:   repo,
		Ledger:      repo,
		Store:       repo,
		Cache:       scache.NewRedisCache(rdb, cfg.CacheTTL),
		Notifier:    pubsub.NewRedisBroadcaster(rdb, cfg.RedisPubSubChannel),
		Parallelism: cfg.FanOutParallelism,
		OnRecalculo: func(d time.Duration, err error) {
			result := "ok"
			if err != nil {
				result = "error"
			}
			duration.WithLabelValues(result).Observe(d.Seconds())
		},
	}

	var dlq *kafka.Writer
	if cfg.TopicRecalculoDLQ != "" {
		dlq = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRecalculoDLQ)
		defer dlq.Close()
	}

	topics := dto.Topics{
		Apuesta:    cfg.TopicApuestaRegistrada,
		Movimiento: cfg.TopicMovimientoRegistrado,
		Extracto:   cfg.TopicExtractoActualizado,
	}

	// Servidor HTTP para métricas Prometheus e healthcheck
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.All(
		pg.PingContext,
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	), log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Fechamento do dia
	cierre := &schedule.Cierre{
		Log:     log,
		Recalc:  svc,
		Timeout: 10 * time.Minute,
		OnRun: func(_ settlement.FanOutReport, err error) {
			if err != nil {
				cierres.WithLabelValues("error").Inc()
				return
			}
			cierres.WithLabelValues("ok").Inc()
		},
	}
	cr, err := cierre.Start(ctx, cfg.EndOfDayCron)
	if err != nil {
		log.Fatal("cron", zap.Error(err))
	}

	// Um consumidor por tópico gatilho
	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range []string{topics.Apuesta, topics.Movimiento, topics.Extracto} {
		reader := kafka.NewReader(cfg.KafkaBrokers, topic, consumerGroup)
		defer reader.Close()

		p := &consumer.Processor{
			Log:        log,
			Topic:      topic,
			Reader:     reader,
			Topics:     topics,
			Recalc:     svc,
			OnConsumed: func(t string) { consumed.WithLabelValues(t).Inc() },
			OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
			OnDLQ:      dlqTotal.Inc,
		}
		if dlq != nil {
			p.DLQ = dlq
		}
		g.Go(func() error { return p.Run(gctx) })
	}

	log.Info("aciertos-worker started",
		zap.Strings("consume", []string{topics.Apuesta, topics.Movimiento, topics.Extracto}),
		zap.String("dlq", cfg.TopicRecalculoDLQ),
		zap.String("cron", cfg.EndOfDayCron),
	)

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error("consumer stopped with error", zap.Error(err))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	<-cr.Stop().Done()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("aciertos-worker stopped")
}
