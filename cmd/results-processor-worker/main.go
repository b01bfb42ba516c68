package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/results-processor/cache"
	"github.com/radieske/quiniela-backoffice/internal/results-processor/consumer"
	"github.com/radieske/quiniela-backoffice/internal/results-processor/producer"
	"github.com/radieske/quiniela-backoffice/internal/results-processor/repository"
	sharedcache "github.com/radieske/quiniela-backoffice/internal/shared/cache"
	"github.com/radieske/quiniela-backoffice/internal/shared/config"
	"github.com/radieske/quiniela-backoffice/internal/shared/db"
	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/internal/shared/logger"
	"github.com/radieske/quiniela-backoffice/internal/shared/metrics"
)

// extrato completo fica no Redis até o dia seguinte fechar
const extractoTTL = 48 * time.Hour

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
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

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group results-processor
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicExtractos, "results-processor")
	defer reader.Close()

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicExtractoActualizado)
	defer writer.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "results_proc_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "results_proc_db_writes_total", Help: "slots gravados (append-merge)"})
	completed := prometheus.NewCounter(prometheus.CounterOpts{Name: "results_proc_slots_completed_total", Help: "slots que ficaram completos"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "results_proc_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, completed, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repository.NewPostgresRepo(pg),
		Cache:       cache.NewRedisCache(redisClient, extractoTTL),
		Publisher:   producer.NewKafkaPublisher(writer),
		OnConsumed:  consumed.Inc,
		OnPersist:   persist.Inc,
		OnCompleted: completed.Inc,
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.All(
		pg.PingContext,
		func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	), log)

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("results-processor started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("results-processor stopped")
}
