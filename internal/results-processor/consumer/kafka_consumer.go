package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

type Repo interface {
	Merge(ctx context.Context, e events.ExtractoPublicado) (completo, changed bool, err error)
}

type Cache interface {
	SetExtracto(ctx context.Context, e events.ExtractoPublicado) error
}

type Publisher interface {
	PublishActualizado(ctx context.Context, e events.ExtractoActualizado) error
}

// Processor consome extratos do Kafka, faz append-merge no banco e, quando um slot
// fica completo, atualiza o cache e avisa o aciertos-worker.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log       *zap.Logger
	Reader    kafka.MessageReader
	Repo      Repo
	Cache     Cache
	Publisher Publisher

	OnConsumed  func()       // métricas (counter++)
	OnPersist   func()       // métricas
	OnCompleted func()       // slot finalizado
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		p.Handle(ctx, m.Value)
	}
}

// Handle processa um extracto publicado
func (p *Processor) Handle(ctx context.Context, value []byte) {
	var ev events.ExtractoPublicado
	if err := json.Unmarshal(value, &ev); err != nil {
		p.Log.Warn("invalid message", zap.Error(err))
		p.fail("decode")
		return
	}
	log := p.Log.With(zap.String("fecha", ev.Fecha), zap.String("provincia", ev.Provincia), zap.String("sorteo", ev.Sorteo))

	completo, changed, err := p.Repo.Merge(ctx, ev)
	if err != nil {
		log.Warn("db merge failed", zap.Error(err))
		p.fail("db_merge")
		return
	}
	if !changed {
		log.Debug("slot ya finalizado, ignorado")
		return
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}
	if !completo {
		return
	}

	// Cache primeiro: o bet-service passa a recusar apostas no slot
	if err := p.Cache.SetExtracto(ctx, ev); err != nil {
		log.Warn("redis set failed", zap.Error(err))
		p.fail("cache")
	}

	if err := p.Publisher.PublishActualizado(ctx, events.ExtractoActualizado{
		Fecha:     ev.Fecha,
		Provincia: ev.Provincia,
		Sorteo:    ev.Sorteo,
	}); err != nil {
		log.Warn("publish extracto_actualizado failed", zap.Error(err))
		p.fail("publish")
		return
	}
	if p.OnCompleted != nil {
		p.OnCompleted()
	}
	log.Info("extracto completo")
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
