package consumer

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/aciertos-worker/dto"
	"github.com/radieske/quiniela-backoffice/internal/settlement"
	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

type Recalculator interface {
	Recalcular(ctx context.Context, agentID, fecha string) (settlement.Snapshot, error)
	RecalcularFecha(ctx context.Context, fecha string) (settlement.FanOutReport, error)
}

// Processor consome um tópico gatilho e recalcula o agente (ou a data inteira).
// Falha persistente vai para a DLQ depois das tentativas.
type Processor struct {
	Log     *zap.Logger
	Topic   string
	Reader  kafka.MessageReader
	Topics  dto.Topics
	Recalc  Recalculator
	DLQ     kafka.MessageWriter // opcional
	Retries int                 // tentativas extras (default 3)
	Backoff time.Duration       // base do backoff linear (default 300ms)

	OnConsumed func(topic string)
	OnError    func(stage string)
	OnDLQ      func()
}

// Run consome até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		msg, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read", zap.String("topic", p.Topic), zap.Error(err))
			p.fail("read")
			time.Sleep(time.Second)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed(p.Topic)
		}

		t, err := p.Topics.Decode(p.Topic, msg.Value)
		if err != nil {
			p.Log.Error("decode trigger", zap.String("topic", p.Topic), zap.Error(err))
			p.fail("decode")
			continue
		}
		p.Process(ctx, t)
	}
}

// Process executa um gatilho com retry; o que sobrar de falha vai para a DLQ
func (p *Processor) Process(ctx context.Context, t dto.Trigger) {
	if t.AgentID != "" {
		err := p.retry(ctx, func() error {
			_, err := p.Recalc.Recalcular(ctx, t.AgentID, t.Fecha)
			return err
		})
		if err != nil {
			p.dead(ctx, t, t.AgentID, err)
		}
		return
	}

	// data inteira: depois da primeira passada, só os agentes que falharam são refeitos
	var fallidos map[string]string
	err := p.retry(ctx, func() error {
		if fallidos == nil {
			rep, err := p.Recalc.RecalcularFecha(ctx, t.Fecha)
			if len(rep.Fallidos) > 0 {
				fallidos = rep.Fallidos
			}
			return err
		}
		var errs error
		for ag := range fallidos {
			if _, err := p.Recalc.Recalcular(ctx, ag, t.Fecha); err != nil {
				fallidos[ag] = err.Error()
				errs = multierr.Append(errs, err)
				continue
			}
			delete(fallidos, ag)
		}
		return errs
	})
	if err == nil {
		return
	}
	if len(fallidos) == 0 {
		p.dead(ctx, t, "", err)
		return
	}
	agentes := make([]string, 0, len(fallidos))
	for ag := range fallidos {
		agentes = append(agentes, ag)
	}
	sort.Strings(agentes)
	for _, ag := range agentes {
		p.dead(ctx, t, ag, errors.New(fallidos[ag]))
	}
}

func (p *Processor) retry(ctx context.Context, fn func() error) error {
	retries := p.Retries
	if retries <= 0 {
		retries = 3
	}
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 300 * time.Millisecond
	}

	err := fn()
	for i := 0; err != nil; i++ {
		p.fail("recalculo")
		if permanent(err) || i >= retries {
			return err
		}
		select {
		case <-ctx.Done():
			return multierr.Append(err, ctx.Err())
		case <-time.After(time.Duration(i+1) * backoff):
		}
		err = fn()
	}
	return nil
}

// erros de entrada não melhoram com retry
func permanent(err error) bool {
	return errors.Is(err, settlement.ErrInvalidFecha) || errors.Is(err, settlement.ErrAgenteVacio)
}

func (p *Processor) dead(ctx context.Context, t dto.Trigger, agentID string, cause error) {
	p.Log.Error("recalculo fallido",
		zap.String("origen", t.Origen),
		zap.String("agente", agentID),
		zap.String("fecha", t.Fecha),
		zap.Error(cause),
	)
	if p.DLQ == nil {
		return
	}
	attempts := p.Retries + 1
	if p.Retries <= 0 {
		attempts = 4
	}
	if permanent(cause) {
		attempts = 1
	}
	msg := events.RecalculoFallido{
		AgentID:  agentID,
		Fecha:    t.Fecha,
		Origen:   t.Origen,
		Error:    cause.Error(),
		Attempts: attempts,
		Ts:       time.Now().UTC(),
	}
	if err := kafka.PublishJSON(ctx, p.DLQ, agentID+"|"+t.Fecha, msg); err != nil {
		p.Log.Error("dlq publish", zap.Error(err))
		p.fail("dlq")
		return
	}
	if p.OnDLQ != nil {
		p.OnDLQ()
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
