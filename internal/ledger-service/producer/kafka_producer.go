package producer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// KafkaPublisher emite movimiento_registrado, chaveado por agente|fecha
type KafkaPublisher struct {
	Writer kafka.MessageWriter
}

func NewKafkaPublisher(w kafka.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishMovimiento(ctx context.Context, e events.MovimientoRegistrado) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	e.Ts = time.Now().UTC()
	return kafka.PublishJSON(ctx, p.Writer, e.AgentID+"|"+e.Fecha, e)
}
