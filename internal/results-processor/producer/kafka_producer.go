package producer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// KafkaPublisher emite extracto_actualizado; a chave é a fecha, que é o que o recálculo usa
type KafkaPublisher struct {
	Writer kafka.MessageWriter
}

func NewKafkaPublisher(w kafka.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishActualizado(ctx context.Context, e events.ExtractoActualizado) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	return kafka.PublishJSON(ctx, p.Writer, e.Fecha, e)
}
