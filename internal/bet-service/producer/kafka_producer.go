package producer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer kafka.MessageWriter
}

func NewKafkaPublisher(w kafka.MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

// PublishApuesta emite apuesta_registrada com chave agente|fecha
func (p *KafkaPublisher) PublishApuesta(ctx context.Context, e events.ApuestaRegistrada) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	e.Ts = time.Now().UTC()
	return kafka.PublishJSON(ctx, p.Writer, e.AgentID+"|"+e.Fecha, e)
}
