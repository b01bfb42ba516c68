package publisher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/quiniela-backoffice/internal/shared/kafka"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// KafkaPublisher encapsula o writer Kafka e o logger.
type KafkaPublisher struct {
	writer kafka.MessageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(w kafka.MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

// Key é a chave de partição de um slot; reenvios do mesmo slot caem na mesma partição, em ordem.
func Key(e events.ExtractoPublicado) string {
	return e.Fecha + "|" + e.Provincia + "|" + e.Sorteo
}

// Publish serializa o extrato e envia para o tópico configurado no writer.
func (p *KafkaPublisher) Publish(ctx context.Context, e events.ExtractoPublicado) error {
	if e.PublishedAt.IsZero() {
		e.PublishedAt = time.Now().UTC()
	}
	if err := kafka.PublishJSON(ctx, p.writer, Key(e), e); err != nil {
		p.log.Error("failed to publish extracto", zap.String("key", Key(e)), zap.Error(err))
		return err
	}
	p.log.Debug("published extracto", zap.String("key", Key(e)), zap.Int("numeros", len(e.Numeros)))
	return nil
}
