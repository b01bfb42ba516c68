package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// Publisher é o subconjunto do cliente Redis usado aqui
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisBroadcaster anuncia saldos recalculados no canal configurado
type RedisBroadcaster struct {
	r       Publisher
	channel string
}

func NewRedisBroadcaster(r Publisher, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) NotifySaldo(ctx context.Context, ev events.SaldoActualizado) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
