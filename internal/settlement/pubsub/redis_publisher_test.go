package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

type capture struct {
	channel string
	payload []byte
}

func (c *capture) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	c.channel = channel
	c.payload = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func TestNotifySaldo(t *testing.T) {
	c := &capture{}
	b := NewRedisBroadcaster(c, "saldos_actualizados")

	err := b.NotifySaldo(context.Background(), events.SaldoActualizado{
		AgentID:  "ag1",
		Fecha:    "2024-05-10",
		Saldo:    decimal.RequireFromString("-561.00"),
		Premios:  decimal.NewFromInt(700),
		Aciertos: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "saldos_actualizados", c.channel)
	var got map[string]any
	require.NoError(t, json.Unmarshal(c.payload, &got))
	assert.Equal(t, "ag1", got["agente"])
	assert.Equal(t, "-561", got["saldo"])
}
