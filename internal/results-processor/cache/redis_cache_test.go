package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

type memRedis struct {
	redis.Cmdable
	data map[string][]byte
	ttl  time.Duration
}

func (m *memRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = value.([]byte)
	m.ttl = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestSetExtracto(t *testing.T) {
	m := &memRedis{data: map[string][]byte{}}
	c := NewRedisCache(m, 48*time.Hour)

	ev := events.ExtractoPublicado{Fecha: "2024-05-10", Provincia: "CORDOBA", Sorteo: "VESPERTINA", Numeros: []string{"0001"}}
	require.NoError(t, c.SetExtracto(context.Background(), ev))

	raw, ok := m.data["extracto:2024-05-10:CORDOBA:VESPERTINA"]
	require.True(t, ok)
	assert.Equal(t, 48*time.Hour, m.ttl)

	var got events.ExtractoPublicado
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, ev.Numeros, got.Numeros)
}
