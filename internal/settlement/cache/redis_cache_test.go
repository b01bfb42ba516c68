package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
)

type memRedis struct {
	redis.Cmdable
	data map[string]string
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisCache(t *testing.T) {
	m := &memRedis{data: map[string]string{}}
	c := NewRedisCache(m, time.Minute)
	ctx := context.Background()

	v, err := c.Version(ctx, "ag1", "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	_, ok, err := c.GetSaldo(ctx, "ag1", "2024-05-10", v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetSaldo(ctx, "ag1", "2024-05-10", v, quiniela.Balance{Saldo: decimal.RequireFromString("-561.00")}))
	require.NoError(t, c.SetLiquidacion(ctx, "ag1", "2024-05-10", v, quiniela.Liquidacion{Premios: decimal.NewFromInt(700)}))
	assert.Contains(t, m.data, "saldo:ag1:2024-05-10:0")
	assert.Contains(t, m.data, "liquidacion:ag1:2024-05-10:0")

	b, ok, err := c.GetSaldo(ctx, "ag1", "2024-05-10", v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "-561", b.Saldo.String())

	liq, ok, err := c.GetLiquidacion(ctx, "ag1", "2024-05-10", v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "700", liq.Premios.String())
}

func TestRedisCache_InvalidateDescartaPreenchimentoAtrasado(t *testing.T) {
	m := &memRedis{data: map[string]string{}}
	c := NewRedisCache(m, time.Minute)
	c.Now = func() time.Time { return time.Unix(0, 42) }
	ctx := context.Background()

	// leitor pega a versão e lê o repo antes do commit do recálculo
	v, err := c.Version(ctx, "ag1", "2024-05-10")
	require.NoError(t, err)
	velho := quiniela.Balance{Saldo: decimal.NewFromInt(10)}

	// recálculo grava e invalida
	require.NoError(t, c.Invalidate(ctx, "ag1", "2024-05-10"))

	// leitor atrasado devolve o valor velho ao cache
	require.NoError(t, c.SetSaldo(ctx, "ag1", "2024-05-10", v, velho))

	atual, err := c.Version(ctx, "ag1", "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "42", atual)

	_, ok, err := c.GetSaldo(ctx, "ag1", "2024-05-10", atual)
	require.NoError(t, err)
	assert.False(t, ok, "valor anterior ao recálculo não pode ser servido")
}
