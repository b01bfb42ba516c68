package sorteos

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
)

type memRedis struct {
	redis.Cmdable
	keys map[string]bool
	err  error
}

func (m *memRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	var n int64
	for _, k := range keys {
		if m.keys[k] {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestSorteados(t *testing.T) {
	m := &memRedis{keys: map[string]bool{"extracto:2024-05-10:PROVINCIA:NOCTURNA": true}}
	v := NewValidator(m)

	b := quiniela.Bet{Fecha: "2024-05-10", Sorteo: quiniela.SorteoNocturna, Provincias: []string{"NACION", "PROVIN"}}
	provs, err := v.Sorteados(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []string{"PROVINCIA"}, provs)

	b.Sorteo = quiniela.SorteoPrevia
	provs, err = v.Sorteados(context.Background(), b)
	require.NoError(t, err)
	assert.Empty(t, provs)

	m.err = errors.New("redis down")
	_, err = v.Sorteados(context.Background(), b)
	assert.Error(t, err)
}
