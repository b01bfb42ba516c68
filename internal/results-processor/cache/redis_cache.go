package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	sharedcache "github.com/radieske/quiniela-backoffice/internal/shared/cache"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// RedisCache guarda extratos completos; o bet-service consulta a existência da chave
// para recusar apostas num slot já sorteado.
type RedisCache struct {
	Client redis.Cmdable
	TTL    time.Duration
}

func NewRedisCache(c redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

func (r *RedisCache) SetExtracto(ctx context.Context, e events.ExtractoPublicado) error {
	return sharedcache.SetJSON(ctx, r.Client, sharedcache.ExtractoKey(e.Fecha, e.Provincia, e.Sorteo), e, r.TTL)
}
