package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	sharedcache "github.com/radieske/quiniela-backoffice/internal/shared/cache"
)

// versionTTL precisa superar o TTL das leituras
const versionTTL = 7 * 24 * time.Hour

// RedisCache guarda leituras de liquidaciones e saldos por (agente, fecha).
// As chaves levam a versão corrente do par; Invalidate troca a versão, então uma
// leitura preenchida com dado anterior ao recálculo fica numa chave que ninguém lê.
type RedisCache struct {
	Client redis.Cmdable
	TTL    time.Duration
	Now    func() time.Time
}

func NewRedisCache(c redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl, Now: time.Now}
}

func keyVersion(agentID, fecha string) string { return "liquidacion_version:" + agentID + ":" + fecha }
func keyLiquidacion(agentID, fecha, v string) string {
	return "liquidacion:" + agentID + ":" + fecha + ":" + v
}
func keySaldo(agentID, fecha, v string) string { return "saldo:" + agentID + ":" + fecha + ":" + v }

// Version retorna a versão corrente do par; "0" se nunca houve recálculo
func (r *RedisCache) Version(ctx context.Context, agentID, fecha string) (string, error) {
	v, err := r.Client.Get(ctx, keyVersion(agentID, fecha)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return v, err
}

func (r *RedisCache) GetLiquidacion(ctx context.Context, agentID, fecha, version string) (quiniela.Liquidacion, bool, error) {
	var liq quiniela.Liquidacion
	ok, err := sharedcache.GetJSON(ctx, r.Client, keyLiquidacion(agentID, fecha, version), &liq)
	return liq, ok, err
}

func (r *RedisCache) SetLiquidacion(ctx context.Context, agentID, fecha, version string, liq quiniela.Liquidacion) error {
	return sharedcache.SetJSON(ctx, r.Client, keyLiquidacion(agentID, fecha, version), liq, r.TTL)
}

func (r *RedisCache) GetSaldo(ctx context.Context, agentID, fecha, version string) (quiniela.Balance, bool, error) {
	var b quiniela.Balance
	ok, err := sharedcache.GetJSON(ctx, r.Client, keySaldo(agentID, fecha, version), &b)
	return b, ok, err
}

func (r *RedisCache) SetSaldo(ctx context.Context, agentID, fecha, version string, b quiniela.Balance) error {
	return sharedcache.SetJSON(ctx, r.Client, keySaldo(agentID, fecha, version), b, r.TTL)
}

// Invalidate troca a versão do par; chamado após cada recálculo.
// Timestamp em vez de contador: se a chave de versão expirar, a próxima nunca
// repete uma versão antiga.
func (r *RedisCache) Invalidate(ctx context.Context, agentID, fecha string) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	v := strconv.FormatInt(now().UnixNano(), 10)
	return r.Client.Set(ctx, keyVersion(agentID, fecha), v, versionTTL).Err()
}
