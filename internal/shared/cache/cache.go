package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

// GetJSON lê a chave e desserializa em dst; false quando a chave não existe
func GetJSON(ctx context.Context, r redis.Cmdable, key string, dst any) (bool, error) {
	b, err := r.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

// SetJSON grava v serializado com TTL
func SetJSON(ctx context.Context, r redis.Cmdable, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, b, ttl).Err()
}

// ExtractoKey identifica um slot (fecha, provincia, sorteo) já sorteado.
// Escrito pelo results-processor e lido pelo bet-service.
func ExtractoKey(fecha, provincia, sorteo string) string {
	return "extracto:" + fecha + ":" + provincia + ":" + sorteo
}
