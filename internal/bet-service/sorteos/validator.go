package sorteos

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	sharedcache "github.com/radieske/quiniela-backoffice/internal/shared/cache"
)

// Validator consulta no Redis se o extrato de um slot já foi publicado
type Validator struct {
	Rdb redis.Cmdable
}

func NewValidator(r redis.Cmdable) *Validator { return &Validator{Rdb: r} }

// Sorteados retorna as províncias da aposta cujo extrato já saiu.
// Chave "extracto:{fecha}:{provincia canônica}:{sorteo}".
func (v *Validator) Sorteados(ctx context.Context, b quiniela.Bet) ([]string, error) {
	var out []string
	for _, code := range b.Provincias {
		prov := quiniela.CanonicalProvince(code)
		n, err := v.Rdb.Exists(ctx, sharedcache.ExtractoKey(b.Fecha, prov, string(b.Sorteo))).Result()
		if err != nil {
			return nil, fmt.Errorf("redis exists: %w", err)
		}
		if n > 0 {
			out = append(out, prov)
		}
	}
	return out, nil
}
