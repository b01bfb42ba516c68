package feed

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// DefaultProvincias publicam todas as sessões do dia
var DefaultProvincias = []string{"NACION", "PROVIN", "CORDOB", "SANTAF", "ENTRER", "MENDOZ"}

// Generator produz extratos simulados. Os números de um slot (fecha, provincia, sorteo)
// são sempre os mesmos, então reenvios não mudam o resultado.
type Generator struct {
	Provincias []string
	Source     string
}

// Extracto gera a lista de 20 números do slot
func (g Generator) Extracto(fecha, provincia string, s quiniela.Sorteo) events.ExtractoPublicado {
	hs := fnv.New64a()
	_, _ = hs.Write([]byte(fecha + "|" + provincia + "|" + string(s)))
	r := rand.New(rand.NewSource(int64(hs.Sum64())))

	nums := make([]string, quiniela.TotalUbicaciones)
	for i := range nums {
		nums[i] = fmt.Sprintf("%04d", r.Intn(10000))
	}
	if !quiniela.Complete(nums) {
		nums[0] = "0001"
	}
	return events.ExtractoPublicado{
		Fecha:     fecha,
		Provincia: provincia,
		Loteria:   provincia,
		Sorteo:    string(s),
		Numeros:   nums,
		Source:    g.Source,
	}
}

// Sorteados retorna os extratos de todas as sessões já fechadas no dia de `now`
func (g Generator) Sorteados(now time.Time) []events.ExtractoPublicado {
	provs := g.Provincias
	if len(provs) == 0 {
		provs = DefaultProvincias
	}
	fecha := now.In(quiniela.Location()).Format(quiniela.FechaLayout)

	var out []events.ExtractoPublicado
	for _, s := range quiniela.Sorteos {
		if !s.Cerrado(fecha, now) {
			continue
		}
		for _, p := range provs {
			ev := g.Extracto(fecha, p, s)
			ev.PublishedAt = now.UTC()
			out = append(out, ev)
		}
	}
	return out
}
