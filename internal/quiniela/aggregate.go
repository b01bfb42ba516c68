package quiniela

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Acierto é uma aposta premiada em uma província/sessão
type Acierto struct {
	BetSeq      int64           `json:"bet_seq"`
	Linea       int             `json:"linea"`
	Provincia   string          `json:"provincia"`
	Sorteo      Sorteo          `json:"sorteo"`
	Tipo        Tipo            `json:"tipo"`
	Numeros     []string        `json:"numeros"`
	Posiciones  []int           `json:"posiciones,omitempty"`
	Ganadores   []string        `json:"ganadores"`
	Ubicaciones []int           `json:"ubicaciones,omitempty"`
	Cifras      int             `json:"cifras,omitempty"`
	Aciertos    int             `json:"aciertos,omitempty"`
	Tramo       string          `json:"tramo,omitempty"`
	Importe     decimal.Decimal `json:"importe"`
	Premio      decimal.Decimal `json:"premio"`
}

// Liquidacion é o resultado do cruzamento de um dia: acertos por província e sessão
type Liquidacion struct {
	Aciertos map[string]map[Sorteo][]Acierto `json:"aciertos"`
	Premios  decimal.Decimal                 `json:"premios"`
	Jugado   decimal.Decimal                 `json:"jugado"`
	Apuestas int                             `json:"apuestas"`
	Omitidas int                             `json:"omitidas"`
}

// Count retorna a quantidade total de acertos
func (l Liquidacion) Count() int {
	n := 0
	for _, porSorteo := range l.Aciertos {
		for _, hits := range porSorteo {
			n += len(hits)
		}
	}
	return n
}

func (l *Liquidacion) add(a Acierto) {
	porSorteo, ok := l.Aciertos[a.Provincia]
	if !ok {
		porSorteo = map[Sorteo][]Acierto{}
		l.Aciertos[a.Provincia] = porSorteo
	}
	porSorteo[a.Sorteo] = append(porSorteo[a.Sorteo], a)
	l.Premios = l.Premios.Add(a.Premio)
}

// Aggregate cruza todas as apostas de um pasador/dia com os extratos do dia.
// Sempre recalcula do zero; apostas anuladas ou mal formadas são ignoradas.
func Aggregate(bets []Bet, extractos []Extracto, log *zap.Logger) Liquidacion {
	if log == nil {
		log = zap.NewNop()
	}
	liq := Liquidacion{
		Aciertos: map[string]map[Sorteo][]Acierto{},
		Premios:  decimal.Zero,
		Jugado:   decimal.Zero,
	}

	porProvincia := indexExtractos(extractos)

	ordered := make([]Bet, len(bets))
	copy(ordered, bets)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	for _, b := range ordered {
		if b.Anulada {
			continue
		}
		liq.Apuestas++
		liq.Jugado = liq.Jugado.Add(b.Importe())

		if err := b.Validate(); err != nil {
			liq.Omitidas++
			log.Warn("apuesta omitida",
				zap.Int64("seq", b.Seq),
				zap.String("agente", b.AgentID),
				zap.Error(err),
			)
			continue
		}

		provs := distinctProvinces(b.Provincias)
		for _, prov := range provs {
			ext, ok := porProvincia[prov]
			if !ok || !MatchesLoteria(b.Loteria, ext.LoteriaDe(b.Sorteo)) {
				continue
			}
			winning, ok := ext.Winning(b.Sorteo)
			if !ok {
				continue
			}
			for _, a := range matchBet(b, len(provs), winning) {
				a.Provincia = prov
				a.Sorteo = b.Sorteo
				liq.add(a)
			}
		}
	}
	return liq
}

// matchBet despacha pela variante da jogada
func matchBet(b Bet, nProvincias int, winning []string) []Acierto {
	base := Acierto{BetSeq: b.Seq, Tipo: b.Tipo()}

	switch j := b.Jugada.(type) {
	case Quiniela:
		var out []Acierto
		porProvincia := decimal.NewFromInt(int64(nProvincias))
		for i, l := range j.Lineas {
			hit, ok := MatchQuiniela(l.Numero, l.Posicion, winning)
			if !ok {
				continue
			}
			a := base
			a.Linea = i
			a.Numeros = []string{l.Numero}
			a.Posiciones = []int{l.Posicion}
			a.Ganadores = []string{hit.Ganador}
			a.Ubicaciones = []int{hit.Ubicacion}
			a.Cifras = hit.Cifras
			a.Importe = l.Importe
			a.Premio = PremioQuiniela(hit.Cifras, l.Posicion, l.Importe.Div(porProvincia))
			out = append(out, a)
		}
		return out

	case Redoblona:
		hit, ok := MatchRedoblona(j, winning)
		if !ok {
			return nil
		}
		leg := j.Legs[hit.Leg]
		a := base
		a.Linea = hit.Leg
		a.Numeros = []string{j.Numero, leg.Numero}
		a.Posiciones = []int{j.Posicion, leg.Posicion}
		a.Ganadores = []string{hit.Original.Ganador, hit.LegGanador}
		a.Ubicaciones = []int{hit.Original.Ubicacion, hit.LegUbicacion}
		a.Cifras = hit.Original.Cifras
		a.Tramo = fmt.Sprintf("%d-%d", hit.PosOriginal, hit.PosLeg)
		a.Importe = j.Importe
		a.Premio = PremioRedoblona(j.Posicion, leg.Posicion, j.Importe)
		return []Acierto{a}

	case Triplona:
		hit, ok := MatchTriplona(j.Numeros, winning)
		if !ok {
			return nil
		}
		a := base
		a.Numeros = j.Numeros[:]
		a.Ganadores = winningSuffixes(winning, hit.Ventana)
		a.Aciertos = 3
		a.Tramo = hit.Tramo
		a.Importe = j.Importe
		a.Premio = PremioTriplona(hit.Tramo)
		return []Acierto{a}

	case Quintina:
		hit, ok := MatchQuintina(j.Numeros, winning)
		if !ok {
			return nil
		}
		return []Acierto{setAcierto(base, j.Numeros[:], hit, j.Importe, PremioQuintina(hit.Aciertos))}

	case Borratina:
		hit, ok := MatchBorratina(j.Numeros, winning)
		if !ok {
			return nil
		}
		return []Acierto{setAcierto(base, j.Numeros[:], hit, j.Importe, PremioBorratina(hit.Aciertos))}
	}
	return nil
}

func setAcierto(base Acierto, numeros []string, hit SetHit, importe, premio decimal.Decimal) Acierto {
	a := base
	a.Numeros = append([]string(nil), numeros...)
	a.Ganadores = hit.Ganadores
	a.Aciertos = hit.Aciertos
	a.Importe = importe
	a.Premio = premio
	return a
}

// winningSuffixes retorna as duas últimas cifras das primeiras n ubicaciones
func winningSuffixes(winning []string, n int) []string {
	if n > len(winning) {
		n = len(winning)
	}
	out := make([]string, 0, n)
	for _, w := range winning[:n] {
		if s, ok := suffix(w, 2); ok {
			out = append(out, s)
		}
	}
	return out
}

func indexExtractos(extractos []Extracto) map[string]Extracto {
	idx := make(map[string]Extracto, len(extractos))
	for _, e := range extractos {
		prov := CanonicalProvince(e.Provincia)
		cur, ok := idx[prov]
		if !ok {
			cp := e
			cp.Sorteos = make(map[Sorteo][]string, len(e.Sorteos))
			cp.Loterias = make(map[Sorteo]string, len(e.Sorteos))
			for s, nums := range e.Sorteos {
				cp.Sorteos[s] = nums
				cp.Loterias[s] = e.LoteriaDe(s)
			}
			idx[prov] = cp
			continue
		}
		// mesma província em mais de um documento: junta as sessões, a primeira completa prevalece
		for s, nums := range e.Sorteos {
			if _, done := cur.Winning(s); !done {
				cur.Sorteos[s] = nums
				cur.Loterias[s] = e.LoteriaDe(s)
			}
		}
	}
	return idx
}

func distinctProvinces(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		p := CanonicalProvince(c)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
