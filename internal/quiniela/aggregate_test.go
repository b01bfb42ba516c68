package quiniela

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func placeholder() []string {
	out := make([]string, TotalUbicaciones)
	for i := range out {
		out[i] = "0000"
	}
	return out
}

func sampleExtractos() []Extracto {
	return []Extracto{
		{
			Fecha: "2024-05-10", Provincia: "NACION", Loteria: "NACIONAL",
			Sorteos: map[Sorteo][]string{
				SorteoMatutina: sampleWinning(),
				SorteoNocturna: placeholder(),
			},
		},
		{
			Fecha: "2024-05-10", Provincia: "MONTEVIDEO", Loteria: "MONTEVIDEO",
			Sorteos: map[Sorteo][]string{SorteoMatutina: triplonaWinning()},
		},
	}
}

func quinielaBet(seq int64, numero string, posicion int, importe string, provs ...string) Bet {
	return Bet{
		Seq: seq, AgentID: "p1", Fecha: "2024-05-10", Sorteo: SorteoMatutina,
		Provincias: provs,
		Jugada:     Quiniela{Lineas: []Linea{{Numero: numero, Posicion: posicion, Importe: dec(importe)}}},
	}
}

func TestAggregate_QuinielaSplitsAmountAcrossProvinces(t *testing.T) {
	bets := []Bet{quinielaBet(1, "34", 1, "10", "NACION", "URUGUA")}

	liq := Aggregate(bets, sampleExtractos(), zap.NewNop())

	require.Equal(t, 1, liq.Count())
	hits := liq.Aciertos["NACIONAL"][SorteoMatutina]
	require.Len(t, hits, 1)
	// 10 em 2 províncias => 5 × 70
	assert.True(t, hits[0].Premio.Equal(dec("350")), hits[0].Premio.String())
	assert.Equal(t, 2, hits[0].Cifras)
	assert.True(t, liq.Premios.Equal(dec("350")))
	assert.True(t, liq.Jugado.Equal(dec("10")))
}

func TestAggregate_CanonicalProvinceKeys(t *testing.T) {
	// MONTEVIDEO começa com 0012 na cabeza
	bets := []Bet{quinielaBet(1, "12", 1, "1", "URUGUA")}

	liq := Aggregate(bets, sampleExtractos(), zap.NewNop())

	require.Len(t, liq.Aciertos["MONTEVIDEO"][SorteoMatutina], 1)
}

func TestAggregate_VoidedBetNeverHits(t *testing.T) {
	b := quinielaBet(1, "1234", 1, "10", "NACION")
	b.Anulada = true

	liq := Aggregate([]Bet{b}, sampleExtractos(), zap.NewNop())

	assert.Equal(t, 0, liq.Count())
	assert.True(t, liq.Premios.IsZero())
	assert.True(t, liq.Jugado.IsZero(), "anulada não entra no jogado")
	assert.Equal(t, 0, liq.Apuestas)
}

func TestAggregate_SessionWildcard(t *testing.T) {
	for _, label := range []string{"", "TODAS", "todas las loterias"} {
		b := quinielaBet(1, "34", 1, "1", "NACION")
		b.Loteria = label
		liq := Aggregate([]Bet{b}, sampleExtractos(), zap.NewNop())
		assert.Equal(t, 1, liq.Count(), "label %q", label)
	}

	b := quinielaBet(1, "12", 1, "1", "URUGUA")
	b.Loteria = "LAPREVIA"
	liq := Aggregate([]Bet{b}, sampleExtractos(), zap.NewNop())
	assert.Equal(t, 0, liq.Count(), "MONTEVIDEO não sorteia a previa")

	b.Loteria = "matutina"
	liq = Aggregate([]Bet{b}, sampleExtractos(), zap.NewNop())
	assert.Equal(t, 1, liq.Count())
}

func TestAggregate_PlaceholderAndMissingResults(t *testing.T) {
	noct := quinielaBet(1, "34", 1, "1", "NACION")
	noct.Sorteo = SorteoNocturna
	missing := quinielaBet(2, "34", 1, "1", "CORDOB")

	liq := Aggregate([]Bet{noct, missing}, sampleExtractos(), zap.NewNop())

	assert.Equal(t, 0, liq.Count())
	assert.Equal(t, 2, liq.Apuestas)
}

func TestAggregate_MalformedBetIsSkipped(t *testing.T) {
	bad := quinielaBet(1, "", 1, "1", "NACION")
	good := quinielaBet(2, "34", 1, "1", "NACION")

	liq := Aggregate([]Bet{bad, good}, sampleExtractos(), zap.NewNop())

	assert.Equal(t, 1, liq.Count())
	assert.Equal(t, 1, liq.Omitidas)
}

func TestAggregate_RedoblonaPulaPernaInvalida(t *testing.T) {
	b := Bet{
		Seq: 1, AgentID: "p1", Fecha: "2024-05-10", Sorteo: SorteoMatutina, Provincias: []string{"NACION"},
		Jugada: Redoblona{
			Numero: "34", Posicion: 1, Importe: dec("10"),
			Legs: []RedoblonaLeg{{Numero: "78", Posicion: 1}, {Numero: "90", Posicion: 5}},
		},
	}

	liq := Aggregate([]Bet{b}, sampleExtractos(), zap.NewNop())

	assert.Equal(t, 0, liq.Omitidas)
	hits := liq.Aciertos["NACIONAL"][SorteoMatutina]
	require.Len(t, hits, 1)
	assert.Equal(t, "1-5", hits[0].Tramo)
	assert.Equal(t, []string{"34", "90"}, hits[0].Numeros)
	assert.True(t, liq.Premios.Equal(dec("12800")), liq.Premios.String())
}

func TestAggregate_LoteriaPorSesion(t *testing.T) {
	exts := []Extracto{{
		Fecha: "2024-05-10", Provincia: "NACION", Loteria: "MATUTINA",
		Loterias: map[Sorteo]string{SorteoMatutina: "MATUTINA", SorteoNocturna: "NOCTURNA"},
		Sorteos: map[Sorteo][]string{
			SorteoMatutina: sampleWinning(),
			SorteoNocturna: sampleWinning(),
		},
	}}
	b := quinielaBet(1, "34", 1, "10", "NACION")
	b.Sorteo = SorteoNocturna
	b.Loteria = "NOCTURNA"

	liq := Aggregate([]Bet{b}, exts, zap.NewNop())

	hits := liq.Aciertos["NACIONAL"][SorteoNocturna]
	require.Len(t, hits, 1, "etiqueta comparada é a da sessão, não a primeira da província")
	assert.True(t, hits[0].Premio.Equal(dec("700")), hits[0].Premio.String())
}

func TestAggregate_AllVariants(t *testing.T) {
	header := func(seq int64, j Jugada, provs ...string) Bet {
		return Bet{Seq: seq, AgentID: "p1", Fecha: "2024-05-10", Sorteo: SorteoMatutina, Provincias: provs, Jugada: j}
	}
	bets := []Bet{
		header(1, Redoblona{
			Numero: "34", Posicion: 1, Importe: dec("10"),
			Legs: []RedoblonaLeg{{Numero: "90", Posicion: 5}},
		}, "NACION", "CORDOB"),
		header(2, Triplona{Numeros: [3]string{"12", "34", "56"}, Importe: dec("5")}, "URUGUA"),
		header(3, Quintina{Numeros: [5]string{"34", "78", "12", "56", "11"}, Importe: dec("5")}, "NACION"),
		header(4, Borratina{Numeros: [8]string{"34", "78", "12", "56", "90", "45", "89", "00"}, Importe: dec("5")}, "NACION"),
	}

	liq := Aggregate(bets, sampleExtractos(), zap.NewNop())

	nac := liq.Aciertos["NACIONAL"][SorteoMatutina]
	require.Len(t, nac, 3)
	assert.Equal(t, TipoRedoblona, nac[0].Tipo)
	assert.Equal(t, "1-5", nac[0].Tramo)
	assert.True(t, nac[0].Premio.Equal(dec("12800")), "redoblona não divide por província")
	assert.Equal(t, TipoQuintina, nac[1].Tipo)
	assert.Equal(t, 4, nac[1].Aciertos)
	assert.Equal(t, TipoBorratina, nac[2].Tipo)
	assert.Equal(t, 7, nac[2].Aciertos)

	mvd := liq.Aciertos["MONTEVIDEO"][SorteoMatutina]
	require.Len(t, mvd, 1)
	assert.Equal(t, TramoEnOrden, mvd[0].Tramo)

	want := dec("12800").Add(dec("150000")).Add(dec("6000")).Add(dec("25000"))
	assert.True(t, liq.Premios.Equal(want), liq.Premios.String())
}

func TestAggregate_Idempotent(t *testing.T) {
	bets := []Bet{
		quinielaBet(2, "78", 5, "3", "NACION", "URUGUA", "CORDOB"),
		quinielaBet(1, "34", 1, "10", "NACION"),
	}
	ext := sampleExtractos()

	first, err := json.Marshal(Aggregate(bets, ext, zap.NewNop()))
	require.NoError(t, err)
	second, err := json.Marshal(Aggregate(bets, ext, zap.NewNop()))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	// a ordem de entrada não muda o documento
	reversed := []Bet{bets[1], bets[0]}
	third, err := json.Marshal(Aggregate(reversed, ext, zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third))
}
