package quiniela

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesLoteria(t *testing.T) {
	tests := []struct {
		name   string
		bet    string
		result string
		want   bool
	}{
		{"igual", "NACIONAL", "NACIONAL", true},
		{"caixa e espacos", "  nacional ", "NACIONAL", true},
		{"vazio e coringa", "", "MONTEVIDEO", true},
		{"TODAS", "todas", "CORDOBA", true},
		{"TODAS LAS LOTERIAS", "TODAS LAS LOTERIAS", "SALTA", true},
		{"LAPREVIA vira PREVIA", "LAPREVIA", "PREVIA", true},
		{"PRIMERA x PROVINCIAL", "PRIMERA", "PROVINCIAL", true},
		{"PROVINCIAL x PRIMERA", "PROVINCIAL", "PRIMERA", true},
		{"PROVIN x PRIMERA", "PROVIN", "PRIMERA", true},
		{"sessao x provincia do grupo", "PREVIA", "CORDOBA", true},
		{"sessao x provincia fora do grupo", "PREVIA", "MONTEVIDEO", false},
		{"codigo curto entra no grupo", "URUGUA", "NOCTURNA", true},
		{"rotulo desconhecido", "BRINCO", "NACIONAL", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesLoteria(tt.bet, tt.result))
		})
	}
}

func TestCanonicalProvince(t *testing.T) {
	assert.Equal(t, "MONTEVIDEO", CanonicalProvince("URUGUA"))
	assert.Equal(t, "PROVINCIA", CanonicalProvince(" provin "))
	assert.Equal(t, "CORDOBA", CanonicalProvince("CORDOB"))
	assert.Equal(t, "ATLANTIDA", CanonicalProvince("atlantida"), "desconhecido passa")
}

func TestParseSorteo(t *testing.T) {
	s, ok := ParseSorteo("laprevia")
	require.True(t, ok)
	assert.Equal(t, SorteoPrevia, s)

	s, ok = ParseSorteo(" Nocturna")
	require.True(t, ok)
	assert.Equal(t, SorteoNocturna, s)

	_, ok = ParseSorteo("PROVINCIAL")
	assert.False(t, ok)
}

func TestSorteoCerrado(t *testing.T) {
	loc := Location()
	before := time.Date(2024, 5, 10, 14, 59, 0, 0, loc)
	after := time.Date(2024, 5, 10, 15, 0, 0, 0, loc)

	assert.False(t, SorteoMatutina.Cerrado("2024-05-10", before))
	assert.True(t, SorteoMatutina.Cerrado("2024-05-10", after))
	assert.True(t, SorteoPrevia.Cerrado("2024-05-10", after))
	assert.False(t, SorteoPrevia.Cerrado("2024-05-11", after))
	assert.True(t, Sorteo("SIESTA").Cerrado("2024-05-10", before))
}

func TestPreviousFecha(t *testing.T) {
	prev, err := PreviousFecha("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", prev)

	_, err = PreviousFecha("01/03/2024")
	assert.Error(t, err)
}
