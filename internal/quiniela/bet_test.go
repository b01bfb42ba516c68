package quiniela

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImporte(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10", "10"},
		{"10,5", "10.5"},
		{"10.5", "10.5"},
		{"1.234,50", "1234.5"},
		{"1,234.50", "1234.5"},
		{"1.234.567", "1234567"},
		{"1.234", "1234"},
		{"12.500", "12500"},
		{"10.50", "10.5"},
		{"0.5", "0.5"},
		{"$ 20", "20"},
		{"", "0"},
		{"abc", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseImporte(tt.in)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestBetJSON_DispatchesOnTipo(t *testing.T) {
	// o payload tem "redoblonas", mas a etiqueta manda
	raw := `{
		"seq": 7, "agente": "p1", "fecha": "2024-05-10", "sorteo": "MATUTINA",
		"provincias": ["NACION"], "tipo": "quiniela",
		"jugada": {"lineas": [{"numero": "34", "posicion": 1, "importe": "10"}], "redoblonas": [{"numero": "90", "posicion": 5}]}
	}`

	var b Bet
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	q, ok := b.Jugada.(Quiniela)
	require.True(t, ok)
	require.Len(t, q.Lineas, 1)
	assert.Equal(t, int64(7), b.Seq)
	assert.Equal(t, TipoQuiniela, b.Tipo())
	assert.True(t, b.Importe().Equal(dec("10")))
}

func TestBetJSON_KeepsTipoOnEncode(t *testing.T) {
	in := Bet{
		Seq: 3, AgentID: "p1", Fecha: "2024-05-10", Sorteo: SorteoNocturna, Provincias: []string{"CORDOB"},
		Jugada: Triplona{Numeros: [3]string{"01", "02", "03"}, Importe: dec("2")},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tipo":"triplona"`)

	var out Bet
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.Jugada.(Triplona).Numeros, out.Jugada.(Triplona).Numeros)
}

func TestBetJSON_UnknownTipo(t *testing.T) {
	var b Bet
	err := json.Unmarshal([]byte(`{"tipo":"loto","jugada":{}}`), &b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrJugadaInvalida))
}

func TestBetValidate(t *testing.T) {
	base := Bet{Seq: 1, Sorteo: SorteoPrimera, Provincias: []string{"NACION"}}

	tests := []struct {
		name   string
		jugada Jugada
		ok     bool
	}{
		{"quiniela ok", Quiniela{Lineas: []Linea{{Numero: "1234", Posicion: 20, Importe: dec("1")}}}, true},
		{"quiniela sem importe", Quiniela{Lineas: []Linea{{Numero: "12", Posicion: 1}}}, false},
		{"redoblona perna a la cabeza", Redoblona{Numero: "12", Posicion: 1, Importe: dec("1"), Legs: []RedoblonaLeg{{Numero: "34", Posicion: 1}}}, false},
		{"redoblona perna inválida seguida de válida", Redoblona{Numero: "12", Posicion: 1, Importe: dec("1"), Legs: []RedoblonaLeg{{Numero: "34", Posicion: 1}, {Numero: "56", Posicion: 5}}}, true},
		{"redoblona ok", Redoblona{Numero: "12", Posicion: 1, Importe: dec("1"), Legs: []RedoblonaLeg{{Numero: "34", Posicion: 10}}}, true},
		{"triplona com tres cifras", Triplona{Numeros: [3]string{"123", "45", "67"}, Importe: dec("1")}, false},
		{"quintina repetida", Quintina{Numeros: [5]string{"01", "01", "02", "03", "04"}, Importe: dec("1")}, false},
		{"borratina ok", Borratina{Numeros: [8]string{"01", "02", "03", "04", "05", "06", "07", "08"}, Importe: dec("1")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base
			b.Jugada = tt.jugada
			err := b.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrJugadaInvalida)
			}
		})
	}

	noProv := base
	noProv.Jugada = Quiniela{Lineas: []Linea{{Numero: "1", Posicion: 1, Importe: dec("1")}}}
	noProv.Provincias = nil
	assert.ErrorIs(t, noProv.Validate(), ErrJugadaInvalida)
}
