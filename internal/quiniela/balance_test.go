package quiniela

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBalance(t *testing.T) {
	b := ComputeBalance(BalanceInput{
		SaldoAnterior: dec("1000"),
		Jugado:        dec("5000"),
		ComisionPct:   dec("20"),
		Premios:       dec("700"),
		Pagado:        dec("300"),
		Cobrado:       dec("1500"),
	})

	assert.True(t, b.Comision.Equal(dec("1000")))
	assert.True(t, b.Neto.Equal(dec("3300")))
	// 1000 + 3300 + 300 - 1500
	assert.True(t, b.Saldo.Equal(dec("3100")), b.Saldo.String())
}

func TestComputeBalance_Identity(t *testing.T) {
	tests := []BalanceInput{
		{SaldoAnterior: dec("0"), Jugado: dec("0"), ComisionPct: dec("15"), Premios: dec("0"), Pagado: dec("0"), Cobrado: dec("0")},
		{SaldoAnterior: dec("-250.75"), Jugado: dec("1234.56"), ComisionPct: dec("17.5"), Premios: dec("3500"), Pagado: dec("0"), Cobrado: dec("80")},
		{SaldoAnterior: dec("10.01"), Jugado: dec("333.33"), ComisionPct: dec("12.345"), Premios: dec("14.2"), Pagado: dec("1.1"), Cobrado: dec("0.07")},
		{SaldoAnterior: dec("99999.99"), Jugado: dec("0.01"), ComisionPct: dec("100"), Premios: dec("0"), Pagado: dec("5"), Cobrado: dec("5")},
	}

	for _, in := range tests {
		got := ComputeBalance(in)

		comision := in.ComisionPct.Div(dec("100")).Mul(in.Jugado)
		want := in.SaldoAnterior.
			Add(in.Jugado.Sub(comision).Sub(in.Premios)).
			Add(in.Pagado).
			Sub(in.Cobrado).
			Round(2)

		assert.True(t, got.Saldo.Equal(want), "saldo %s, esperado %s", got.Saldo, want)
		assert.True(t, got.Neto.Equal(got.Jugado.Sub(got.Comision).Sub(got.Premios)))
		assert.True(t, got.Saldo.Equal(got.Saldo.Round(2)), "saldo com no máximo 2 casas")
	}
}

