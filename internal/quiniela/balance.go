package quiniela

import "github.com/shopspring/decimal"

var cien = decimal.NewFromInt(100)

// BalanceInput reúne os termos do fechamento diário de um pasador.
// Pagado e Cobrado vêm prontos do ledger e não são recalculados aqui.
type BalanceInput struct {
	SaldoAnterior decimal.Decimal
	Jugado        decimal.Decimal
	ComisionPct   decimal.Decimal
	Premios       decimal.Decimal
	Pagado        decimal.Decimal
	Cobrado       decimal.Decimal
}

// Balance é o snapshot diário (agente, fecha)
type Balance struct {
	SaldoAnterior decimal.Decimal `json:"saldo_anterior"`
	Jugado        decimal.Decimal `json:"jugado"`
	ComisionPct   decimal.Decimal `json:"comision_pct"`
	Comision      decimal.Decimal `json:"comision"`
	Premios       decimal.Decimal `json:"premios"`
	Pagado        decimal.Decimal `json:"pagado"`
	Cobrado       decimal.Decimal `json:"cobrado"`
	Neto          decimal.Decimal `json:"neto"`
	Saldo         decimal.Decimal `json:"saldo"`
}

// ComputeBalance aplica:
//
//	comision = pct% × jugado
//	neto     = jugado − comision − premios
//	saldo    = saldo_anterior + neto + pagado − cobrado   (arredondado a 2 casas)
func ComputeBalance(in BalanceInput) Balance {
	comision := in.ComisionPct.Mul(in.Jugado).Div(cien)
	neto := in.Jugado.Sub(comision).Sub(in.Premios)
	saldo := in.SaldoAnterior.Add(neto).Add(in.Pagado).Sub(in.Cobrado).Round(2)

	return Balance{
		SaldoAnterior: in.SaldoAnterior,
		Jugado:        in.Jugado,
		ComisionPct:   in.ComisionPct,
		Comision:      comision,
		Premios:       in.Premios,
		Pagado:        in.Pagado,
		Cobrado:       in.Cobrado,
		Neto:          neto,
		Saldo:         saldo,
	}
}
