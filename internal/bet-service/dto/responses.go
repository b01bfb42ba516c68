package dto

import "github.com/shopspring/decimal"

type PlaceBetResponse struct {
	Seq     int64           `json:"seq"`
	Tipo    string          `json:"tipo"`
	Importe decimal.Decimal `json:"importe"`
	Status  string          `json:"status"` // REGISTRADA | ANULADA
}
