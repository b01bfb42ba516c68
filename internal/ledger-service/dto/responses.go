package dto

import "github.com/shopspring/decimal"

type MovimientoResponse struct {
	ID          string          `json:"id"`
	AgentID     string          `json:"agente"`
	Fecha       string          `json:"fecha"`
	Tipo        string          `json:"tipo"`
	Importe     decimal.Decimal `json:"importe"`
	ExternalRef string          `json:"external_ref"`
	Replay      bool            `json:"replay,omitempty"` // já existia com o mesmo external_ref
}

type TotalesResponse struct {
	AgentID string          `json:"agente"`
	Fecha   string          `json:"fecha"`
	Pagado  decimal.Decimal `json:"pagado"`
	Cobrado decimal.Decimal `json:"cobrado"`
	Pagos   int             `json:"pagos"`
	Cobros  int             `json:"cobros"`
}
