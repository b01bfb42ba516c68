package dto

// MovimientoRequest registra um pago ou cobro do dia.
// importe aceita "1.234,50", "10,5" ou "10.5".
type MovimientoRequest struct {
	AgentID     string `json:"agente"`
	Fecha       string `json:"fecha"` // YYYY-MM-DD
	Importe     string `json:"importe"`
	ExternalRef string `json:"external_ref,omitempty"` // idempotência; vazio gera um novo
	Descripcion string `json:"descripcion,omitempty"`
}
