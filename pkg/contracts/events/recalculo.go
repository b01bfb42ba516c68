package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ações sobre apostas que disparam recálculo
const (
	AccionAlta      = "ALTA"
	AccionAnulacion = "ANULACION"
)

// Tipos de movimento do ledger
const (
	MovimientoPago  = "PAGO"
	MovimientoCobro = "COBRO"
)

// Evento emitido pelo bet-service a cada aposta criada ou anulada
type ApuestaRegistrada struct {
	EventID string    `json:"event_id"`
	AgentID string    `json:"agente"`
	Fecha   string    `json:"fecha"`
	Seq     int64     `json:"seq"`
	Tipo    string    `json:"tipo"`
	Accion  string    `json:"accion"`
	Ts      time.Time `json:"ts"`
}

// Evento emitido pelo ledger-service a cada pago/cobro registrado
type MovimientoRegistrado struct {
	EventID     string          `json:"event_id"`
	AgentID     string          `json:"agente"`
	Fecha       string          `json:"fecha"`
	Tipo        string          `json:"tipo"` // PAGO | COBRO
	Importe     decimal.Decimal `json:"importe"`
	ExternalRef string          `json:"external_ref"`
	Ts          time.Time       `json:"ts"`
}

// Mensagem enviada à DLQ quando um recálculo falha depois das tentativas
type RecalculoFallido struct {
	AgentID  string    `json:"agente,omitempty"`
	Fecha    string    `json:"fecha"`
	Origen   string    `json:"origen"` // tópico que disparou
	Error    string    `json:"error"`
	Attempts int       `json:"attempts"`
	Ts       time.Time `json:"ts"`
}

// Payload do canal Redis "saldos_actualizados"
type SaldoActualizado struct {
	AgentID  string          `json:"agente"`
	Fecha    string          `json:"fecha"`
	Saldo    decimal.Decimal `json:"saldo"`
	Premios  decimal.Decimal `json:"premios"`
	Aciertos int             `json:"aciertos"`
}
