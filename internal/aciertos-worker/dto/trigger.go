package dto

import (
	"encoding/json"
	"fmt"

	"github.com/radieske/quiniela-backoffice/pkg/contracts/events"
)

// Trigger é o pedido de recálculo extraído de um evento.
// AgentID vazio significa todos os agentes da data (extrato novo).
type Trigger struct {
	Origen  string `json:"origen"`
	AgentID string `json:"agente,omitempty"`
	Fecha   string `json:"fecha"`
}

// Topics mapeia o tópico de origem para o tipo de evento esperado
type Topics struct {
	Apuesta    string
	Movimiento string
	Extracto   string
}

// Decode lê a mensagem conforme o tópico de origem
func (t Topics) Decode(topic string, value []byte) (Trigger, error) {
	switch topic {
	case t.Apuesta:
		var ev events.ApuestaRegistrada
		if err := json.Unmarshal(value, &ev); err != nil {
			return Trigger{}, err
		}
		return agentTrigger(topic, ev.AgentID, ev.Fecha)
	case t.Movimiento:
		var ev events.MovimientoRegistrado
		if err := json.Unmarshal(value, &ev); err != nil {
			return Trigger{}, err
		}
		return agentTrigger(topic, ev.AgentID, ev.Fecha)
	case t.Extracto:
		var ev events.ExtractoActualizado
		if err := json.Unmarshal(value, &ev); err != nil {
			return Trigger{}, err
		}
		if ev.Fecha == "" {
			return Trigger{}, fmt.Errorf("%s: fecha vazia", topic)
		}
		return Trigger{Origen: topic, Fecha: ev.Fecha}, nil
	}
	return Trigger{}, fmt.Errorf("tópico desconhecido %q", topic)
}

func agentTrigger(topic, agentID, fecha string) (Trigger, error) {
	if agentID == "" || fecha == "" {
		return Trigger{}, fmt.Errorf("%s: agente e fecha obrigatórios", topic)
	}
	return Trigger{Origen: topic, AgentID: agentID, Fecha: fecha}, nil
}
