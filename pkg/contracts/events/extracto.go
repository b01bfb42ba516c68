package events

import "time"

// Evento publicado no tópico "extractos" pelo results-ingest-service
type ExtractoPublicado struct {
	Fecha       string    `json:"fecha"` // YYYY-MM-DD
	Provincia   string    `json:"provincia"`
	Loteria     string    `json:"loteria"`
	Sorteo      string    `json:"sorteo"`
	Numeros     []string  `json:"numeros"` // 20 números, ubicación 1 primeiro
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Evento emitido pelo results-processor-worker quando um slot (fecha, provincia, sorteo)
// fica completo; invalida o fechamento de todos os agentes da data.
type ExtractoActualizado struct {
	EventID   string    `json:"event_id"`
	Fecha     string    `json:"fecha"`
	Provincia string    `json:"provincia"`
	Sorteo    string    `json:"sorteo"`
	Ts        time.Time `json:"ts"`
}
