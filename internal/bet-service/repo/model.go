package repo

import "time"

// Cabecera é o que o void precisa saber da aposta persistida
type Cabecera struct {
	Seq       int64
	AgentID   string
	Fecha     string
	Sorteo    string
	Tipo      string
	Anulada   bool
	CreatedAt time.Time
}
