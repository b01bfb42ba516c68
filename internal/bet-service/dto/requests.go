package dto

import (
	"encoding/json"
	"fmt"

	"github.com/radieske/quiniela-backoffice/internal/quiniela"
)

// PlaceBetRequest é a aposta como digitada no balcão. "tipo" decide como "jugada" é lida.
type PlaceBetRequest struct {
	AgentID    string          `json:"agente"`
	Fecha      string          `json:"fecha"` // YYYY-MM-DD
	Sorteo     string          `json:"sorteo"`
	Loteria    string          `json:"loteria"` // vazio = todas
	Provincias []string        `json:"provincias"`
	Tipo       string          `json:"tipo"`
	Jugada     json.RawMessage `json:"jugada"`
}

type LineaRequest struct {
	Numero   string `json:"numero"`
	Posicion int    `json:"posicion"`
	Importe  string `json:"importe"`
}

type QuinielaRequest struct {
	Lineas []LineaRequest `json:"lineas"`
}

type LegRequest struct {
	Numero   string `json:"numero"`
	Posicion int    `json:"posicion"`
}

type RedoblonaRequest struct {
	Numero     string       `json:"numero"`
	Posicion   int          `json:"posicion"`
	Importe    string       `json:"importe"`
	Redoblonas []LegRequest `json:"redoblonas"`
}

// SetRequest serve triplona, quintina e borratina
type SetRequest struct {
	Numeros []string `json:"numeros"`
	Importe string   `json:"importe"`
}

// ToBet converte o pedido na aposta do domínio e valida
func (r PlaceBetRequest) ToBet() (quiniela.Bet, error) {
	s, ok := quiniela.ParseSorteo(r.Sorteo)
	if !ok {
		return quiniela.Bet{}, fmt.Errorf("%w: sorteo %q", quiniela.ErrJugadaInvalida, r.Sorteo)
	}
	j, err := r.jugada()
	if err != nil {
		return quiniela.Bet{}, err
	}
	b := quiniela.Bet{
		AgentID:    r.AgentID,
		Fecha:      r.Fecha,
		Sorteo:     s,
		Loteria:    r.Loteria,
		Provincias: r.Provincias,
		Jugada:     j,
	}
	if b.AgentID == "" {
		return quiniela.Bet{}, fmt.Errorf("%w: agente obrigatório", quiniela.ErrJugadaInvalida)
	}
	return b, b.Validate()
}

func (r PlaceBetRequest) jugada() (quiniela.Jugada, error) {
	switch quiniela.Tipo(r.Tipo) {
	case quiniela.TipoQuiniela:
		var q QuinielaRequest
		if err := json.Unmarshal(r.Jugada, &q); err != nil {
			return nil, fmt.Errorf("%w: %v", quiniela.ErrJugadaInvalida, err)
		}
		out := quiniela.Quiniela{}
		for _, l := range q.Lineas {
			out.Lineas = append(out.Lineas, quiniela.Linea{
				Numero:   l.Numero,
				Posicion: l.Posicion,
				Importe:  quiniela.ParseImporte(l.Importe),
			})
		}
		return out, nil

	case quiniela.TipoRedoblona:
		var q RedoblonaRequest
		if err := json.Unmarshal(r.Jugada, &q); err != nil {
			return nil, fmt.Errorf("%w: %v", quiniela.ErrJugadaInvalida, err)
		}
		out := quiniela.Redoblona{Numero: q.Numero, Posicion: q.Posicion, Importe: quiniela.ParseImporte(q.Importe)}
		for i, l := range q.Redoblonas {
			// no balcão toda perna precisa de faixa; no fechamento a inválida é só ignorada
			if !quiniela.PosicionPernaValida(l.Posicion) {
				return nil, fmt.Errorf("%w: perna %d posicion %d", quiniela.ErrJugadaInvalida, i, l.Posicion)
			}
			out.Legs = append(out.Legs, quiniela.RedoblonaLeg{Numero: l.Numero, Posicion: l.Posicion})
		}
		return out, nil

	case quiniela.TipoTriplona, quiniela.TipoQuintina, quiniela.TipoBorratina:
		var q SetRequest
		if err := json.Unmarshal(r.Jugada, &q); err != nil {
			return nil, fmt.Errorf("%w: %v", quiniela.ErrJugadaInvalida, err)
		}
		return setJugada(quiniela.Tipo(r.Tipo), q)
	}
	return nil, fmt.Errorf("%w: tipo %q", quiniela.ErrJugadaInvalida, r.Tipo)
}

func setJugada(tipo quiniela.Tipo, q SetRequest) (quiniela.Jugada, error) {
	importe := quiniela.ParseImporte(q.Importe)
	want := map[quiniela.Tipo]int{quiniela.TipoTriplona: 3, quiniela.TipoQuintina: 5, quiniela.TipoBorratina: 8}[tipo]
	if len(q.Numeros) != want {
		return nil, fmt.Errorf("%w: %s exige %d números", quiniela.ErrJugadaInvalida, tipo, want)
	}
	switch tipo {
	case quiniela.TipoTriplona:
		j := quiniela.Triplona{Importe: importe}
		copy(j.Numeros[:], q.Numeros)
		return j, nil
	case quiniela.TipoQuintina:
		j := quiniela.Quintina{Importe: importe}
		copy(j.Numeros[:], q.Numeros)
		return j, nil
	default:
		j := quiniela.Borratina{Importe: importe}
		copy(j.Numeros[:], q.Numeros)
		return j, nil
	}
}
