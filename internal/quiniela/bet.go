package quiniela

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tipo é a etiqueta explícita da variante da jogada, gravada na criação da aposta
type Tipo string

const (
	TipoQuiniela  Tipo = "quiniela"
	TipoRedoblona Tipo = "redoblona"
	TipoTriplona  Tipo = "triplona"
	TipoQuintina  Tipo = "quintina"
	TipoBorratina Tipo = "borratina"
)

// ErrJugadaInvalida indica aposta com campos ausentes ou mal formados
var ErrJugadaInvalida = errors.New("jugada invalida")

// Jugada é a parte variável da aposta. Implementada apenas pelos tipos deste pacote.
type Jugada interface {
	Tipo() Tipo
	Total() decimal.Decimal
	Validate() error
	isJugada()
}

// Linea é um número apostado a uma posição (cabeza, a los 5, 10 ou 20)
type Linea struct {
	Numero   string          `json:"numero"`
	Posicion int             `json:"posicion"`
	Importe  decimal.Decimal `json:"importe"`
}

// Quiniela é a aposta direta: uma ou mais linhas número/posição/valor
type Quiniela struct {
	Lineas []Linea `json:"lineas"`
}

// RedoblonaLeg é a perna "redoblada" atrelada ao número original
type RedoblonaLeg struct {
	Numero   string `json:"numero"`
	Posicion int    `json:"posicion"`
}

// Redoblona liga um número original a uma ou mais pernas
type Redoblona struct {
	Numero   string          `json:"numero"`
	Posicion int             `json:"posicion"`
	Importe  decimal.Decimal `json:"importe"`
	Legs     []RedoblonaLeg  `json:"redoblonas"`
}

type Triplona struct {
	Numeros [3]string       `json:"numeros"`
	Importe decimal.Decimal `json:"importe"`
}

type Quintina struct {
	Numeros [5]string       `json:"numeros"`
	Importe decimal.Decimal `json:"importe"`
}

type Borratina struct {
	Numeros [8]string       `json:"numeros"`
	Importe decimal.Decimal `json:"importe"`
}

func (Quiniela) Tipo() Tipo  { return TipoQuiniela }
func (Redoblona) Tipo() Tipo { return TipoRedoblona }
func (Triplona) Tipo() Tipo  { return TipoTriplona }
func (Quintina) Tipo() Tipo  { return TipoQuintina }
func (Borratina) Tipo() Tipo { return TipoBorratina }

func (Quiniela) isJugada()  {}
func (Redoblona) isJugada() {}
func (Triplona) isJugada()  {}
func (Quintina) isJugada()  {}
func (Borratina) isJugada() {}

func (q Quiniela) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range q.Lineas {
		total = total.Add(l.Importe)
	}
	return total
}

func (r Redoblona) Total() decimal.Decimal { return r.Importe }
func (t Triplona) Total() decimal.Decimal  { return t.Importe }
func (q Quintina) Total() decimal.Decimal  { return q.Importe }
func (b Borratina) Total() decimal.Decimal { return b.Importe }

func (q Quiniela) Validate() error {
	if len(q.Lineas) == 0 {
		return fmt.Errorf("%w: quiniela sem linhas", ErrJugadaInvalida)
	}
	for i, l := range q.Lineas {
		if !isDigits(l.Numero) || len(l.Numero) > 4 {
			return fmt.Errorf("%w: linha %d numero %q", ErrJugadaInvalida, i, l.Numero)
		}
		if l.Posicion < 1 || l.Posicion > 20 {
			return fmt.Errorf("%w: linha %d posicion %d", ErrJugadaInvalida, i, l.Posicion)
		}
		if !l.Importe.IsPositive() {
			return fmt.Errorf("%w: linha %d sem importe", ErrJugadaInvalida, i)
		}
	}
	return nil
}

func (r Redoblona) Validate() error {
	if !isDigits(r.Numero) || len(r.Numero) > 4 {
		return fmt.Errorf("%w: redoblona numero %q", ErrJugadaInvalida, r.Numero)
	}
	if r.Posicion < 1 || r.Posicion > 20 {
		return fmt.Errorf("%w: redoblona posicion %d", ErrJugadaInvalida, r.Posicion)
	}
	if len(r.Legs) == 0 {
		return fmt.Errorf("%w: redoblona sem pernas", ErrJugadaInvalida)
	}
	// perna com posição inválida é ignorada no acerto; basta uma válida
	validas := 0
	for i, l := range r.Legs {
		if !isDigits(l.Numero) || len(l.Numero) > 4 {
			return fmt.Errorf("%w: perna %d numero %q", ErrJugadaInvalida, i, l.Numero)
		}
		if PosicionPernaValida(l.Posicion) {
			validas++
		}
	}
	if validas == 0 {
		return fmt.Errorf("%w: redoblona sem perna válida", ErrJugadaInvalida)
	}
	if !r.Importe.IsPositive() {
		return fmt.Errorf("%w: redoblona sem importe", ErrJugadaInvalida)
	}
	return nil
}

func (t Triplona) Validate() error  { return validateSet(TipoTriplona, t.Numeros[:], t.Importe) }
func (q Quintina) Validate() error  { return validateSet(TipoQuintina, q.Numeros[:], q.Importe) }
func (b Borratina) Validate() error { return validateSet(TipoBorratina, b.Numeros[:], b.Importe) }

// validateSet verifica jogadas de conjunto: todos os números com dois dígitos, sem repetição
func validateSet(tipo Tipo, numeros []string, importe decimal.Decimal) error {
	seen := make(map[string]struct{}, len(numeros))
	for i, n := range numeros {
		if len(n) != 2 || !isDigits(n) {
			return fmt.Errorf("%w: %s numero %d %q", ErrJugadaInvalida, tipo, i, n)
		}
		if _, dup := seen[n]; dup && tipo != TipoTriplona {
			return fmt.Errorf("%w: %s numero repetido %q", ErrJugadaInvalida, tipo, n)
		}
		seen[n] = struct{}{}
	}
	if !importe.IsPositive() {
		return fmt.Errorf("%w: %s sem importe", ErrJugadaInvalida, tipo)
	}
	return nil
}

// Bet é uma aposta registrada por um pasador para um dia
type Bet struct {
	Seq        int64     `json:"seq"`
	AgentID    string    `json:"agente"`
	Fecha      string    `json:"fecha"`
	Sorteo     Sorteo    `json:"sorteo"`
	Loteria    string    `json:"loteria"`
	Provincias []string  `json:"provincias"`
	Anulada    bool      `json:"anulada"`
	CreatedAt  time.Time `json:"created_at"`
	Jugada     Jugada    `json:"-"`
}

// Tipo retorna a etiqueta da jogada ("" se ausente)
func (b Bet) Tipo() Tipo {
	if b.Jugada == nil {
		return ""
	}
	return b.Jugada.Tipo()
}

// Importe retorna o total apostado
func (b Bet) Importe() decimal.Decimal {
	if b.Jugada == nil {
		return decimal.Zero
	}
	return b.Jugada.Total()
}

// Validate verifica cabeçalho e jogada
func (b Bet) Validate() error {
	if b.Jugada == nil {
		return fmt.Errorf("%w: aposta %d sem jugada", ErrJugadaInvalida, b.Seq)
	}
	if !b.Sorteo.Valid() {
		return fmt.Errorf("%w: aposta %d sorteo %q", ErrJugadaInvalida, b.Seq, b.Sorteo)
	}
	if len(b.Provincias) == 0 {
		return fmt.Errorf("%w: aposta %d sem provincias", ErrJugadaInvalida, b.Seq)
	}
	return b.Jugada.Validate()
}

type betAlias Bet

type betDoc struct {
	betAlias
	Tipo   Tipo            `json:"tipo"`
	Jugada json.RawMessage `json:"jugada"`
}

// MarshalJSON grava a jogada com a etiqueta "tipo" explícita
func (b Bet) MarshalJSON() ([]byte, error) {
	doc := betDoc{betAlias: betAlias(b), Tipo: b.Tipo()}
	if b.Jugada != nil {
		raw, err := json.Marshal(b.Jugada)
		if err != nil {
			return nil, err
		}
		doc.Jugada = raw
	}
	return json.Marshal(doc)
}

// UnmarshalJSON despacha a jogada pela etiqueta "tipo", nunca pelo formato do payload
func (b *Bet) UnmarshalJSON(data []byte) error {
	var doc betDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*b = Bet(doc.betAlias)
	if doc.Tipo == "" {
		return nil
	}
	j, err := DecodeJugada(doc.Tipo, doc.Jugada)
	if err != nil {
		return err
	}
	b.Jugada = j
	return nil
}

// DecodeJugada decodifica o payload da jogada de acordo com a etiqueta
func DecodeJugada(tipo Tipo, raw json.RawMessage) (Jugada, error) {
	var (
		j   Jugada
		err error
	)
	switch tipo {
	case TipoQuiniela:
		var v Quiniela
		err = json.Unmarshal(raw, &v)
		j = v
	case TipoRedoblona:
		var v Redoblona
		err = json.Unmarshal(raw, &v)
		j = v
	case TipoTriplona:
		var v Triplona
		err = json.Unmarshal(raw, &v)
		j = v
	case TipoQuintina:
		var v Quintina
		err = json.Unmarshal(raw, &v)
		j = v
	case TipoBorratina:
		var v Borratina
		err = json.Unmarshal(raw, &v)
		j = v
	default:
		return nil, fmt.Errorf("%w: tipo desconhecido %q", ErrJugadaInvalida, tipo)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", tipo, err)
	}
	return j, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
