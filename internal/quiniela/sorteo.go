package quiniela

import (
	"strings"
	"time"
)

// Sorteo identifica uma das cinco sessões fixas de sorteio do dia
type Sorteo string

const (
	SorteoPrevia     Sorteo = "PREVIA"
	SorteoPrimera    Sorteo = "PRIMERA"
	SorteoMatutina   Sorteo = "MATUTINA"
	SorteoVespertina Sorteo = "VESPERTINA"
	SorteoNocturna   Sorteo = "NOCTURNA"
)

// Sorteos lista as sessões na ordem em que acontecem no dia
var Sorteos = []Sorteo{SorteoPrevia, SorteoPrimera, SorteoMatutina, SorteoVespertina, SorteoNocturna}

// horário de fechamento (hora, minuto) de cada sessão, horário de Buenos Aires
var cierres = map[Sorteo][2]int{
	SorteoPrevia:     {10, 15},
	SorteoPrimera:    {12, 0},
	SorteoMatutina:   {15, 0},
	SorteoVespertina: {18, 0},
	SorteoNocturna:   {21, 0},
}

// FechaLayout é o formato das datas de negócio (dia do sorteio)
const FechaLayout = "2006-01-02"

// Location retorna o fuso das loterias argentinas; cai para UTC-3 fixo se o tzdata não existir
func Location() *time.Location {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		return time.FixedZone("ART", -3*60*60)
	}
	return loc
}

// ParseSorteo converte um rótulo livre na sessão correspondente.
// Aceita "LAPREVIA"/"LA PREVIA" como PREVIA.
func ParseSorteo(label string) (Sorteo, bool) {
	n := normalizeLoteria(label)
	if _, ok := cierres[Sorteo(n)]; ok {
		return Sorteo(n), true
	}
	return "", false
}

// Valid indica se a sessão é uma das cinco conhecidas
func (s Sorteo) Valid() bool {
	_, ok := cierres[s]
	return ok
}

// Cierre retorna o instante de fechamento da sessão para a data informada (YYYY-MM-DD)
func (s Sorteo) Cierre(fecha string) (time.Time, bool) {
	hm, ok := cierres[s]
	if !ok {
		return time.Time{}, false
	}
	loc := Location()
	d, err := time.ParseInLocation(FechaLayout, strings.TrimSpace(fecha), loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hm[0], hm[1], 0, 0, loc), true
}

// Cerrado indica se a sessão já fechou para apostas em `now`
func (s Sorteo) Cerrado(fecha string, now time.Time) bool {
	c, ok := s.Cierre(fecha)
	if !ok {
		return true
	}
	return !now.Before(c)
}

// PreviousFecha retorna o dia de calendário anterior a `fecha`
func PreviousFecha(fecha string) (string, error) {
	d, err := time.Parse(FechaLayout, fecha)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -1).Format(FechaLayout), nil
}
