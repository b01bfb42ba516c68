package quiniela

// TotalUbicaciones é a quantidade de números publicados por extrato
const TotalUbicaciones = 20

// Extracto é o resultado publicado de uma província para um dia, por sessão.
// Cada lista tem 20 números de quatro dígitos, a ubicación 1 primeiro (a "cabeza").
// Loterias guarda a etiqueta publicada por sessão; Loteria vale para as sessões sem etiqueta própria.
type Extracto struct {
	Fecha     string              `json:"fecha"`
	Provincia string              `json:"provincia"`
	Loteria   string              `json:"loteria"`
	Loterias  map[Sorteo]string   `json:"loterias,omitempty"`
	Sorteos   map[Sorteo][]string `json:"sorteos"`
}

// LoteriaDe retorna a etiqueta da loteria que publicou a sessão
func (e Extracto) LoteriaDe(s Sorteo) string {
	if l, ok := e.Loterias[s]; ok && l != "" {
		return l
	}
	return e.Loteria
}

// Complete indica se a lista está inteira: 20 números de quatro dígitos e não só zeros
func Complete(numeros []string) bool {
	if len(numeros) != TotalUbicaciones {
		return false
	}
	allZero := true
	for _, n := range numeros {
		if len(n) != 4 || !isDigits(n) {
			return false
		}
		if n != "0000" {
			allZero = false
		}
	}
	return !allZero
}

// Winning retorna a sequência ganhadora da sessão, se estiver completa
func (e Extracto) Winning(s Sorteo) ([]string, bool) {
	nums, ok := e.Sorteos[s]
	if !ok || !Complete(nums) {
		return nil, false
	}
	return nums, true
}
