package quiniela

import "fmt"

// QuinielaHit descreve o acerto de um número direto
type QuinielaHit struct {
	Ubicacion int    // 1..20
	Ganador   string // número sorteado completo
	Cifras    int    // dígitos comparados (1..4)
}

// RedoblonaHit descreve o acerto de uma redoblona: original + a primeira perna que acertou
type RedoblonaHit struct {
	Original     QuinielaHit
	Leg          int // índice da perna na aposta
	LegUbicacion int
	LegGanador   string
	PosOriginal  int // faixa da posição original (1/5/10/20)
	PosLeg       int // 5/10/20
}

// TriplonaHit descreve o acerto de uma triplona
type TriplonaHit struct {
	Tramo   string
	Ventana int  // quantidade de ubicaciones consideradas
	EnOrden bool // 3 a los 3 na mesma ordem
}

// SetHit descreve o acerto de quintina/borratina
type SetHit struct {
	Aciertos  int
	Ganadores []string // números apostados que saíram, na ordem da aposta
}

const TramoEnOrden = "3 a los 3 en orden"

var triplonaCortes = []int{3, 4, 7, 10, 15, 20}

const (
	quintinaVentana  = 18
	quintinaMinimo   = 3
	borratinaVentana = 20
	borratinaMinimo  = 6
)

// tierOf retorna a faixa de prêmio da posição apostada
func tierOf(posicion int) int {
	switch posicion {
	case 1, 5, 10:
		return posicion
	}
	return 20
}

// quinielaWindow retorna quantas ubicaciones a posição cobre.
// As faixas 5 e 10 cobrem 6 e 11 ubicaciones; tabela herdada, não ajustar.
func quinielaWindow(posicion int) int {
	switch posicion {
	case 1:
		return 1
	case 5:
		return 6
	case 10:
		return 11
	}
	return 20
}

// legWindow retorna a janela de uma perna de redoblona; 0 para posição inválida
// PosicionPernaValida indica se a perna da redoblona tem faixa (5, 10 ou 20)
func PosicionPernaValida(posicion int) bool { return legWindow(posicion) > 0 }

func legWindow(posicion int) int {
	switch posicion {
	case 5:
		return 6
	case 10:
		return 11
	case 20:
		return 20
	}
	return 0
}

// suffix retorna os últimos k dígitos de um número sorteado
func suffix(drawn string, k int) (string, bool) {
	if len(drawn) < k || !isDigits(drawn) {
		return "", false
	}
	return drawn[len(drawn)-k:], true
}

// findInWindow procura o número apostado nas primeiras `window` ubicaciones.
// Retorna a ubicación (1-based) do primeiro acerto.
func findInWindow(numero string, window int, winning []string) (int, bool) {
	k := len(numero)
	if k == 0 || k > 4 || !isDigits(numero) || window <= 0 || len(winning) < window {
		return 0, false
	}
	for i := 0; i < window; i++ {
		s, ok := suffix(winning[i], k)
		if ok && s == numero {
			return i + 1, true
		}
	}
	return 0, false
}

// MatchQuiniela verifica um número direto contra a sequência ganhadora
func MatchQuiniela(numero string, posicion int, winning []string) (QuinielaHit, bool) {
	ub, ok := findInWindow(numero, quinielaWindow(posicion), winning)
	if !ok {
		return QuinielaHit{}, false
	}
	return QuinielaHit{Ubicacion: ub, Ganador: winning[ub-1], Cifras: len(numero)}, true
}

// MatchRedoblona exige o acerto do original na própria faixa e depois percorre as
// pernas em ordem; a primeira perna que acerta encerra a busca.
func MatchRedoblona(r Redoblona, winning []string) (RedoblonaHit, bool) {
	orig, ok := MatchQuiniela(r.Numero, r.Posicion, winning)
	if !ok {
		return RedoblonaHit{}, false
	}
	for i, leg := range r.Legs {
		w := legWindow(leg.Posicion)
		if w == 0 {
			continue
		}
		ub, ok := findInWindow(leg.Numero, w, winning)
		if !ok {
			continue
		}
		return RedoblonaHit{
			Original:     orig,
			Leg:          i,
			LegUbicacion: ub,
			LegGanador:   winning[ub-1],
			PosOriginal:  tierOf(r.Posicion),
			PosLeg:       leg.Posicion,
		}, true
	}
	return RedoblonaHit{}, false
}

// MatchTriplona verifica primeiro a ordem exata nas três primeiras ubicaciones e
// depois o menor corte que contém os três números
func MatchTriplona(numeros [3]string, winning []string) (TriplonaHit, bool) {
	for _, n := range numeros {
		if len(n) != 2 || !isDigits(n) {
			return TriplonaHit{}, false
		}
	}

	if len(winning) >= 3 {
		enOrden := true
		for i := 0; i < 3; i++ {
			s, ok := suffix(winning[i], 2)
			if !ok || s != numeros[i] {
				enOrden = false
				break
			}
		}
		if enOrden {
			return TriplonaHit{Tramo: TramoEnOrden, Ventana: 3, EnOrden: true}, true
		}
	}

	for _, corte := range triplonaCortes {
		if len(winning) < corte {
			break
		}
		set := suffixSet(winning[:corte], 2)
		if containsAll(set, numeros[:]) {
			return TriplonaHit{Tramo: fmt.Sprintf("3 a los %d", corte), Ventana: corte}, true
		}
	}
	return TriplonaHit{}, false
}

// MatchQuintina conta quantos dos cinco números saíram nas primeiras 18 ubicaciones
func MatchQuintina(numeros [5]string, winning []string) (SetHit, bool) {
	return matchSet(numeros[:], quintinaVentana, quintinaMinimo, winning)
}

// MatchBorratina conta quantos dos oito números saíram nas 20 ubicaciones
func MatchBorratina(numeros [8]string, winning []string) (SetHit, bool) {
	return matchSet(numeros[:], borratinaVentana, borratinaMinimo, winning)
}

func matchSet(numeros []string, window, minimo int, winning []string) (SetHit, bool) {
	if len(winning) < window {
		return SetHit{}, false
	}
	set := suffixSet(winning[:window], 2)
	counted := make(map[string]struct{}, len(numeros))
	var hit SetHit
	for _, n := range numeros {
		if len(n) != 2 || !isDigits(n) {
			return SetHit{}, false
		}
		if _, dup := counted[n]; dup {
			continue
		}
		counted[n] = struct{}{}
		if _, ok := set[n]; ok {
			hit.Aciertos++
			hit.Ganadores = append(hit.Ganadores, n)
		}
	}
	if hit.Aciertos < minimo {
		return SetHit{}, false
	}
	return hit, true
}

func suffixSet(nums []string, k int) map[string]struct{} {
	set := make(map[string]struct{}, len(nums))
	for _, n := range nums {
		if s, ok := suffix(n, k); ok {
			set[s] = struct{}{}
		}
	}
	return set
}

func containsAll(set map[string]struct{}, numeros []string) bool {
	for _, n := range numeros {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}
