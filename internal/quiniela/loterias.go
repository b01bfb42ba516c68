package quiniela

import "strings"

// provincias mapeia o código curto usado no feed/aposta para o nome canônico
var provincias = map[string]string{
	"NACION": "NACIONAL",
	"PROVIN": "PROVINCIA",
	"URUGUA": "MONTEVIDEO",
	"CORDOB": "CORDOBA",
	"SANTAF": "SANTA FE",
	"ENTRER": "ENTRE RIOS",
	"MENDOZ": "MENDOZA",
	"CORRIE": "CORRIENTES",
	"CHACO":  "CHACO",
	"SANTIA": "SANTIAGO",
	"TUCUMA": "TUCUMAN",
	"SALTA":  "SALTA",
	"JUJUY":  "JUJUY",
	"NEUQUE": "NEUQUEN",
	"CHUBUT": "CHUBUT",
	"RIONEG": "RIO NEGRO",
	"MISION": "MISIONES",
	"LARIOJ": "LA RIOJA",
	"SANLUI": "SAN LUIS",
	"SANJUA": "SAN JUAN",
	"CATAMA": "CATAMARCA",
	"FORMOS": "FORMOSA",
	"LAPAMP": "LA PAMPA",
	"SANTAC": "SANTA CRUZ",
	"TIERRA": "TIERRA DEL FUEGO",
}

// equivalencias agrupa, por sessão, as loterias que publicam aquela sessão.
// Dois rótulos no mesmo grupo são considerados a mesma loteria para fins de acerto.
// Tabela mantida à mão; não derivar.
var equivalencias = map[string][]string{
	"PREVIA": {
		"NACIONAL", "CIUDAD", "PROVINCIA", "CORDOBA", "SANTA FE", "ENTRE RIOS",
		"MENDOZA", "CORRIENTES", "CHACO",
	},
	"PRIMERA": {
		"NACIONAL", "CIUDAD", "PROVINCIA", "CORDOBA", "SANTA FE", "ENTRE RIOS",
		"MENDOZA", "SANTIAGO", "TUCUMAN",
	},
	"MATUTINA": {
		"NACIONAL", "CIUDAD", "PROVINCIA", "CORDOBA", "SANTA FE", "ENTRE RIOS",
		"MENDOZA", "MONTEVIDEO", "CORRIENTES", "CHACO", "SALTA", "JUJUY",
		"NEUQUEN", "CHUBUT", "RIO NEGRO", "SANTIAGO", "TUCUMAN", "MISIONES",
	},
	"VESPERTINA": {
		"NACIONAL", "CIUDAD", "PROVINCIA", "CORDOBA", "SANTA FE", "ENTRE RIOS",
		"MENDOZA", "CORRIENTES", "CHACO", "SALTA", "JUJUY", "NEUQUEN",
		"CHUBUT", "RIO NEGRO", "SANTIAGO", "TUCUMAN", "MISIONES",
	},
	"NOCTURNA": {
		"NACIONAL", "CIUDAD", "PROVINCIA", "CORDOBA", "SANTA FE", "ENTRE RIOS",
		"MENDOZA", "MONTEVIDEO", "CORRIENTES", "CHACO", "SALTA", "JUJUY",
		"NEUQUEN", "CHUBUT", "RIO NEGRO", "SANTIAGO", "TUCUMAN", "MISIONES",
		"LA RIOJA", "SAN LUIS", "SAN JUAN", "CATAMARCA",
	},
}

// grupos: rótulo -> sessões (grupos) em que aparece; montado no init
var grupos = map[string]map[string]struct{}{}

func init() {
	for sorteo, labels := range equivalencias {
		add := func(label string) {
			if grupos[label] == nil {
				grupos[label] = map[string]struct{}{}
			}
			grupos[label][sorteo] = struct{}{}
		}
		add(sorteo)
		for _, l := range labels {
			add(l)
		}
	}
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizeLoteria(s string) string {
	n := normalize(s)
	switch n {
	case "LAPREVIA", "LA PREVIA":
		return "PREVIA"
	}
	return n
}

func isWildcard(label string) bool {
	switch label {
	case "", "TODAS", "TODAS LAS LOTERIAS":
		return true
	}
	return false
}

func isPrimeraOrProvincial(label string) bool {
	switch label {
	case "PRIMERA", "PROVINCIAL", "PROVIN":
		return true
	}
	return false
}

// CanonicalProvince retorna o nome canônico de um código de província.
// Códigos desconhecidos (inclusive nomes já canônicos) passam inalterados.
func CanonicalProvince(code string) string {
	n := normalize(code)
	if name, ok := provincias[n]; ok {
		return name
	}
	return n
}

// MatchesLoteria decide se o rótulo de loteria/sessão da aposta casa com o do extrato
func MatchesLoteria(bet, result string) bool {
	b := normalizeLoteria(bet)
	r := normalizeLoteria(result)

	if isWildcard(b) || b == r {
		return true
	}
	// PRIMERA e PROVINCIAL são o mesmo sorteio, em qualquer direção
	if isPrimeraOrProvincial(b) && isPrimeraOrProvincial(r) {
		return true
	}

	bg, rg := grupos[b], grupos[r]
	if len(bg) == 0 || len(rg) == 0 {
		// rótulos também podem chegar como código de província
		if len(bg) == 0 {
			bg = grupos[CanonicalProvince(b)]
		}
		if len(rg) == 0 {
			rg = grupos[CanonicalProvince(r)]
		}
	}
	for g := range bg {
		if _, ok := rg[g]; ok {
			return true
		}
	}
	return false
}
