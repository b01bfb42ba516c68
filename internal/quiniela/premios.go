package quiniela

import "github.com/shopspring/decimal"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// multiplicador da quiniela por [cifras][faixa]
var multiplicadoresQuiniela = map[int]map[int]decimal.Decimal{
	1: {1: dec("7"), 5: dec("7"), 10: dec("7"), 20: dec("7")},
	2: {1: dec("70"), 5: dec("14"), 10: dec("7"), 20: dec("3.5")},
	3: {1: dec("600"), 5: dec("120"), 10: dec("60"), 20: dec("30")},
	4: {1: dec("3500"), 5: dec("700"), 10: dec("350"), 20: dec("175")},
}

// multiplicador da redoblona por [posição original][posição da perna]; só o triângulo superior
var multiplicadoresRedoblona = map[[2]int]decimal.Decimal{
	{1, 5}:   dec("1280"),
	{1, 10}:  dec("640"),
	{1, 20}:  dec("336.84"),
	{5, 5}:   dec("256"),
	{5, 10}:  dec("128"),
	{5, 20}:  dec("67.37"),
	{10, 10}: dec("64"),
	{10, 20}: dec("33.68"),
	{20, 20}: dec("17.73"),
}

// prêmios fixos da triplona por tramo, independentes do valor apostado
var premiosTriplona = map[string]decimal.Decimal{
	TramoEnOrden: dec("150000"),
	"3 a los 3":  dec("25000"),
	"3 a los 4":  dec("6000"),
	"3 a los 7":  dec("1200"),
	"3 a los 10": dec("400"),
	"3 a los 15": dec("100"),
	"3 a los 20": dec("40"),
}

var premiosQuintina = map[int]decimal.Decimal{
	3: dec("300"),
	4: dec("6000"),
	5: dec("200000"),
}

var premiosBorratina = map[int]decimal.Decimal{
	6: dec("1500"),
	7: dec("25000"),
	8: dec("500000"),
}

// MultiplicadorQuiniela retorna o multiplicador para cifras acertadas e posição apostada
func MultiplicadorQuiniela(cifras, posicion int) decimal.Decimal {
	return multiplicadoresQuiniela[cifras][tierOf(posicion)]
}

// PremioQuiniela = multiplicador × valor apostado na província
func PremioQuiniela(cifras, posicion int, importe decimal.Decimal) decimal.Decimal {
	return MultiplicadorQuiniela(cifras, posicion).Mul(importe).Round(2)
}

// MultiplicadorRedoblona retorna o multiplicador do par (original, perna); zero fora da tabela
func MultiplicadorRedoblona(posOriginal, posLeg int) decimal.Decimal {
	return multiplicadoresRedoblona[[2]int{tierOf(posOriginal), posLeg}]
}

// PremioRedoblona = multiplicador × valor apostado (não dividido por província)
func PremioRedoblona(posOriginal, posLeg int, importe decimal.Decimal) decimal.Decimal {
	return MultiplicadorRedoblona(posOriginal, posLeg).Mul(importe).Round(2)
}

func PremioTriplona(tramo string) decimal.Decimal   { return premiosTriplona[tramo] }
func PremioQuintina(aciertos int) decimal.Decimal  { return premiosQuintina[aciertos] }
func PremioBorratina(aciertos int) decimal.Decimal { return premiosBorratina[aciertos] }
