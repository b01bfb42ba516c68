package quiniela

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseImporte interpreta valores digitados no balcão ("1.234,50", "10,5", "$ 20").
// Ponto sozinho é decimal ("10.5"), exceto seguido de exatamente três dígitos ("1.234").
// Entrada inválida vira zero.
func ParseImporte(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// o separador que aparece por último é o decimal
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	case lastDot > 0 && len(s)-lastDot-1 == 3:
		// ponto único seguido de três dígitos é milhar: "1.234" = 1234
		s = strings.Replace(s, ".", "", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
