package insurance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT IN WORDS - Spanish, as printed on the contract
// =============================================================================
//
//	1260      -> MIL DOSCIENTOS SESENTA PESOS
//	21000     -> VEINTIÚN MIL PESOS
//	1500.25   -> MIL QUINIENTOS PUNTO DOS CINCO PESOS
//
// Decimals are rounded to cents, trailing zeros dropped, and read digit by
// digit after PUNTO.

var (
	units = []string{"cero", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve",
		"diez", "once", "doce", "trece", "catorce", "quince", "dieciséis", "diecisiete", "dieciocho", "diecinueve",
		"veinte", "veintiuno", "veintidós", "veintitrés", "veinticuatro", "veinticinco", "veintiséis",
		"veintisiete", "veintiocho", "veintinueve"}
	tens     = []string{"", "", "", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa"}
	hundreds = []string{"", "ciento", "doscientos", "trescientos", "cuatrocientos", "quinientos",
		"seiscientos", "setecientos", "ochocientos", "novecientos"}
)

// AmountToWords spells amount in Spanish capitals followed by PESOS.
func AmountToWords(amount decimal.Decimal) string {
	amount = amount.Abs().Round(2)
	whole := amount.Truncate(0)
	words := cardinal(whole.IntPart(), false)

	cents := amount.Sub(whole).Shift(2).IntPart()
	if cents > 0 {
		digits := strings.TrimRight(twoDigits(cents), "0")
		words += " punto"
		for _, d := range digits {
			words += " " + units[d-'0']
		}
	}
	return strings.ToUpper(words) + " PESOS"
}

func twoDigits(n int64) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// cardinal spells n. apocope shortens a trailing "uno" to "un" as required
// before mil, millón and millones.
func cardinal(n int64, apocope bool) string {
	switch {
	case n < 1000:
		return belowThousand(int(n), apocope)
	case n < 1_000_000:
		thousands, rest := n/1000, n%1000
		s := "mil"
		if thousands > 1 {
			s = belowThousand(int(thousands), true) + " mil"
		}
		if rest > 0 {
			s += " " + belowThousand(int(rest), apocope)
		}
		return s
	default:
		millions, rest := n/1_000_000, n%1_000_000
		s := "un millón"
		if millions > 1 {
			s = cardinal(millions, true) + " millones"
		}
		if rest > 0 {
			s += " " + cardinal(rest, apocope)
		}
		return s
	}
}

func belowThousand(n int, apocope bool) string {
	if n == 100 {
		return "cien"
	}
	h, rest := n/100, n%100
	var parts []string
	if h > 0 {
		parts = append(parts, hundreds[h])
	}
	if rest > 0 || h == 0 {
		parts = append(parts, belowHundred(rest, apocope))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int, apocope bool) string {
	var s string
	if n < 30 {
		s = units[n]
	} else {
		s = tens[n/10]
		if n%10 > 0 {
			s += " y " + units[n%10]
		}
	}
	if apocope {
		switch {
		case strings.HasSuffix(s, "veintiuno"):
			s = strings.TrimSuffix(s, "veintiuno") + "veintiún"
		case strings.HasSuffix(s, "uno"):
			s = strings.TrimSuffix(s, "uno") + "un"
		}
	}
	return s
}
