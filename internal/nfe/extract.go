package nfe

import (
	"regexp"
	"strings"
)

// Nutrient guarantee patterns, matched against the uppercased product
// description / infAdProd text. First matching pattern per nutrient wins.
var nutrientPatterns = []struct {
	code     string
	patterns []*regexp.Regexp
}{
	{"N", compileAll(
		`N\s*TOTAL\s*(\d+(?:[.,]\d+)?)\s*%`, // N TOTAL 46%
		`N\s*(\d+(?:[.,]\d+)?)\s*%`,         // N 46%
		`(\d+(?:[.,]\d+)?)\s*-\s*\d+`,       // 15-15-15 (first number)
	)},
	{"P2O5_TOTAL", compileAll(
		`P2?O5?\s*TOTAL\s*(\d+(?:[.,]\d+)?)\s*%`,
		`P2?O5?\s*(\d+(?:[.,]\d+)?)\s*%`,
		`\d+-(\d+(?:[.,]\d+)?)-`, // 15-15-15 (second number)
	)},
	{"P2O5_SOLUVEL", compileAll(
		`P2?O5?\s*SOL[UÚ]VEL\s*(\d+(?:[.,]\d+)?)\s*%`,
		`P2?O5?\s*SOL\s*(\d+(?:[.,]\d+)?)\s*%`,
	)},
	{"K2O", compileAll(
		`K2?O\s*(\d+(?:[.,]\d+)?)\s*%`,
		`\d+-\d+-(\d+(?:[.,]\d+)?)`, // 15-15-15 (third number)
	)},
	{"Ca", compileAll(
		`(\d+(?:[.,]\d+)?)\s*%?\s*CA`,
		`CA\s*(\d+(?:[.,]\d+)?)\s*%`,
	)},
	{"Mg", compileAll(
		`(\d+(?:[.,]\d+)?)\s*%?\s*MG`,
		`MG\s*(\d+(?:[.,]\d+)?)\s*%`,
	)},
	{"S", compileAll(
		`S\s*(\d+(?:[.,]\d+)?)\s*%`,
		`(\d+(?:[.,]\d+)?)\s*%?\s*S`,
	)},
	{"B", compileAll(
		`B\s*(\d+(?:[.,]\d+)?)\s*%`,
		`(\d+(?:[.,]\d+)?)\s*%?\s*B`,
	)},
	{"Cl", compileAll(`CL\s*(\d+(?:[.,]\d+)?)\s*%`)},
	{"Co", compileAll(`CO\s*(\d+(?:[.,]\d+)?)\s*%`)},
	{"Cu", compileAll(`CU\s*(\d+(?:[.,]\d+)?)\s*%`)},
	{"Fe", compileAll(`FE\s*(\d+(?:[.,]\d+)?)\s*%`)},
	{"Mn", compileAll(`MN\s*(\d+(?:[.,]\d+)?)\s*%`)},
	{"Mo", compileAll(`MO\s*(\d+(?:[.,]\d+)?)\s*%`)},
	{"Ni", compileAll(`NI\s*(\d+(?:[.,]\d+)?)\s*%`)},
	{"Si", compileAll(`SI\s*(\d+(?:[.,]\d+)?)\s*%`)},
	{"Zn", compileAll(`ZN\s*(\d+(?:[.,]\d+)?)\s*%`)},
}

// MAPA registration appears in free-text fields in a handful of layouts:
// "REGISTRO MAPA: PR 00551-7", "REG. MAPA: PR00551-7", "EI: PR00551-7",
// "PR 000328-0.000023".
var mapaRegistrationPatterns = compileAll(
	`(?i)REGISTRO\s+(?:DO\s+)?MAPA[:\s]+([A-Z]{2}\s*\d{5,6}-\d+(?:\.\d+)?)`,
	`(?i)REG[\.:]?\s*MAPA[:\s]+([A-Z]{2}\s*\d{5,6}-\d+(?:\.\d+)?)`,
	`(?i)(?:EI|EP|EC|MP)[:\s]+([A-Z]{2}\s*\d{5,6}-\d+(?:\.\d+)?)`,
	`([A-Z]{2}\s*\d{5,6}-\d+\.\d+-\d+)`,
)

var ufDigitRe = regexp.MustCompile(`([A-Z]{2})(\d)`)

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(e)
	}
	return res
}

// ExtractGuarantees pulls nutrient guarantee percentages out of a product
// description or infAdProd text, e.g. {"N": "46", "P2O5_TOTAL": "18"}.
func ExtractGuarantees(text string) map[string]string {
	garantias := map[string]string{}
	if text == "" {
		return garantias
	}
	upper := strings.ToUpper(text)
	for _, np := range nutrientPatterns {
		for _, re := range np.patterns {
			if m := re.FindStringSubmatch(upper); m != nil {
				garantias[np.code] = strings.ReplaceAll(m[1], ",", ".")
				break
			}
		}
	}
	return garantias
}

// ExtractMapaRegistration finds a MAPA registration number in free text and
// normalizes the spacing after the UF prefix ("PR00551-7" -> "PR 00551-7").
func ExtractMapaRegistration(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range mapaRegistrationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			reg := strings.TrimSpace(m[1])
			return ufDigitRe.ReplaceAllString(reg, "$1 $2")
		}
	}
	return ""
}
