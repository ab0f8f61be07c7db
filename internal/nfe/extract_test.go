package nfe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractGuaranteesNPKFormula(t *testing.T) {
	g := ExtractGuarantees("ADUBO NPK 15-20-10")
	assert.Equal(t, "15", g["N"])
	assert.Equal(t, "20", g["P2O5_TOTAL"])
	assert.Equal(t, "10", g["K2O"])
}

func TestExtractGuaranteesExplicitPercent(t *testing.T) {
	g := ExtractGuarantees("UREIA N TOTAL 46% CL 2%")
	assert.Equal(t, "46", g["N"])
	assert.Equal(t, "2", g["Cl"])
}

func TestExtractGuaranteesCommaDecimal(t *testing.T) {
	g := ExtractGuarantees("ZN 7,5%")
	assert.Equal(t, "7.5", g["Zn"])
}

func TestExtractGuaranteesEmpty(t *testing.T) {
	assert.Empty(t, ExtractGuarantees(""))
}

func TestExtractMapaRegistration(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"REGISTRO MAPA: PR 00551-7", "PR 00551-7"},
		{"REG. MAPA: PR00551-7", "PR 00551-7"},
		{"registro mapa: SP 12345-0", "SP 12345-0"},
		{"EI: MG00432-1", "MG 00432-1"},
		{"Produto registrado sob PR 000328-0.000023-5", "PR 000328-0.000023-5"},
		{"sem registro algum", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractMapaRegistration(c.text), c.text)
	}
}
