package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayNameFallsBackToRawName(t *testing.T) {
	assert.Equal(t, "Índice de Integridade", DisplayName("HI"))
	assert.Equal(t, "Unknown column", DisplayName("Unknown column"))

	_, ok := Lookup("Unknown column")
	assert.False(t, ok)
	name, ok := Lookup("Dissipation factor  [%]")
	assert.True(t, ok)
	assert.Equal(t, "Fator de Dissipação [%]", name)
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"Índice de Integridade":         "indice_de_integridade",
		"Fator de Dissipação [%]":       "fator_de_dissipacao_",
		"Acidez [mg KOH/g]":             "acidez_mg_kohg",
		"Volume de Óleo (L)":            "volume_de_oleo_(l)",
		"Condição do Corta-Chama":       "condicao_do_corta-chama",
		"Nível do Reservatório de Óleo": "nivel_do_reservatorio_de_oleo",
		"weird*name?":                   "weirdname",
	}
	for in, want := range cases {
		assert.Equal(t, want, SafeFileName(in), in)
	}
}
