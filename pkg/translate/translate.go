// Package translate maps source column names to the Portuguese labels used on
// plots and derives file-system safe names from them.
package translate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var displayNames = map[string]string{
	"Overload level":                   "Nível de Sobrecarga",
	"Mean Load (MVA)":                  "Carga Média (MVA)",
	"Critical Loads":                   "Cargas Críticas",
	"Oil Volume (L)":                   "Volume de Óleo (L)",
	"Proximity of other buildings (m)": "Proximidade de Edifícios (m)",
	"Penalties (MVA)":                  "Penalidades (MVA)",
	"Nivel_Reservatorio_Oleo":          "Nível do Reservatório de Óleo",
	"Condicao_Corta_Chama":             "Condição do Corta-Chama",
	"Humidity [ppm]":                   "Umidade [ppm]",
	"Acidity [mg KOH/g]":               "Acidez [mg KOH/g]",
	"Dielectric Strength [kV]":         "Rigidez Dielétrica [kV]",
	"Dissipation factor  [%]":          "Fator de Dissipação [%]",
	"Dissolved gases [ppm]":            "Gases Dissolvidos [ppm]",
	"DP":                               "Grau de Polimerização",
	"HI":                               "Índice de Integridade",
}

// Lookup returns the display name for a column and whether one is defined.
func Lookup(column string) (string, bool) {
	name, ok := displayNames[column]
	return name, ok
}

// DisplayName returns the display name for a column, falling back to the
// column name itself when no translation exists.
func DisplayName(column string) string {
	if name, ok := displayNames[column]; ok {
		return name
	}
	return column
}

// SafeFileName strips accents and characters that are unsafe in file names.
// "Índice de Integridade" becomes "indice_de_integridade".
func SafeFileName(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, text)
	if err != nil {
		plain = text
	}
	plain = strings.ToLower(plain)
	plain = strings.NewReplacer("[", "", "]", "", "%", "", "/", "", " ", "_").Replace(plain)

	var b strings.Builder
	for _, r := range plain {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_', r == '-', r == '.', r == '(', r == ')':
			b.WriteRune(r)
		}
	}
	return b.String()
}
