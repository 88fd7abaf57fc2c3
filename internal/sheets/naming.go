package sheets

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.BrazilianPortuguese)

// DisplayName derives a human name from a client ID or file base name:
// underscores become spaces and each word is title-cased.
//
//	DisplayName("padaria_sao_joao") -> "Padaria Sao Joao"
func DisplayName(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	return titleCaser.String(strings.Join(words, " "))
}
