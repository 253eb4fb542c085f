package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// IdentityKey normaliza nombre, marca y modelo para detectar el mismo producto en una carpeta:
// sin tildes, en minúsculas y con espacios colapsados ("Jeringa  Descartable" == "jeringa descartable").
func IdentityKey(name, brand, model string) string {
	parts := []string{foldText(name), foldText(brand), foldText(model)}
	return strings.Join(parts, "|")
}

func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
