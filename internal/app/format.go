package app

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug lowercases name, strips accents and joins the remaining letters and
// digits with single dashes: "Barbería El Elegante" -> "barberia-el-elegante".
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

var copPrinter = message.NewPrinter(language.MustParse("es-CO"))

// FormatCOP renders whole pesos the way receipts show them, e.g. "$ 25.000".
func FormatCOP(pesos int64) string {
	return copPrinter.Sprintf("$ %d", pesos)
}
