// Package normalizer turns free-text construction/service addresses into
// query strings a geocoding provider can resolve. Everything here is pure:
// the same input always produces the same output and nothing performs I/O.
package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// leadingLabel matches "work address" / "main address" labels, accented or not.
	leadingLabel = regexp.MustCompile(
		`(?i)^(?:endere[cç]o(?:\s+(?:d[aeo]\s+)?(?:obra|principal))?|local\s+da\s+obra)\s*:\s*`,
	)

	dashSeparator = regexp.MustCompile(`\s+[-–—]\s+`)

	// noiseTokens are removed outright, empty segments are cleaned afterwards.
	noiseTokens = []*regexp.Regexp{
		// 11º andar, 2o andar, andar 3
		regexp.MustCompile(`(?i)\b(?:\d+\s*[ºª°o]?\s*andar|andar\s*\d+)\b`),
		// apto 5, ap. 12, apartamento nº 3, sala 1203, unidade 7
		regexp.MustCompile(
			`(?i)\b(?:apartamento|apto|apt|ap|sala|unidade|conjunto|cj|loja)\.?\s*(?:n[º°o.]?\s*)?\d+[a-z]?\b`,
		),
		// bloco B, bl. 2
		regexp.MustCompile(`(?i)\b(?:bloco\s*|bl\.\s*)[a-z0-9]{1,3}\b`),
		// s/n, s/nº, sem número
		regexp.MustCompile(`(?i)\bs/n[º°o]?\.?`),
		regexp.MustCompile(`(?i)\bsem\s+n[uú]mero\b`),
	}

	// fieldLabels keep their value: "Bairro: Centro" becomes "Centro".
	fieldLabels = regexp.MustCompile(`(?i)\b(?:bairro|cidade|cep|estado|uf|munic[ií]pio|distrito)\s*:\s*`)

	whitespaceRun = regexp.MustCompile(`\s+`)
	commaRun      = regexp.MustCompile(`\s*,[\s,]*`)
)

// Normalize cleans a raw address into a geocoder-friendly query string.
// An empty result means the address carries nothing geocodable.
func Normalize(raw string) string {
	// Decomposed accents ("c" + U+0327) would slip past the patterns below.
	addr := strings.TrimSpace(norm.NFC.String(raw))
	if addr == "" {
		return ""
	}

	addr = leadingLabel.ReplaceAllString(addr, "")
	addr = dashSeparator.ReplaceAllString(addr, ", ")

	for _, re := range noiseTokens {
		addr = re.ReplaceAllString(addr, "")
	}

	addr = fieldLabels.ReplaceAllString(addr, "")

	addr = whitespaceRun.ReplaceAllString(addr, " ")
	addr = commaRun.ReplaceAllString(addr, ", ")

	return strings.Trim(addr, ", ")
}

// NormalizeValue is Normalize for values of unknown type, such as a nullable
// database column. Anything that is not text normalizes to an empty string.
func NormalizeValue(value any) string {
	switch v := value.(type) {
	case string:
		return Normalize(v)
	case *string:
		if v == nil {
			return ""
		}
		return Normalize(*v)
	case []byte:
		return Normalize(string(v))
	default:
		return ""
	}
}
