package geocoding

import (
	"regexp"
	"strings"
)

// abbreviations expands common Brazilian street-type abbreviations.
var abbreviations = []struct {
	pattern *regexp.Regexp
	full    string
}{
	{regexp.MustCompile(`(?i)\bav\.?\s+`), "Avenida "},
	{regexp.MustCompile(`(?i)\br\.\s*`), "Rua "},
	{regexp.MustCompile(`(?i)\bal\.\s*`), "Alameda "},
	{regexp.MustCompile(`(?i)\btv\.?\s+`), "Travessa "},
	{regexp.MustCompile(`(?i)\brod\.\s*`), "Rodovia "},
	{regexp.MustCompile(`(?i)\bestr\.\s*`), "Estrada "},
	{regexp.MustCompile(`(?i)\bp[cç]a?\.\s*`), "Praça "},
}

// ExpandAbbreviations replaces street-type abbreviations with their full form.
func ExpandAbbreviations(address string) string {
	for _, abbr := range abbreviations {
		address = abbr.pattern.ReplaceAllString(address, abbr.full)
	}

	return address
}

// BuildCandidates returns the ordered, de-duplicated list of queries to try for a
// normalized address, most specific first:
//  1. the address itself,
//  2. the address with abbreviations expanded,
//  3. only its first comma-delimited segment.
//
// Each candidate carries the region suffix. An empty address yields no candidates.
func BuildCandidates(normalized, regionSuffix string) []string {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return nil
	}

	seen := make(map[string]bool)
	candidates := make([]string, 0, 3)
	add := func(addr string) {
		query := withSuffix(strings.TrimSpace(addr), regionSuffix)
		if query != "" && !seen[query] {
			seen[query] = true
			candidates = append(candidates, query)
		}
	}

	add(normalized)
	add(ExpandAbbreviations(normalized))
	first, _, _ := strings.Cut(normalized, ",")
	add(first)

	return candidates
}

func withSuffix(addr, suffix string) string {
	suffix = strings.Trim(suffix, ", ")
	if addr == "" || suffix == "" {
		return addr
	}

	return addr + ", " + suffix
}
