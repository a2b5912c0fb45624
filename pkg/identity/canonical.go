// Package identity maps raw player name strings to stable universal player
// identities. Canonicalization is applied identically regardless of source,
// so the same physical player always lands on the same lookup key; the
// resolver then creates identities lazily and deterministically, so repeated
// resolution of the same lookup never produces a second id.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// generationalSuffixes are name suffixes that distinguish generations of the
// same family name. Ordered longest-first so concatenated matching strips
// "iii" before "ii".
var generationalSuffixes = []string{"iii", "ii", "iv", "jr", "sr", "v"}

// foldCaser folds case without language-specific rules.
var foldCaser = cases.Fold()

// accentStripper decomposes runes and removes combining marks, so
// "Dončić" canonicalizes the same as "Doncic".
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonicalize normalizes a raw name into the canonical lookup key used to
// join records across sources: case-folded, accents and punctuation
// stripped, generational suffix dropped, whitespace removed.
func Canonicalize(raw string) string {
	s := foldCaser.String(raw)
	if stripped, _, err := transform.String(accentStripper, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Punctuation dropped entirely, so "O'Neal" joins with "ONeal".
	}

	tokens := strings.Fields(b.String())
	if len(tokens) > 1 && isGenerationalSuffix(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, "")
}

// isGenerationalSuffix reports whether a lone token is a generational suffix.
func isGenerationalSuffix(token string) bool {
	for _, suffix := range generationalSuffixes {
		if token == suffix {
			return true
		}
	}
	return false
}

// HasGenerationalSuffix reports whether a raw name carries a generational
// suffix, either as a trailing token ("Tim Hardaway Jr") or concatenated
// onto an already-normalized lookup ("hardawayjr").
func HasGenerationalSuffix(raw string) bool {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(tokens) > 1 && isGenerationalSuffix(tokens[len(tokens)-1]) {
		return true
	}
	_, ok := SplitSuffix(strings.Join(tokens, ""))
	return ok
}

// SplitSuffix splits a concatenated lookup into its base and generational
// suffix. The lone "v" suffix is excluded here: on a concatenated string it
// is indistinguishable from a name ending in the letter v.
func SplitSuffix(lookup string) (base string, ok bool) {
	for _, suffix := range generationalSuffixes {
		if suffix == "v" {
			continue
		}
		if strings.HasSuffix(lookup, suffix) {
			base = strings.TrimSuffix(lookup, suffix)
			if base != "" {
				return base, true
			}
		}
	}
	return "", false
}

// DiffersBySuffix reports whether two lookups name the same base with one
// carrying a generational suffix. When they do, it returns the suffixed
// (alias) form and the bare (canonical) form.
func DiffersBySuffix(a, b string) (aliasForm, canonicalForm string, ok bool) {
	if a == b {
		return "", "", false
	}
	if base, found := SplitSuffix(a); found && base == b {
		return a, b, true
	}
	if base, found := SplitSuffix(b); found && base == a {
		return b, a, true
	}
	return "", "", false
}
