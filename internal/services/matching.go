// Package services holds domain logic shared by controllers: duplicate
// detection and resolution, name matching, authentication, and cached
// reference-data lookups.
package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// arabicNormalizer strips combining marks (tashkeel) after NFKD
// decomposition, then recomposes. Letter folding happens separately.
var arabicNormalizer = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// letterFolds maps Arabic letter variants onto one canonical form so that
// spelling variations of the same name compare equal.
var letterFolds = strings.NewReplacer(
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ٱ", "ا",
	"ى", "ي",
	"ئ", "ي",
	"ؤ", "و",
	"ة", "ه",
	"ـ", "", // tatweel
)

// NormalizeArabic canonicalizes Arabic text for comparison: diacritics are
// removed, letter variants folded, and whitespace collapsed.
func NormalizeArabic(s string) string {
	out, _, err := transform.String(arabicNormalizer, s)
	if err != nil {
		out = s
	}
	out = letterFolds.Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// NameSimilarity scores two names in [0, 1] using token overlap after
// normalization. Order-insensitive, so "أحمد خليل" matches "خليل أحمد".
func NameSimilarity(a, b string) float64 {
	tokensA := strings.Fields(NormalizeArabic(strings.ToLower(a)))
	tokensB := strings.Fields(NormalizeArabic(strings.ToLower(b)))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(tokensA))
	for _, tok := range tokensA {
		setA[tok] = true
	}
	setB := make(map[string]bool, len(tokensB))
	for _, tok := range tokensB {
		setB[tok] = true
	}

	var common int
	for tok := range setA {
		if setB[tok] {
			common++
		}
	}

	union := len(setA) + len(setB) - common
	return float64(common) / float64(union)
}

// NamesLikelyMatch reports whether two person names are similar enough to
// flag as potential duplicates.
func NamesLikelyMatch(a, b string) bool {
	return NameSimilarity(a, b) >= 0.5
}
