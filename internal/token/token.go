// Package token normalizes field and identifier names for matching.
// Every matching stage consumes its output: ordered stems feed the
// suffix-key index, the token bag feeds overlap scoring.
package token

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	segmentSplitRe = regexp.MustCompile(`[._\s]+`)
	nonAlnumRe     = regexp.MustCompile(`[^A-Za-z0-9]`)
	wordRunRe      = regexp.MustCompile(`[a-z]+|\d+`)
	identSplitRe   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	validIdentRe   = regexp.MustCompile(`^[A-Z0-9]+$`)
)

// stopWords are dropped entirely during normalization. "Value" suffixes in
// KNX field names carry no matching signal.
var stopWords = map[string]bool{"value": true}

// Bag is an order-independent set of normalized word runs.
type Bag map[string]struct{}

// Intersect returns the number of tokens present in both bags.
func (b Bag) Intersect(other Bag) int {
	n := 0
	for t := range b {
		if _, ok := other[t]; ok {
			n++
		}
	}
	return n
}

// Tokenize splits text on whitespace, dot, and underscore boundaries and
// normalizes each segment: strip non-alphanumerics, lower-case, drop stop
// words, de-pluralize. It returns the ordered stems (order preserved for
// suffix-chain keys) and a bag that additionally holds the alphabetic and
// numeric runs of each stem.
func Tokenize(text string) ([]string, Bag) {
	bag := make(Bag)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, bag
	}
	text = stripDiacritics(text)

	var ordered []string
	for _, part := range segmentSplitRe.Split(text, -1) {
		cleaned := nonAlnumRe.ReplaceAllString(part, "")
		if cleaned == "" {
			continue
		}

		stem := depluralize(strings.ToLower(cleaned))
		if stem == "" || stopWords[stem] {
			continue
		}

		ordered = append(ordered, stem)
		bag[stem] = struct{}{}
		for _, run := range wordRunRe.FindAllString(stem, -1) {
			bag[run] = struct{}{}
		}
	}

	return ordered, bag
}

// SuffixKeys returns every right-aligned '.'-joined suffix chain of the
// ordered tokens: [a b c] -> {"a.b.c", "b.c", "c"}. Two field names share a
// suffix key when one is a dotted-path suffix of the other, which is how
// "Part.Name" lines up with "Name".
func SuffixKeys(ordered []string) map[string]struct{} {
	keys := make(map[string]struct{}, len(ordered))
	for i := range ordered {
		keys[strings.Join(ordered[i:], ".")] = struct{}{}
	}
	return keys
}

// depluralize applies the simple English singularization used throughout
// matching: ies->y, trailing ses drops its s, trailing s dropped. Short
// tokens are left alone so "as"/"is" style fragments survive. Every rule
// yields a stem no later rule fires on, which keeps Tokenize idempotent.
func depluralize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "ses") && len(s) > 3:
		return s[:len(s)-1]
	case strings.HasSuffix(s, "s") && len(s) > 3:
		return s[:len(s)-1]
	}
	return s
}

// IdentifierPart is a raw identifier token with its original casing
// retained. SAP inference scores tokens by casing, so both forms travel
// together.
type IdentifierPart struct {
	Upper    string
	Original string
}

// IdentifierParts splits text on every non-alphanumeric boundary without
// normalizing case. Used for ERP identifier extraction, where KNA1 and
// kna1 are signal but Kna1 is prose.
func IdentifierParts(text string) []IdentifierPart {
	if text == "" {
		return nil
	}
	var parts []IdentifierPart
	for _, p := range identSplitRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts = append(parts, IdentifierPart{Upper: strings.ToUpper(p), Original: p})
	}
	return parts
}

// ValidIdentifier reports whether an upper-cased token looks like an ERP
// identifier: alphanumeric and at least three characters.
func ValidIdentifier(upper string) bool {
	return len(upper) >= 3 && validIdentRe.MatchString(upper)
}

// IsUpper reports whether every letter in s is upper-case and s contains at
// least one letter.
func IsUpper(s string) bool {
	return hasLetterCase(s, unicode.IsUpper)
}

// IsLower reports whether every letter in s is lower-case and s contains at
// least one letter.
func IsLower(s string) bool {
	return hasLetterCase(s, unicode.IsLower)
}

func hasLetterCase(s string, want func(rune) bool) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !want(r) {
				return false
			}
		}
	}
	return hasLetter
}

// stripDiacritics removes combining marks after NFKD decomposition so that
// accented field names normalize to their ASCII skeletons.
func stripDiacritics(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
