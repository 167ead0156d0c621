// Package nlu turns noisy Slovenian utterances into structured signals:
// normalized text, spoken numbers, slot values and turn intents.
package nlu

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, applies NFKC, replaces everything that is not a
// letter, mark, digit or space with a space and collapses whitespace.
// Diacritics are preserved.
func Normalize(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsMark(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Fold is the strict variant of Normalize used for keyword matching. It also
// removes combining marks so that "š", "č" and "ž" compare equal to their
// plain letters, which is how transcription services often render them.
func Fold(s string) string {
	n := Normalize(s)
	// A transformer chain carries state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, n)
	if err != nil {
		return n
	}
	return strings.Map(foldRune, out)
}

// foldRune maps letters that have no canonical decomposition.
func foldRune(r rune) rune {
	switch r {
	case 'đ':
		return 'd'
	case 'ł':
		return 'l'
	case 'ß':
		return 's'
	}
	return r
}

// tokens splits already normalized text on spaces.
func tokens(s string) []string {
	return strings.Fields(s)
}

// containsPhrase reports whether phrase occurs in text on token boundaries.
// Both arguments must already be folded.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	padded := " " + text + " "
	return strings.Contains(padded, " "+phrase+" ")
}

// hasTokenPrefix reports whether any token in toks starts with one of stems.
func hasTokenPrefix(toks []string, stems ...string) bool {
	for _, tok := range toks {
		for _, stem := range stems {
			if strings.HasPrefix(tok, stem) {
				return true
			}
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
