package nlu

import "unicode/utf8"

// MatchKind describes how a candidate token matched a dictionary key.
type MatchKind int

const (
	NoMatch MatchKind = iota
	ExactMatch
	PrefixMatch
	PhoneticMatch
)

// Matcher performs tolerant comparison of transcribed words against a
// dictionary of folded keys. It accepts exact matches, a shared prefix of at
// least PrefixLen runes with a small length difference, and same-length words
// that differ in exactly one position where both letters sound alike.
type Matcher struct {
	PrefixLen     int
	MaxLengthDiff int
	classes       map[rune]int
}

// defaultClasses lists letters that speech-to-text output commonly confuses.
var defaultClasses = [][]rune{
	{'s', 'z'},
	{'t', 'd'},
	{'v', 'f', 'w'},
	{'b', 'p'},
	{'k', 'g'},
}

// NewMatcher builds a matcher with the given prefix length and equivalence
// classes. A letter listed in several classes belongs to the first one.
func NewMatcher(prefixLen, maxLengthDiff int, classes [][]rune) *Matcher {
	m := &Matcher{
		PrefixLen:     prefixLen,
		MaxLengthDiff: maxLengthDiff,
		classes:       make(map[rune]int),
	}
	for i, class := range classes {
		for _, r := range class {
			if _, ok := m.classes[r]; !ok {
				m.classes[r] = i + 1
			}
		}
	}
	return m
}

// DefaultMatcher is the matcher used by the number parser.
var DefaultMatcher = NewMatcher(3, 2, defaultClasses)

// Match compares a folded candidate with a folded key.
func (m *Matcher) Match(candidate, key string) MatchKind {
	if candidate == key {
		return ExactMatch
	}
	if m.prefixMatch(candidate, key) {
		return PrefixMatch
	}
	if m.phoneticMatch(candidate, key) {
		return PhoneticMatch
	}
	return NoMatch
}

func (m *Matcher) prefixMatch(candidate, key string) bool {
	cr, kr := []rune(candidate), []rune(key)
	if len(cr) < m.PrefixLen || len(kr) < m.PrefixLen {
		return false
	}
	diff := len(cr) - len(kr)
	if diff < 0 {
		diff = -diff
	}
	if diff > m.MaxLengthDiff {
		return false
	}
	for i := 0; i < m.PrefixLen; i++ {
		if cr[i] != kr[i] {
			return false
		}
	}
	return true
}

func (m *Matcher) phoneticMatch(candidate, key string) bool {
	if utf8.RuneCountInString(candidate) != utf8.RuneCountInString(key) {
		return false
	}
	cr, kr := []rune(candidate), []rune(key)
	differing := -1
	for i := range cr {
		if cr[i] == kr[i] {
			continue
		}
		if differing >= 0 {
			return false
		}
		differing = i
	}
	if differing < 0 {
		return false
	}
	a, b := m.classes[cr[differing]], m.classes[kr[differing]]
	return a != 0 && a == b
}

// Lookup returns the first key matched by candidate. Exact matches across all
// keys win over prefix matches, which win over phonetic matches.
func (m *Matcher) Lookup(candidate string, keys []string) (string, MatchKind) {
	for _, kind := range []MatchKind{ExactMatch, PrefixMatch, PhoneticMatch} {
		for _, key := range keys {
			if m.Match(candidate, key) == kind {
				return key, kind
			}
		}
	}
	return "", NoMatch
}
