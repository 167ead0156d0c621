package nlu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type numberWord struct {
	word  string
	value int
}

var onesWords = []numberWord{
	{"nic", 0}, {"nula", 0},
	{"ena", 1}, {"eno", 1}, {"en", 1}, {"eden", 1}, {"enega", 1},
	{"dva", 2}, {"dve", 2},
	{"tri", 3}, {"trije", 3},
	{"stiri", 4}, {"stirje", 4},
	{"pet", 5},
	{"sest", 6},
	{"sedem", 7},
	{"osem", 8},
	{"devet", 9},
}

var teenWords = []numberWord{
	{"deset", 10},
	{"enajst", 11},
	{"dvanajst", 12},
	{"trinajst", 13},
	{"stirinajst", 14},
	{"petnajst", 15},
	{"sestnajst", 16},
	{"sedemnajst", 17},
	{"osemnajst", 18},
	{"devetnajst", 19},
}

var tensWords = []numberWord{
	{"dvajset", 20}, {"dvajst", 20},
	{"trideset", 30}, {"tridest", 30},
	{"stirideset", 40}, {"stirdeset", 40},
	{"petdeset", 50}, {"petdest", 50}, {"pedeset", 50},
	{"sestdeset", 60}, {"sesdeset", 60}, {"sezdeset", 60},
	{"sedemdeset", 70},
	{"osemdeset", 80},
	{"devetdeset", 90}, {"devedeset", 90},
}

var hundredWords = []numberWord{
	{"sto", 100},
	{"dvesto", 200}, {"dvesta", 200},
	{"tristo", 300},
	{"stiristo", 400}, {"stirsto", 400},
	{"petsto", 500},
	{"seststo", 600},
	{"sedemsto", 700},
	{"osemsto", 800},
	{"devetsto", 900},
}

// maxInflectionTail bounds the case ending allowed after a number word,
// e.g. "petnajstih" or "dvajsetimi".
const maxInflectionTail = 3

// anchorWindow is how many tokens after a hundreds word may form its remainder.
const anchorWindow = 3

var digitRun = regexp.MustCompile(`(?:^|\D)(\d{1,4})(?:\D|$)`)

var onesKeys = keysOf(onesWords)

func keysOf(ws []numberWord) []string {
	keys := make([]string, len(ws))
	for i, w := range ws {
		keys[i] = w.word
	}
	return keys
}

// byLengthDesc returns a copy of ws ordered longest word first.
func byLengthDesc(ws []numberWord) []numberWord {
	out := append([]numberWord(nil), ws...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].word) > len(out[j].word) })
	return out
}

var (
	tensByLength     = byLengthDesc(tensWords)
	hundredsByLength = byLengthDesc(hundredWords)
)

// ParseNumber extracts a non-negative integer from a spoken or typed phrase.
// A literal digit run always wins. Otherwise Slovenian number words are
// recognized, including hundreds, tens compounds written as one or several
// words, teens with case endings, and single digits transcribed loosely.
func ParseNumber(phrase string) (int, bool) {
	folded := Fold(phrase)
	if n, ok := parseDigits(folded); ok {
		return n, true
	}
	return parseWords(tokens(folded))
}

func parseDigits(folded string) (int, bool) {
	m := digitRun.FindStringSubmatch(folded)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseWords(toks []string) (int, bool) {
	if n, ok := parseHundreds(toks); ok {
		return n, true
	}
	n, _, ok := parseBelowHundred(toks)
	return n, ok
}

func parseHundreds(toks []string) (int, bool) {
	for i, tok := range toks {
		base, rest, ok := hundredValue(tok)
		if !ok {
			continue
		}
		// "tri sto" and similar two-word forms.
		if tok == "sto" && i > 0 {
			if ones, ok := exactOnes(toks[i-1]); ok && ones >= 2 {
				base = ones * 100
			}
		}
		tail := toks[i+1:]
		if rest != "" {
			tail = []string{rest}
		}
		if n, ok := parseAnchored(tail); ok {
			return base + n, true
		}
		return base, true
	}
	return 0, false
}

// hundredValue recognizes a hundreds word either alone or glued to its
// remainder, as in "stopetdeset". The glued remainder is returned in rest.
func hundredValue(tok string) (value int, rest string, ok bool) {
	for _, w := range hundredWords {
		if tok == w.word {
			return w.value, "", true
		}
	}
	for _, w := range hundredsByLength {
		if !strings.HasPrefix(tok, w.word) {
			continue
		}
		tail := strings.TrimPrefix(tok, w.word)
		tail = strings.TrimPrefix(tail, "in")
		if tail == "" {
			continue
		}
		if _, ok := parseAnchored([]string{tail}); ok {
			return w.value, tail, true
		}
	}
	return 0, "", false
}

// parseAnchored parses a below-hundred value that must start at the first
// token of toks, ignoring a leading connective.
func parseAnchored(toks []string) (int, bool) {
	if len(toks) > 0 && isConnective(toks[0]) {
		toks = toks[1:]
	}
	if len(toks) > anchorWindow {
		toks = toks[:anchorWindow]
	}
	n, start, ok := parseBelowHundred(toks)
	if !ok || start != 0 {
		return 0, false
	}
	return n, true
}

// parseBelowHundred returns the first value in [0, 99] found in toks and the
// index of the token where it starts.
func parseBelowHundred(toks []string) (value, start int, ok bool) {
	for i, tok := range toks {
		if v, ok := stemValue(tensWords, tensByLength, tok); ok {
			if i >= 2 && isConnective(toks[i-1]) {
				if ones, ok := onesValue(toks[i-2]); ok && ones >= 1 {
					return v + ones, i - 2, true
				}
			}
			return v, i, true
		}
		if v, ok := concatenatedTens(tok); ok {
			return v, i, true
		}
	}

	for i, tok := range toks {
		v, ok := stemValue(teenWords, teenWords, tok)
		if !ok {
			continue
		}
		// "devet deset" is ninety, not nine and ten.
		if v == 10 && i > 0 {
			if ones, ok := onesValue(toks[i-1]); ok && ones >= 2 {
				return ones * 10, i - 1, true
			}
		}
		return v, i, true
	}

	for i, tok := range toks {
		if v, ok := onesValue(tok); ok {
			return v, i, true
		}
	}
	return 0, 0, false
}

// stemValue matches tok exactly against ws, then as a word followed by a short
// inflection tail, trying the longest words first.
func stemValue(ws, longestFirst []numberWord, tok string) (int, bool) {
	for _, w := range ws {
		if tok == w.word {
			return w.value, true
		}
	}
	for _, w := range longestFirst {
		if strings.HasPrefix(tok, w.word) && len(tok)-len(w.word) <= maxInflectionTail {
			return w.value, true
		}
	}
	return 0, false
}

// concatenatedTens handles compounds written as one word, e.g. "enaindvajset".
func concatenatedTens(tok string) (int, bool) {
	for _, w := range tensByLength {
		if !strings.HasSuffix(tok, w.word) || len(tok) == len(w.word) {
			continue
		}
		head := strings.TrimSuffix(tok, w.word)
		head = strings.TrimSuffix(head, "in")
		if ones, ok := onesValue(head); ok && ones >= 1 {
			return w.value + ones, true
		}
	}
	return 0, false
}

// onesTails are the case endings a ones word may carry, e.g. "petih",
// "sedmimi", "dvema".
var onesTails = []string{"a", "e", "i", "o", "h", "m", "mi", "ih", "im", "imi", "ega", "emu", "ma"}

func onesValue(tok string) (int, bool) {
	key, kind := DefaultMatcher.Lookup(tok, onesKeys)
	if kind == NoMatch {
		return 0, false
	}
	if kind == PrefixMatch && !inflectedOnes(tok, key) {
		return 0, false
	}
	for _, w := range onesWords {
		if w.word == key {
			return w.value, true
		}
	}
	return 0, false
}

// inflectedOnes reports whether tok is key cut short or key with a case
// ending. The fleeting e of "sedem" and "osem" may drop ("sedmih"). Words
// like "petek" or "sestra" share a prefix but are not numbers.
func inflectedOnes(tok, key string) bool {
	if strings.HasPrefix(key, tok) {
		return true
	}
	stems := []string{key}
	if strings.HasSuffix(key, "em") {
		stems = append(stems, strings.TrimSuffix(key, "em")+"m")
	}
	for _, stem := range stems {
		if !strings.HasPrefix(tok, stem) {
			continue
		}
		tail := strings.TrimPrefix(tok, stem)
		for _, t := range onesTails {
			if tail == t {
				return true
			}
		}
	}
	return false
}

func exactOnes(tok string) (int, bool) {
	for _, w := range onesWords {
		if w.word == tok {
			return w.value, true
		}
	}
	return 0, false
}

func isConnective(tok string) bool {
	return tok == "in" || tok == "n"
}
