package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

// Accepted ranges for numeric slots. Values outside them are treated as
// misheard and dropped.
const (
	MinVehicleAge = 0
	MaxVehicleAge = 40
	MinHorsepower = 20
	MaxHorsepower = 600
)

// The patterns run on folded text.
var (
	ageUnitRe  = regexp.MustCompile(`\b(\d{1,3})\s*(?:let|leta|leti|leto|letih|letom|letni|letna|letno|letnega)\b`)
	ageAgedRe  = regexp.MustCompile(`\b(?:star|stara|staro|stari|starost\w*)\s+(?:je\s+)?(\d{1,3})\b`)
	hpUnitRe   = regexp.MustCompile(`\b(\d{1,4})\s*(?:km|ks|hp|konj\w*)\b`)
	hpPowerRe  = regexp.MustCompile(`\bmoc\w*\s+(?:je\s+|ima\s+)?(\d{1,4})\b`)
	slotUnitRe = regexp.MustCompile(`^(?:let|leta|leti|leto|letih|letom|letni|letna|letno|letnega|km|ks|hp|konj\w*)$`)
)

var (
	ageUnitWords = []string{"let", "leta", "leti", "leto", "letih", "letom", "letni", "letna", "letno", "letnega"}
	hpUnitWords  = []string{"km", "ks", "hp"}
	ageCueStems  = []string{"star", "letnik"}
	hpCueStems   = []string{"konj", "moc", "kilovat"}
)

func isAgeUnit(tok string) bool {
	for _, w := range ageUnitWords {
		if tok == w {
			return true
		}
	}
	return false
}

func isHPUnit(tok string) bool {
	for _, w := range hpUnitWords {
		if tok == w {
			return true
		}
	}
	return strings.HasPrefix(tok, "konj")
}

// ExtractAge finds the vehicle age in years. Unit-marked forms such as
// "5 let" or "star 5" are always recognized. When expected is true the
// caller has just asked for the age and a bare number is accepted too.
func ExtractAge(text string, expected bool) (int, bool) {
	folded := Fold(text)
	if n, ok := firstInRange(folded, MinVehicleAge, MaxVehicleAge, ageUnitRe, ageAgedRe); ok {
		return n, true
	}
	toks := tokens(folded)
	if n, ok := wordsBeforeUnit(toks, isAgeUnit); ok {
		return inRange(n, MinVehicleAge, MaxVehicleAge)
	}
	// A bare number next to a power unit belongs to the horsepower slot.
	if !expected || hasPowerCue(folded, toks) {
		return 0, false
	}
	n, ok := ParseNumber(folded)
	if !ok {
		return 0, false
	}
	return inRange(n, MinVehicleAge, MaxVehicleAge)
}

// ExtractHorsepower finds engine power in horsepower, recognizing "150 km",
// "150 konjev", "moč 150" and spoken forms like "sto petdeset konjev".
func ExtractHorsepower(text string, expected bool) (int, bool) {
	folded := Fold(text)
	if n, ok := firstInRange(folded, MinHorsepower, MaxHorsepower, hpUnitRe, hpPowerRe); ok {
		return n, true
	}
	toks := tokens(folded)
	if n, ok := wordsBeforeUnit(toks, isHPUnit); ok {
		return inRange(n, MinHorsepower, MaxHorsepower)
	}
	if !expected || hasAgeCue(folded, toks) {
		return 0, false
	}
	n, ok := ParseNumber(folded)
	if !ok {
		return 0, false
	}
	return inRange(n, MinHorsepower, MaxHorsepower)
}

// firstInRange returns the first unit-marked number within [lo, hi]. A
// marked number out of range is skipped, so "5000 km, 110 konjev" still
// yields 110.
func firstInRange(folded string, lo, hi int, patterns ...*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(folded, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if v, ok := inRange(n, lo, hi); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// wordsBeforeUnit parses the number words in the window of up to three tokens
// preceding the first unit word. The window stops at digits and at units of
// other slots so that their numbers are not borrowed.
func wordsBeforeUnit(toks []string, isUnit func(string) bool) (int, bool) {
	for i, tok := range toks {
		if !isUnit(tok) {
			continue
		}
		start := i
		for j := i - 1; j >= 0 && i-j <= anchorWindow; j-- {
			if hasDigit(toks[j]) || slotUnitRe.MatchString(toks[j]) {
				break
			}
			start = j
		}
		if start == i {
			continue
		}
		if n, ok := parseWords(toks[start:i]); ok {
			return n, true
		}
	}
	return 0, false
}

func hasAgeCue(folded string, toks []string) bool {
	if ageUnitRe.MatchString(folded) || ageAgedRe.MatchString(folded) {
		return true
	}
	for _, tok := range toks {
		if isAgeUnit(tok) {
			return true
		}
	}
	return hasTokenPrefix(toks, ageCueStems...)
}

func hasPowerCue(folded string, toks []string) bool {
	if hpUnitRe.MatchString(folded) || hpPowerRe.MatchString(folded) {
		return true
	}
	for _, tok := range toks {
		if isHPUnit(tok) {
			return true
		}
	}
	return hasTokenPrefix(toks, hpCueStems...)
}

func inRange(n, lo, hi int) (int, bool) {
	if n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// HasSlotHint reports whether folded text carries an explicit cue for one of
// the vehicle slots: an age or power unit, the words for age and power, or a
// known city.
func HasSlotHint(text string) bool {
	folded := Fold(text)
	toks := tokens(folded)
	if hasAgeCue(folded, toks) || hasPowerCue(folded, toks) {
		return true
	}
	_, ok := lookupCity(toks)
	return ok
}
