package nlu

import "strings"

// Intent is the coarse purpose of a customer turn.
type Intent int

const (
	IntentNone Intent = iota
	IntentComparisonAnswer
	IntentPremiumRequest
	IntentInformation
)

func (i Intent) String() string {
	switch i {
	case IntentComparisonAnswer:
		return "comparison_answer"
	case IntentPremiumRequest:
		return "premium_request"
	case IntentInformation:
		return "information"
	default:
		return "none"
	}
}

// Keyword tables hold folded text.

var calcPhrases = []string{
	"koliko stane", "koliko bi stal", "koliko bi me stal", "koliko bi stalo",
	"koliko znasa", "koliko bi placal", "koliko bi placala", "cena zavarovanja",
	"ceno zavarovanja", "informativni izracun", "ponudbo za zavarovanje",
}

var calcStems = []string{"izracun", "premij", "izracunaj"}

var interrogatives = []string{
	"kaj", "kako", "kdaj", "zakaj", "kje", "kdo", "kateri", "katera", "katero",
	"kaksen", "kaksna", "kaksno", "ali", "a",
}

var infoStems = []string{
	"skod", "odskodnin", "prijav", "fransiz", "soudelezb", "potrdil", "dokazil",
	"asistenc", "bonus", "malus", "odpoved", "pogodb", "izjemo", "izkljucitv",
}

var infoPhrases = []string{"zelena karta", "zeleno karto", "zelene karte", "evropsko porocilo"}

var vehicleStems = []string{"avto", "avtomobil", "vozil", "auto", "motor"}

var newVehiclePhrases = []string{
	"nov izracun", "nova premija", "novo premijo", "nov avto", "drug avto", "drugi avto",
	"drugo vozilo", "novo vozilo", "drug avtomobil", "od zacetka", "na novo",
	"se en avto",
}

var cancelPhrases = []string{
	"preklici", "preklicem", "pozabi", "prekini", "stop", "ne zanima me vec", "ne zelim vec",
}

var comparisonPhrases = []string{
	"primerj", "tudi za", "se za", "kaj pa",
	"drug paket", "drugo kritje", "ostala kritja", "druga kritja",
}

var affirmativeFirst = map[string]bool{
	"da": true, "ja": true, "seveda": true, "lahko": true, "ok": true, "okej": true,
	"velja": true, "vsekakor": true, "itak": true, "absolutno": true, "prosim": true,
	"rad": true, "rada": true, "jasno": true, "super": true, "jap": true,
}

var affirmativePhrases = []string{"zanima me", "zakaj pa ne", "bi prosil", "bi prosila", "kar daj"}

var negativeFirst = map[string]bool{"ne": true, "nak": true, "nikakor": true, "nope": true}

var negativePhrases = []string{
	"ne hvala", "hvala ne", "ni treba", "ne zanima", "ne bi", "ne potrebujem",
	"to je vse", "je dovolj", "nic vec", "ni potrebno",
}

// ClassifyContext carries the session facts the classifier depends on.
type ClassifyContext struct {
	PendingComparison bool
	HasLastPremium    bool
}

// Classify assigns an intent to normalized text. The first matching rule wins:
// a pending comparison offer, an information question without calculation
// wording, calculation wording, a tier together with a vehicle slot, and a
// comparison request against an earlier quote.
func Classify(text string, ctx ClassifyContext) Intent {
	folded := Fold(text)
	if ctx.PendingComparison {
		return IntentComparisonAnswer
	}

	calc := HasCalcWording(folded)
	tiers := len(MentionedTiers(folded)) > 0
	if IsInformationQuestion(folded) && !calc && !(tiers && ctx.HasLastPremium) {
		return IntentInformation
	}
	if calc {
		return IntentPremiumRequest
	}
	if tiers && HasSlotHint(folded) {
		return IntentPremiumRequest
	}
	if ctx.HasLastPremium && (RequestsComparison(folded) || tiers) {
		return IntentPremiumRequest
	}
	return IntentNone
}

// HasCalcWording reports explicit requests for a price or calculation.
func HasCalcWording(text string) bool {
	folded := Fold(text)
	for _, p := range calcPhrases {
		if containsPhrase(folded, p) {
			return true
		}
	}
	return hasTokenPrefix(tokens(folded), calcStems...)
}

// IsInformationQuestion reports whether text asks about insurance in general:
// it opens with or contains an interrogative, or names a claims or policy topic.
func IsInformationQuestion(text string) bool {
	folded := Fold(text)
	toks := tokens(folded)
	if len(toks) == 0 {
		return false
	}
	for _, tok := range toks {
		for _, q := range interrogatives {
			// "a" and "ali" also mean "or" and only count as openers.
			if tok == q && ((q != "a" && q != "ali") || tok == toks[0]) {
				return true
			}
		}
	}
	for _, p := range infoPhrases {
		if containsPhrase(folded, p) {
			return true
		}
	}
	return hasTokenPrefix(toks, infoStems...)
}

// MentionsVehicle reports whether text names a car or vehicle.
func MentionsVehicle(text string) bool {
	return hasTokenPrefix(tokens(Fold(text)), vehicleStems...)
}

// IsNewVehicle reports phrases that start over with a different vehicle.
func IsNewVehicle(text string) bool {
	folded := Fold(text)
	for _, p := range newVehiclePhrases {
		if containsPhrase(folded, p) {
			return true
		}
	}
	return false
}

// IsCancel reports a request to abandon the current calculation.
func IsCancel(text string) bool {
	folded := Fold(text)
	for _, p := range cancelPhrases {
		if containsPhrase(folded, p) {
			return true
		}
	}
	return false
}

// IsFreshPremiumRequest reports a premium request that describes a vehicle
// from scratch: a vehicle noun with an age, power or city cue. Such a
// request must not reuse details of an earlier quote.
func IsFreshPremiumRequest(text string) bool {
	folded := Fold(text)
	if IsNewVehicle(folded) {
		return true
	}
	if !MentionsVehicle(folded) {
		return false
	}
	if _, ok := ExtractAge(folded, false); ok {
		return true
	}
	if _, ok := ExtractHorsepower(folded, false); ok {
		return true
	}
	toks := tokens(folded)
	if _, ok := cityAfterPreposition(toks); ok {
		return true
	}
	_, ok := lookupCity(toks)
	return ok
}

// RequestsComparison reports wording that asks to compare against another tier.
func RequestsComparison(text string) bool {
	folded := Fold(text)
	for _, p := range comparisonPhrases {
		if strings.Contains(p, " ") {
			if containsPhrase(folded, p) {
				return true
			}
			continue
		}
		if hasTokenPrefix(tokens(folded), p) {
			return true
		}
	}
	return false
}

// IsAffirmative reports a yes-like answer. Negative answers are checked first,
// so "ne hvala" is never affirmative.
func IsAffirmative(text string) bool {
	folded := Fold(text)
	if IsNegative(folded) {
		return false
	}
	for _, p := range affirmativePhrases {
		if containsPhrase(folded, p) {
			return true
		}
	}
	toks := tokens(folded)
	return len(toks) > 0 && affirmativeFirst[toks[0]]
}

// IsNegative reports a no-like answer.
func IsNegative(text string) bool {
	folded := Fold(text)
	if containsPhrase(folded, "zakaj pa ne") {
		return false
	}
	for _, p := range negativePhrases {
		if containsPhrase(folded, p) {
			return true
		}
	}
	toks := tokens(folded)
	return len(toks) > 0 && negativeFirst[toks[0]]
}
