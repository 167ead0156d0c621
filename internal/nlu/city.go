package nlu

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// CityOther is the city used when the customer does not name one or says it
// does not matter.
const CityOther = "Other"

type cityEntry struct {
	name  string
	forms []string
}

// gazetteer maps folded grammatical case forms to canonical city names.
var gazetteer = []cityEntry{
	{"Ljubljana", []string{"ljubljana", "ljubljani", "ljubljane", "ljubljano", "lj"}},
	{"Maribor", []string{"maribor", "mariboru", "maribora"}},
	{"Celje", []string{"celje", "celju", "celja"}},
	{"Kranj", []string{"kranj", "kranju", "kranja"}},
	{"Koper", []string{"koper", "kopru", "kopra"}},
	{"Novo mesto", []string{"novo mesto", "novem mestu", "novega mesta"}},
	{"Nova Gorica", []string{"nova gorica", "novi gorici", "nove gorice", "gorica", "gorici"}},
	{"Murska Sobota", []string{"murska sobota", "murski soboti", "murske sobote", "sobota", "soboti"}},
	{"Velenje", []string{"velenje", "velenju", "velenja"}},
	{"Ptuj", []string{"ptuj", "ptuju", "ptuja"}},
	{"Domžale", []string{"domzale", "domzalah"}},
	{"Kamnik", []string{"kamnik", "kamniku", "kamnika"}},
	{"Jesenice", []string{"jesenice", "jesenicah"}},
	{"Izola", []string{"izola", "izoli", "izole"}},
	{"Piran", []string{"piran", "piranu", "pirana"}},
}

var (
	cityForms  []string
	cityByForm = map[string]string{}
)

func init() {
	for _, e := range gazetteer {
		for _, f := range e.forms {
			cityForms = append(cityForms, f)
			cityByForm[f] = e.name
		}
	}
}

var cityPrepositions = map[string]bool{
	"v": true, "iz": true, "blizu": true, "okolica": true, "okolici": true,
	"pri": true, "na": true, "okoli": true,
}

var dontCarePhrases = []string{
	"vseeno", "ni pomembno", "ni vazno", "kjerkoli", "kjer koli", "drugje", "drugo mesto",
	"nikjer posebej", "ne bi povedal", "ne bi povedala",
}

// fillerWords are single words that are never city names.
var fillerWords = map[string]bool{
	"aha": true, "hmm": true, "mhm": true, "dober": true, "dan": true, "zivjo": true,
	"hvala": true, "pozdravljeni": true, "zdravo": true, "torej": true, "no": true,
	"kaj": true, "kako": true, "ker": true, "tudi": true, "samo": true, "pomoc": true,
	"zavarovanje": true, "vprasanje": true, "ponudba": true, "koliko": true,
	"nov": true, "nova": true, "novo": true, "rabljen": true, "rabljeno": true, "nevem": true,
}

// ExtractCity finds where the vehicle is registered. A preposition phrase such
// as "v Mariboru" is resolved through the gazetteer. Otherwise a lone word is
// accepted as a city unless it looks like another kind of answer. Unknown
// lone words are title-cased and used as given.
func ExtractCity(text string) (string, bool) {
	folded := Fold(text)
	toks := tokens(folded)
	if len(toks) == 0 {
		return "", false
	}

	if name, ok := cityAfterPreposition(toks); ok {
		return name, true
	}

	for _, p := range dontCarePhrases {
		if containsPhrase(folded, p) {
			return CityOther, true
		}
	}

	if name, ok := cityByForm[folded]; ok {
		return name, true
	}
	if rejectCity(folded, toks) {
		return "", false
	}
	if len(toks) != 1 {
		return "", false
	}
	if name, ok := snapCity(toks[0]); ok {
		return name, true
	}
	return titleCase(Normalize(text)), true
}

func cityAfterPreposition(toks []string) (string, bool) {
	for i, tok := range toks {
		if !cityPrepositions[tok] || i+1 >= len(toks) {
			continue
		}
		if name, ok := lookupCity(toks[i+1:]); ok {
			return name, true
		}
		if name, ok := snapCity(toks[i+1]); ok {
			return name, true
		}
	}
	return "", false
}

// lookupCity matches the longest gazetteer form, up to three tokens long,
// starting at any position in toks.
func lookupCity(toks []string) (string, bool) {
	for i := range toks {
		for n := 3; n >= 1; n-- {
			if i+n > len(toks) {
				continue
			}
			if IsStopword(toks[i]) {
				break
			}
			if name, ok := cityByForm[strings.Join(toks[i:i+n], " ")]; ok {
				return name, true
			}
		}
	}
	return "", false
}

// snapCity corrects a misspelled single word to the closest gazetteer form.
// Only close candidates sharing the first letter are accepted.
func snapCity(word string) (string, bool) {
	if utf8.RuneCountInString(word) < 5 {
		return "", false
	}
	for _, m := range fuzzy.Find(word, cityForms) {
		diff := len(m.Str) - len(word)
		if diff < -2 || diff > 2 || m.Str[0] != word[0] {
			continue
		}
		return cityByForm[m.Str], true
	}
	return "", false
}

func rejectCity(folded string, toks []string) bool {
	if utf8.RuneCountInString(folded) < 3 {
		return true
	}
	if MentionsCoverage(folded) || HasCalcWording(folded) || MentionsVehicle(folded) {
		return true
	}
	if IsAffirmative(folded) || IsNegative(folded) || IsInformationQuestion(folded) {
		return true
	}
	if HasSlotHint(folded) {
		return true
	}
	if _, ok := ParseNumber(folded); ok {
		return true
	}
	for _, tok := range toks {
		if fillerWords[tok] || IsStopword(tok) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
