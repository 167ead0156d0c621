package nlu

// stopwords are folded Slovenian function words ignored by topic matching.
var stopwords = map[string]bool{
	"in": true, "ali": true, "pa": true, "da": true, "ne": true, "je": true,
	"so": true, "sem": true, "si": true, "smo": true, "ste": true, "bi": true,
	"bo": true, "bom": true, "bodo": true, "biti": true, "bil": true, "bila": true,
	"v": true, "na": true, "za": true, "z": true, "s": true, "iz": true, "od": true,
	"do": true, "pri": true, "po": true, "o": true, "k": true, "h": true,
	"ki": true, "kot": true, "ce": true, "to": true, "ta": true, "te": true,
	"ti": true, "tega": true, "temu": true, "jaz": true, "vi": true, "mi": true,
	"me": true, "se": true, "moj": true, "moja": true, "moje": true,
	"vas": true, "vase": true, "vasa": true, "imam": true, "ima": true, "imate": true,
	"lahko": true, "kaj": true, "kako": true, "kdaj": true, "zakaj": true, "kje": true,
	"kateri": true, "katera": true, "katero": true, "mora": true, "moram": true,
	"prosim": true, "hvala": true, "tudi": true, "samo": true,
	"zelo": true, "malo": true, "vec": true, "vse": true,
}

// IsStopword reports whether a folded token carries no topical meaning.
func IsStopword(tok string) bool {
	return stopwords[tok]
}
