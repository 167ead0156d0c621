package nlu

import (
	"fmt"
	"testing"
)

var canonicalOnes = []string{"nič", "ena", "dva", "tri", "štiri", "pet", "šest", "sedem", "osem", "devet"}

var canonicalTeens = []string{
	"deset", "enajst", "dvanajst", "trinajst", "štirinajst",
	"petnajst", "šestnajst", "sedemnajst", "osemnajst", "devetnajst",
}

var canonicalTens = map[int]string{
	2: "dvajset", 3: "trideset", 4: "štirideset", 5: "petdeset",
	6: "šestdeset", 7: "sedemdeset", 8: "osemdeset", 9: "devetdeset",
}

func spell(n int) string {
	switch {
	case n < 10:
		return canonicalOnes[n]
	case n < 20:
		return canonicalTeens[n-10]
	case n%10 == 0:
		return canonicalTens[n/10]
	default:
		return canonicalOnes[n%10] + "in" + canonicalTens[n/10]
	}
}

func TestParseNumberRoundTripBelowHundred(t *testing.T) {
	t.Parallel()

	for n := 0; n < 100; n++ {
		word := spell(n)
		got, ok := ParseNumber(word)
		if !ok || got != n {
			t.Errorf("ParseNumber(%q) = %d, %v; want %d", word, got, ok, n)
		}
	}
}

func TestParseNumberVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"dvajst", 20},
		{"enaindvajst", 21},
		{"ena in dvajset", 21},
		{"enindvajset", 21},
		{"devedeset", 90},
		{"devet deset", 90},
		{"pet deset", 50},
		{"petnajstih", 15},
		{"trije", 3},
		{"stirje", 4},
		{"sedmih", 7},
		{"bet", 5},
		{"sto", 100},
		{"sto petdeset", 150},
		{"stopetdeset", 150},
		{"sto in pet", 105},
		{"dvesto dvajset", 220},
		{"tri sto", 300},
		{"tristo osemdeset", 380},
		{"sto konjev", 100},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			if !ok || got != tt.want {
				t.Fatalf("ParseNumber(%q) = %d, %v; want %d", tt.in, got, ok, tt.want)
			}
		})
	}
}

func TestParseNumberDigitsWin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"5 let in pet", 5},
		{"star je 12, ne pa dvajset", 12},
		{"moč 150km", 150},
		{"1998", 1998},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if !ok || got != tt.want {
			t.Errorf("ParseNumber(%q) = %d, %v; want %d", tt.in, got, ok, tt.want)
		}
	}
}

func TestParseNumberMisses(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "hvala", "pozdravljeni", "polni kasko", "stotinka", "v ljubljani"} {
		if got, ok := ParseNumber(in); ok {
			t.Errorf("ParseNumber(%q) = %d, want miss", in, got)
		}
	}
}

func TestParseNumberRejectsLookalikeWords(t *testing.T) {
	t.Parallel()

	// Each shares a prefix with a ones word.
	for _, in := range []string{"petek", "petka", "sestra", "enako", "sedez", "osebno", "trikrat"} {
		if got, ok := ParseNumber(in); ok {
			t.Errorf("ParseNumber(%q) = %d, want miss", in, got)
		}
	}

	for in, want := range map[string]int{"petih": 5, "sedmimi": 7, "dvema": 2, "stirih": 4, "ose": 8} {
		if got, ok := ParseNumber(in); !ok || got != want {
			t.Errorf("ParseNumber(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
}

func ExampleParseNumber() {
	n, _ := ParseNumber("sto petdeset konjskih moči")
	fmt.Println(n)
	// Output: 150
}
