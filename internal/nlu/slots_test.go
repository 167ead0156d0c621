package nlu

import (
	"testing"

	"github.com/krea02/ai-agent-demo/internal/domain"
)

func TestExtractAge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected bool
		want     int
		ok       bool
	}{
		{"digits with unit", "Avto je star 5 let", false, 5, true},
		{"glued unit", "5let", false, 5, true},
		{"aged prefix", "star 7", false, 7, true},
		{"words before unit", "star je pet let", false, 5, true},
		{"compound before unit", "dvanajst let", false, 12, true},
		{"new car", "0 let", false, 0, true},
		{"dual unit", "2 leti", false, 2, true},
		{"dual word form", "dve leti", false, 2, true},
		{"dual glued", "avto je star 2leti", false, 2, true},
		{"skips out of range", "kupil pred 50 leti, star 6 let", false, 6, true},
		{"out of range", "45 let", false, 0, false},
		{"bare number when asked", "sedem", true, 7, true},
		{"bare number not asked", "sedem", false, 0, false},
		{"power does not leak", "150 km pet let", false, 5, true},
		{"power number when asked for age", "20 konjev", true, 0, false},
		{"model year is not age", "letnik 2015", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAge(tt.in, tt.expected)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ExtractAge(%q, %v) = %d, %v; want %d, %v", tt.in, tt.expected, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtractHorsepower(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected bool
		want     int
		ok       bool
	}{
		{"km unit", "ima 150 km", false, 150, true},
		{"konj unit", "110 konjev", false, 110, true},
		{"hp unit", "200hp", false, 200, true},
		{"power word", "moč 90", false, 90, true},
		{"spoken with unit", "sto petdeset konjskih moči", false, 150, true},
		{"too weak", "10 km", false, 0, false},
		{"skips mileage", "avto ima 5000 km, 110 konjev", false, 110, true},
		{"too strong", "700 konjev", false, 0, false},
		{"bare when asked", "dvesto", true, 200, true},
		{"bare not asked", "dvesto", false, 0, false},
		{"age number when asked for power", "pet let", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractHorsepower(tt.in, tt.expected)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ExtractHorsepower(%q, %v) = %d, %v; want %d, %v", tt.in, tt.expected, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRangeRejection(t *testing.T) {
	t.Parallel()

	for age := -5; age <= 60; age++ {
		_, ok := inRange(age, MinVehicleAge, MaxVehicleAge)
		if want := age >= 0 && age <= 40; ok != want {
			t.Errorf("age %d accepted=%v, want %v", age, ok, want)
		}
	}
	for hp := 0; hp <= 700; hp += 10 {
		_, ok := inRange(hp, MinHorsepower, MaxHorsepower)
		if want := hp >= 20 && hp <= 600; ok != want {
			t.Errorf("horsepower %d accepted=%v, want %v", hp, ok, want)
		}
	}
}

func TestExtractCoverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		premium bool
		want    domain.Coverage
		ok      bool
	}{
		{"polni kasko", false, domain.CoverageFull, true},
		{"popolno kritje", false, domain.CoverageFull, true},
		{"delni", false, domain.CoveragePartial, true},
		{"osnovno", false, domain.CoverageBasic, true},
		{"samo obvezno", false, domain.CoverageBasic, true},
		{"brez kaska", true, domain.CoverageBasic, true},
		{"kasko", true, domain.CoverageFull, true},
		{"kasko", false, "", false},
		{"popolnoma vseeno", false, "", false},
		{"pet let", true, "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractCoverage(tt.in, tt.premium)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ExtractCoverage(%q, %v) = %q, %v; want %q, %v", tt.in, tt.premium, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMentionedTiers(t *testing.T) {
	t.Parallel()

	got := MentionedTiers("polni ali delni kasko")
	if len(got) != 2 || got[0] != domain.CoveragePartial || got[1] != domain.CoverageFull {
		t.Fatalf("MentionedTiers = %v, want [partial full]", got)
	}
}

func TestHasSlotHint(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"5 let", "150 konjev", "v Mariboru", "star avto", "moč motorja"} {
		if !HasSlotHint(in) {
			t.Errorf("HasSlotHint(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"dober dan", "kaj je franšiza", "polni kasko"} {
		if HasSlotHint(in) {
			t.Errorf("HasSlotHint(%q) = true, want false", in)
		}
	}
}
