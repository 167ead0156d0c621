package nlu

import "testing"

func TestExtractCity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"v Ljubljani", "Ljubljana", true},
		{"iz Maribora", "Maribor", true},
		{"registriran je v Novem mestu", "Novo mesto", true},
		{"Celje", "Celje", true},
		{"ljubljana", "Ljubljana", true},
		{"Lubljana", "Ljubljana", true},
		{"polni kasko v Kopru", "Koper", true},
		{"vseeno", CityOther, true},
		{"ni pomembno", CityOther, true},
		{"Šoštanj", "Šoštanj", true},
		{"da", "", false},
		{"ne hvala", "", false},
		{"polni kasko", "", false},
		{"pet", "", false},
		{"150", "", false},
		{"ok", "", false},
		{"v redu", "", false},
		{"star avto", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ExtractCity(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ExtractCity(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
