// Package pricing computes indicative annual car insurance premiums.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/krea02/ai-agent-demo/internal/domain"
)

// ErrInvalidInput is returned for inputs that cannot be priced.
var ErrInvalidInput = errors.New("invalid pricing input")

// BaseRate is the annual premium in euros before any factor is applied.
const BaseRate = 220.0

var coverageFactors = map[domain.Coverage]float64{
	domain.CoverageBasic:   1.00,
	domain.CoveragePartial: 1.28,
	domain.CoverageFull:    1.55,
}

var cityFactors = map[string]float64{
	"Ljubljana":     1.15,
	"Maribor":       1.08,
	"Koper":         1.06,
	"Celje":         1.05,
	"Kranj":         1.04,
	"Nova Gorica":   1.04,
	"Novo mesto":    1.03,
	"Domžale":       1.03,
	"Izola":         1.02,
	"Piran":         1.02,
	"Velenje":       1.00,
	"Kamnik":        1.00,
	"Jesenice":      0.99,
	"Ptuj":          0.98,
	"Murska Sobota": 0.97,
}

// Input describes the vehicle and the requested tier.
type Input struct {
	VehicleAge float64
	Horsepower float64
	City       string
	Coverage   domain.Coverage
}

// Breakdown lists the factors that produced a quote.
type Breakdown struct {
	Base             float64 `json:"base"`
	AgeFactor        float64 `json:"age_factor"`
	HorsepowerFactor float64 `json:"horsepower_factor"`
	CityFactor       float64 `json:"city_factor"`
	CoverageFactor   float64 `json:"coverage_factor"`
}

// Quote is a priced premium in whole euros.
type Quote struct {
	Annual    int64           `json:"annual"`
	Monthly   int64           `json:"monthly"`
	Coverage  domain.Coverage `json:"coverage_level"`
	City      string          `json:"city"`
	Breakdown Breakdown       `json:"breakdown"`
}

// AgeFactor decreases linearly with vehicle age and is clamped to [0.78, 1.15].
func AgeFactor(age float64) float64 {
	return clamp(1.10-0.02*age, 0.78, 1.15)
}

// HorsepowerFactor grows linearly with power and is clamped to [0.85, 1.60].
func HorsepowerFactor(hp float64) float64 {
	return clamp(0.85+hp/200, 0.85, 1.60)
}

// CityFactor returns the regional factor, 1.00 for cities without one.
func CityFactor(city string) float64 {
	if f, ok := cityFactors[city]; ok {
		return f
	}
	return 1.00
}

// CoverageFactor returns the tier factor. The second result is false for an
// unknown tier.
func CoverageFactor(c domain.Coverage) (float64, bool) {
	f, ok := coverageFactors[c]
	return f, ok
}

// Calculate prices in. Age must be non-negative and horsepower positive,
// both finite, and the tier must be known.
func Calculate(in Input) (Quote, error) {
	if math.IsNaN(in.VehicleAge) || math.IsInf(in.VehicleAge, 0) || in.VehicleAge < 0 {
		return Quote{}, fmt.Errorf("%w: vehicle age %v", ErrInvalidInput, in.VehicleAge)
	}
	if math.IsNaN(in.Horsepower) || math.IsInf(in.Horsepower, 0) || in.Horsepower <= 0 {
		return Quote{}, fmt.Errorf("%w: horsepower %v", ErrInvalidInput, in.Horsepower)
	}
	cov, ok := CoverageFactor(in.Coverage)
	if !ok {
		return Quote{}, fmt.Errorf("%w: coverage %q", ErrInvalidInput, in.Coverage)
	}

	b := Breakdown{
		Base:             BaseRate,
		AgeFactor:        AgeFactor(in.VehicleAge),
		HorsepowerFactor: HorsepowerFactor(in.Horsepower),
		CityFactor:       CityFactor(in.City),
		CoverageFactor:   cov,
	}
	annual := math.Round(b.Base * b.AgeFactor * b.HorsepowerFactor * b.CityFactor * b.CoverageFactor)
	return Quote{
		Annual:    int64(annual),
		Monthly:   int64(math.Round(annual / 12)),
		Coverage:  in.Coverage,
		City:      in.City,
		Breakdown: b,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
