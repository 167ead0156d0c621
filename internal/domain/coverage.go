package domain

import (
	"encoding/json"
	"fmt"
)

// Coverage is an insurance coverage tier.
type Coverage string

const (
	CoverageBasic   Coverage = "basic"
	CoveragePartial Coverage = "partial"
	CoverageFull    Coverage = "full"
)

// Coverages lists all tiers from the cheapest to the most comprehensive.
var Coverages = []Coverage{CoverageBasic, CoveragePartial, CoverageFull}

// Valid reports whether c is a known tier.
func (c Coverage) Valid() bool {
	return c.bit() != 0
}

func (c Coverage) bit() CoverageSet {
	switch c {
	case CoverageBasic:
		return 1
	case CoveragePartial:
		return 2
	case CoverageFull:
		return 4
	}
	return 0
}

// CoverageSet is a set of tiers.
type CoverageSet uint8

// Add returns the set with c included.
func (s CoverageSet) Add(c Coverage) CoverageSet {
	return s | c.bit()
}

// Has reports whether c is in the set.
func (s CoverageSet) Has(c Coverage) bool {
	b := c.bit()
	return b != 0 && s&b == b
}

// Tiers returns the members in tier order.
func (s CoverageSet) Tiers() []Coverage {
	var out []Coverage
	for _, c := range Coverages {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of tiers in the set.
func (s CoverageSet) Len() int {
	return len(s.Tiers())
}

// MarshalJSON encodes the set as a list of tier names.
func (s CoverageSet) MarshalJSON() ([]byte, error) {
	tiers := s.Tiers()
	if tiers == nil {
		tiers = []Coverage{}
	}
	return json.Marshal(tiers)
}

// UnmarshalJSON decodes a list of tier names.
func (s *CoverageSet) UnmarshalJSON(data []byte) error {
	var tiers []Coverage
	if err := json.Unmarshal(data, &tiers); err != nil {
		return err
	}
	var out CoverageSet
	for _, c := range tiers {
		if !c.Valid() {
			return fmt.Errorf("unknown coverage %q", c)
		}
		out = out.Add(c)
	}
	*s = out
	return nil
}
