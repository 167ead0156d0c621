package nlu

import (
	"strings"

	"github.com/krea02/ai-agent-demo/internal/domain"
)

type tierCue struct {
	tier     domain.Coverage
	stems    []string
	phrases  []string
	excluded []string
}

var tierCues = []tierCue{
	{
		tier:    domain.CoverageBasic,
		stems:   []string{"osnov", "obvezn"},
		phrases: []string{"brez kaska", "samo ao", "avtomobilska odgovornost", "ao"},
	},
	{
		tier:    domain.CoveragePartial,
		stems:   []string{"deln", "polkask"},
		phrases: []string{"pol kasko", "pol kaska"},
	},
	{
		tier:     domain.CoverageFull,
		stems:    []string{"poln", "popoln", "celotn", "full"},
		phrases:  []string{"celi kasko", "cel kasko"},
		excluded: []string{"popolnoma", "polnolet", "polnil", "polnjenj"},
	},
}

// genericCoverageStem is the category word that names comprehensive cover
// without a tier.
const genericCoverageStem = "kask"

// MentionedTiers lists every coverage tier named in text, in tier order.
func MentionedTiers(text string) []domain.Coverage {
	folded := Fold(text)
	toks := tokens(folded)
	var out []domain.Coverage
	for _, cue := range tierCues {
		if cue.matches(folded, toks) {
			out = append(out, cue.tier)
		}
	}
	return out
}

func (c tierCue) matches(folded string, toks []string) bool {
	for _, p := range c.phrases {
		if containsPhrase(folded, p) {
			return true
		}
	}
	for _, tok := range toks {
		if excludedToken(tok, c.excluded) {
			continue
		}
		for _, stem := range c.stems {
			if strings.HasPrefix(tok, stem) {
				return true
			}
		}
	}
	return false
}

func excludedToken(tok string, excluded []string) bool {
	for _, e := range excluded {
		if strings.HasPrefix(tok, e) {
			return true
		}
	}
	return false
}

// MentionsCoverage reports whether text names a tier or the generic
// coverage category.
func MentionsCoverage(text string) bool {
	if len(MentionedTiers(text)) > 0 {
		return true
	}
	return hasTokenPrefix(tokens(Fold(text)), genericCoverageStem)
}

// ExtractCoverage returns the lowest tier named in text. In a premium context,
// a bare mention of the category word resolves to full cover.
func ExtractCoverage(text string, premiumContext bool) (domain.Coverage, bool) {
	if tiers := MentionedTiers(text); len(tiers) > 0 {
		return tiers[0], true
	}
	if premiumContext && hasTokenPrefix(tokens(Fold(text)), genericCoverageStem) {
		return domain.CoverageFull, true
	}
	return "", false
}
