package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/nlu"
)

// ParseResult is what the extractors read from a phrase on a first turn.
type ParseResult struct {
	Normalized string          `json:"normalized"`
	Intent     string          `json:"intent"`
	Number     *int            `json:"number,omitempty"`
	VehicleAge *int            `json:"vehicle_age,omitempty"`
	Horsepower *int            `json:"horsepower,omitempty"`
	City       string          `json:"city,omitempty"`
	Coverage   domain.Coverage `json:"coverage,omitempty"`
}

// Parse runs every extractor over phrase.
func Parse(phrase string) ParseResult {
	text := nlu.Normalize(phrase)
	res := ParseResult{
		Normalized: text,
		Intent:     nlu.Classify(text, nlu.ClassifyContext{}).String(),
	}
	if n, ok := nlu.ParseNumber(text); ok {
		res.Number = &n
	}
	if n, ok := nlu.ExtractAge(text, false); ok {
		res.VehicleAge = &n
	}
	if n, ok := nlu.ExtractHorsepower(text, false); ok {
		res.Horsepower = &n
	}
	if c, ok := nlu.ExtractCity(text); ok {
		res.City = c
	}
	if c, ok := nlu.ExtractCoverage(text, true); ok {
		res.Coverage = c
	}
	return res
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <phrase>",
		Short: "Show what the extractors read from a phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(Parse(strings.Join(args, " ")))
		},
	}
}
