package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/pricing"
)

func newQuoteCmd() *cobra.Command {
	var (
		in       pricing.Input
		coverage string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a vehicle without a conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Coverage = domain.Coverage(coverage)
			q, err := pricing.Calculate(in)
			if err != nil {
				return fmt.Errorf("calculate premium: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(q)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s, %s: %d EUR/year (%d EUR/month)\n",
				q.City, q.Coverage, q.Annual, q.Monthly)
			return err
		},
	}

	cmd.Flags().Float64Var(&in.VehicleAge, "age", 0, "vehicle age in years")
	cmd.Flags().Float64Var(&in.Horsepower, "hp", 0, "engine power in horsepower")
	cmd.Flags().StringVar(&in.City, "city", "", "registration city")
	cmd.Flags().StringVar(&coverage, "coverage", string(domain.CoverageBasic), "coverage tier: basic, partial or full")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the quote with its breakdown as JSON")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("hp")
	_ = cmd.MarkFlagRequired("city")

	return cmd
}
