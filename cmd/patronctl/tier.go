package main

import (
	"fmt"
	"time"

	"github.com/Harshitk-cp/patron/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newTierCmd() *cobra.Command {
	var spendArg, lastArg, nowArg string

	cmd := &cobra.Command{
		Use:   "tier",
		Short: "Compute the loyalty tier for a spend and last purchase date",
		Example: `  patronctl tier --spend 2500 --last-purchase 2026-03-01
  patronctl tier --spend 15000 --last-purchase 2025-12-01 --now 2026-06-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var spend *decimal.Decimal
			if spendArg != "" {
				d, err := decimal.NewFromString(spendArg)
				if err != nil {
					return fmt.Errorf("invalid --spend %q: %w", spendArg, err)
				}
				spend = &d
			}

			var last *time.Time
			if lastArg != "" {
				t, err := domain.ParseDate(lastArg)
				if err != nil {
					return fmt.Errorf("invalid --last-purchase: %w", err)
				}
				last = &t
			}

			now := time.Now().UTC()
			if nowArg != "" {
				t, err := domain.ParseDate(nowArg)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				now = t
			}

			tier := domain.ComputeTier(spend, last, now)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", tier, domain.TierReason(spend, last, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&spendArg, "spend", "", "annual spend; omit for none")
	cmd.Flags().StringVar(&lastArg, "last-purchase", "", "last purchase date; omit for none")
	cmd.Flags().StringVar(&nowArg, "now", "", "evaluate as of this date instead of the current time")
	return cmd
}
