package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/patron/internal/service"
	"github.com/Harshitk-cp/patron/internal/store"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo customers spread across every tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := service.NewCustomerService(store.NewCustomerStore(pool), logger)
			out := cmd.OutOrStdout()

			created, skipped := 0, 0
			for _, in := range seedCustomers(count, time.Now().UTC()) {
				c, err := svc.Create(cmd.Context(), in)
				if err != nil {
					var verr *service.ValidationError
					if errors.As(err, &verr) {
						logger.Debug("seed customer skipped", zap.String("email", in.Email), zap.Error(err))
						skipped++
						continue
					}
					return err
				}
				fmt.Fprintf(out, "created %-9s %s <%s>\n", c.Tier, c.Name, c.Email)
				created++
			}

			fmt.Fprintf(out, "\nseed complete: %d created, %d already present\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 12, "number of customers to create")
	return cmd
}

type seedProfile struct {
	spend     string
	monthsAgo int
}

// Profiles cycle so every tier and boundary shows up in a small seed.
var seedProfiles = []seedProfile{
	{spend: "", monthsAgo: -1},
	{spend: "250.00", monthsAgo: 1},
	{spend: "2500.00", monthsAgo: 3},
	{spend: "25000.00", monthsAgo: 2},
	{spend: "7500.00", monthsAgo: 18},
	{spend: "12000.00", monthsAgo: 9},
}

// seedCustomers builds count deterministic customers. Emails are stable so a
// repeated seed skips rows that already exist.
func seedCustomers(count int, now time.Time) []service.CreateCustomerInput {
	result := make([]service.CreateCustomerInput, 0, count)
	for i := 0; i < count; i++ {
		p := seedProfiles[i%len(seedProfiles)]

		in := service.CreateCustomerInput{
			Name:  fmt.Sprintf("Demo Customer %03d", i+1),
			Email: fmt.Sprintf("demo%03d@patron.example.com", i+1),
		}
		if p.spend != "" {
			spend := decimal.RequireFromString(p.spend)
			in.AnnualSpend = &spend
		}
		if p.monthsAgo >= 0 {
			last := now.AddDate(0, -p.monthsAgo, 0)
			in.LastPurchaseDate = &last
		}
		result = append(result, in)
	}
	return result
}
