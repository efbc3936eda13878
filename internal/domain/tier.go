package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tier string

const (
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// Recency windows, in months, a last purchase must fall within.
const (
	PlatinumWindowMonths = 6
	GoldWindowMonths     = 12
)

var (
	GoldSpendThreshold     = decimal.NewFromInt(1000)
	PlatinumSpendThreshold = decimal.NewFromInt(10000)
)

// ComputeTier classifies a customer from annual spend and last purchase date as
// observed at now. Rules are evaluated in order and the first match wins; both
// recency windows are inclusive.
func ComputeTier(spend *decimal.Decimal, lastPurchase *time.Time, now time.Time) Tier {
	if spend == nil || spend.LessThan(GoldSpendThreshold) {
		return TierSilver
	}
	if lastPurchase == nil {
		return TierSilver
	}

	switch {
	case spend.GreaterThanOrEqual(PlatinumSpendThreshold) && withinMonths(*lastPurchase, now, PlatinumWindowMonths):
		return TierPlatinum
	case spend.LessThan(PlatinumSpendThreshold) && withinMonths(*lastPurchase, now, GoldWindowMonths):
		return TierGold
	default:
		return TierSilver
	}
}

// withinMonths reports whether t >= now - months, using calendar month
// arithmetic (Mar 31 minus one month normalizes to Mar 3).
func withinMonths(t, now time.Time, months int) bool {
	return !t.Before(now.AddDate(0, -months, 0))
}

// TierReason explains which rule of ComputeTier produced the tier.
func TierReason(spend *decimal.Decimal, lastPurchase *time.Time, now time.Time) string {
	switch {
	case spend == nil:
		return "no annual spend recorded"
	case spend.LessThan(GoldSpendThreshold):
		return "annual spend below 1000"
	case lastPurchase == nil:
		return "no last purchase recorded"
	}

	switch ComputeTier(spend, lastPurchase, now) {
	case TierPlatinum:
		return "annual spend >= 10000 and last purchase within 6 months"
	case TierGold:
		return "annual spend >= 1000 and last purchase within 12 months"
	}
	if spend.GreaterThanOrEqual(PlatinumSpendThreshold) {
		return "annual spend >= 10000 but last purchase older than 6 months"
	}
	return "annual spend >= 1000 but last purchase older than 12 months"
}

func AllTiers() []Tier {
	return []Tier{TierSilver, TierGold, TierPlatinum}
}

func ValidTier(t string) bool {
	switch Tier(t) {
	case TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}
