package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the stored customer row. Tier is not part of it; see TieredCustomer.
type Customer struct {
	ID               string
	Name             string
	Email            string
	AnnualSpend      *decimal.Decimal
	LastPurchaseDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TieredCustomer is a customer as observed at a point in time, with its tier
// computed at that moment.
type TieredCustomer struct {
	Customer
	Tier Tier
}

// WithTier projects c into a TieredCustomer evaluated at now.
func (c Customer) WithTier(now time.Time) TieredCustomer {
	return TieredCustomer{
		Customer: c,
		Tier:     ComputeTier(c.AnnualSpend, c.LastPurchaseDate, now),
	}
}

type customerJSON struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	AnnualSpend      *json.Number `json:"annualSpend"`
	LastPurchaseDate *time.Time   `json:"lastPurchaseDate"`
	Tier             Tier         `json:"tier"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// MarshalJSON renders annualSpend as a JSON number with two decimals and all
// timestamps in UTC.
func (c TieredCustomer) MarshalJSON() ([]byte, error) {
	out := customerJSON{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Tier:      c.Tier,
		CreatedAt: c.CreatedAt.UTC(),
		UpdatedAt: c.UpdatedAt.UTC(),
	}
	if c.AnnualSpend != nil {
		n := json.Number(c.AnnualSpend.StringFixed(2))
		out.AnnualSpend = &n
	}
	if c.LastPurchaseDate != nil {
		t := c.LastPurchaseDate.UTC()
		out.LastPurchaseDate = &t
	}
	return json.Marshal(out)
}

// CustomerFilter selects customers by exact name and/or email. A nil field is
// absent. When both are present the match is a union: name OR email.
type CustomerFilter struct {
	Name  *string
	Email *string
}

func (f CustomerFilter) IsEmpty() bool {
	return f.Name == nil && f.Email == nil
}

// Matches reports whether c is selected by the filter.
func (f CustomerFilter) Matches(c *Customer) bool {
	if f.IsEmpty() {
		return true
	}
	if f.Name != nil && c.Name == *f.Name {
		return true
	}
	if f.Email != nil && c.Email == *f.Email {
		return true
	}
	return false
}

// CustomerPatch carries the columns an update changes. A nil pointer leaves the
// column untouched; the Clear flags set a nullable column to NULL.
type CustomerPatch struct {
	Name                  *string
	Email                 *string
	AnnualSpend           *decimal.Decimal
	ClearAnnualSpend      bool
	LastPurchaseDate      *time.Time
	ClearLastPurchaseDate bool
}

func (p CustomerPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil &&
		p.AnnualSpend == nil && !p.ClearAnnualSpend &&
		p.LastPurchaseDate == nil && !p.ClearLastPurchaseDate
}

// Apply copies the patch onto c in memory.
func (p CustomerPatch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.ClearAnnualSpend {
		c.AnnualSpend = nil
	} else if p.AnnualSpend != nil {
		v := *p.AnnualSpend
		c.AnnualSpend = &v
	}
	if p.ClearLastPurchaseDate {
		c.LastPurchaseDate = nil
	} else if p.LastPurchaseDate != nil {
		v := *p.LastPurchaseDate
		c.LastPurchaseDate = &v
	}
}
