package store

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/Harshitk-cp/patron/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBuildCustomerFilter(t *testing.T) {
	tests := []struct {
		name      string
		filter    domain.CustomerFilter
		wantWhere string
		wantArgs  []any
	}{
		{"no filter", domain.CustomerFilter{}, "", nil},
		{"name only", domain.CustomerFilter{Name: strPtr("Jane Doe")}, "name = $1", []any{"Jane Doe"}},
		{"email only", domain.CustomerFilter{Email: strPtr("jane@example.com")}, "email = $1", []any{"jane@example.com"}},
		{
			"name or email",
			domain.CustomerFilter{Name: strPtr("Alice Smith"), Email: strPtr("bob@example.com")},
			"name = $1 OR email = $2",
			[]any{"Alice Smith", "bob@example.com"},
		},
		{"empty name still filters", domain.CustomerFilter{Name: strPtr("")}, "name = $1", []any{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildCustomerFilter(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildCustomerPatch(t *testing.T) {
	spend := decimal.RequireFromString("2000.75")
	last := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty patch", func(t *testing.T) {
		sets, args := buildCustomerPatch(domain.CustomerPatch{})
		assert.Empty(t, sets)
		assert.Empty(t, args)
	})

	t.Run("all fields", func(t *testing.T) {
		sets, args := buildCustomerPatch(domain.CustomerPatch{
			Name:             strPtr("John Smith"),
			Email:            strPtr("johnsmith@example.com"),
			AnnualSpend:      &spend,
			LastPurchaseDate: &last,
		})
		assert.Equal(t, []string{
			"name = $1",
			"email = $2",
			"annual_spend = $3",
			"last_purchase_date = $4",
		}, sets)
		require.Len(t, args, 4)
		assert.Equal(t, "John Smith", args[0])
		assert.True(t, spend.Equal(args[2].(decimal.Decimal)))
		assert.Equal(t, last, args[3])
	})

	t.Run("clears use NULL without args", func(t *testing.T) {
		sets, args := buildCustomerPatch(domain.CustomerPatch{
			Email:                 strPtr("x@example.com"),
			ClearAnnualSpend:      true,
			ClearLastPurchaseDate: true,
		})
		assert.Equal(t, []string{
			"email = $1",
			"annual_spend = NULL",
			"last_purchase_date = NULL",
		}, sets)
		assert.Equal(t, []any{"x@example.com"}, args)
	})
}

func TestPendingMigrations(t *testing.T) {
	migrations := fstest.MapFS{
		"0002_add_index.up.sql":          {Data: []byte("CREATE INDEX x ON customers (email);")},
		"0001_create_customers.up.sql":   {Data: []byte("CREATE TABLE customers ();")},
		"0001_create_customers.down.sql": {Data: []byte("DROP TABLE customers;")},
		"README.md":                      {Data: []byte("notes")},
	}

	pending, err := PendingMigrations(migrations, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_customers", "0002_add_index"}, pending)

	pending, err = PendingMigrations(migrations, map[string]bool{"0001_create_customers": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_add_index"}, pending)
}

func TestLatestMigration(t *testing.T) {
	assert.Equal(t, "", LatestMigration(map[string]bool{}))
	assert.Equal(t, "0002_add_index", LatestMigration(map[string]bool{
		"0001_create_customers": true,
		"0002_add_index":        true,
	}))
	assert.Equal(t, "0001_create_customers", LatestMigration(map[string]bool{
		"0001_create_customers": true,
		"0002_add_index":        false,
	}))
}
