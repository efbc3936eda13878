package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Harshitk-cp/patron/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to TEST_DATABASE_URL, applies migrations and empties
// the customers table. The test is skipped when the variable is unset.
func newTestStore(t *testing.T) *CustomerStore {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = Migrate(ctx, pool, os.DirFS("../../migrations"))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE customers`)
	require.NoError(t, err)

	return NewCustomerStore(pool)
}

func TestCustomerStore_Integration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	spend := decimal.RequireFromString("1000.50")
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	alice := &domain.Customer{
		ID:               uuid.NewString(),
		Name:             "Alice Smith",
		Email:            "alice@example.com",
		AnnualSpend:      &spend,
		LastPurchaseDate: &last,
	}
	require.NoError(t, s.Create(ctx, alice))
	assert.False(t, alice.CreatedAt.IsZero())

	bob := &domain.Customer{ID: uuid.NewString(), Name: "Bob Johnson", Email: "bob@example.com"}
	require.NoError(t, s.Create(ctx, bob))

	t.Run("get by id", func(t *testing.T) {
		got, err := s.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.Email, got.Email)
		require.NotNil(t, got.AnnualSpend)
		assert.True(t, spend.Equal(*got.AnnualSpend))
		require.NotNil(t, got.LastPurchaseDate)
		assert.True(t, last.Equal(*got.LastPurchaseDate))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := s.Create(ctx, &domain.Customer{ID: uuid.NewString(), Name: "Other", Email: "alice@example.com"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("union filter", func(t *testing.T) {
		name, email := "Alice Smith", "bob@example.com"
		got, err := s.List(ctx, domain.CustomerFilter{Name: &name, Email: &email})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		missing := "nonexistent@example.com"
		none := "Nonexistent"
		got, err = s.List(ctx, domain.CustomerFilter{Name: &none, Email: &missing})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("update clears spend", func(t *testing.T) {
		newName := "Alice Jones"
		got, err := s.Update(ctx, alice.ID, domain.CustomerPatch{Name: &newName, ClearAnnualSpend: true})
		require.NoError(t, err)
		assert.Equal(t, newName, got.Name)
		assert.Nil(t, got.AnnualSpend)
	})

	t.Run("update to taken email conflicts", func(t *testing.T) {
		taken := "bob@example.com"
		_, err := s.Update(ctx, alice.ID, domain.CustomerPatch{Email: &taken})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, bob.ID))
		_, err := s.GetByID(ctx, bob.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, bob.ID), ErrNotFound)
	})
}

func TestRollbackThenMigrate(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrations := os.DirFS("../../migrations")
	_, err = Migrate(ctx, pool, migrations)
	require.NoError(t, err)

	version, err := Rollback(ctx, pool, migrations)
	require.NoError(t, err)
	assert.Equal(t, "0001_create_customers", version)

	var exists bool
	require.NoError(t, pool.QueryRow(ctx, `SELECT to_regclass('customers') IS NOT NULL`).Scan(&exists))
	assert.False(t, exists)

	applied, err := Migrate(ctx, pool, migrations)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_customers"}, applied)
}
