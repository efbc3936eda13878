package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/patron/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const customerColumns = `id, name, email, annual_spend, last_purchase_date, created_at, updated_at`

type CustomerStore struct {
	db *pgxpool.Pool
}

func NewCustomerStore(db *pgxpool.Pool) *CustomerStore {
	return &CustomerStore{db: db}
}

func (s *CustomerStore) Create(ctx context.Context, c *domain.Customer) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO customers (id, name, email, annual_spend, last_purchase_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Email, c.AnnualSpend, c.LastPurchaseDate,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (s *CustomerStore) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return s.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
}

func (s *CustomerStore) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return s.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
}

func (s *CustomerStore) getOne(ctx context.Context, query string, args ...any) (*domain.Customer, error) {
	c, err := scanCustomer(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CustomerStore) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	where, args := buildCustomerFilter(filter)

	query := `SELECT ` + customerColumns + ` FROM customers`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *CustomerStore) Update(ctx context.Context, id string, patch domain.CustomerPatch) (*domain.Customer, error) {
	sets, args := buildCustomerPatch(patch)
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE customers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), customerColumns,
	)

	c, err := scanCustomer(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapWriteError(err)
	}
	return c, nil
}

func (s *CustomerStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildCustomerFilter renders the filter as a WHERE clause (without the
// keyword) and its positional arguments. Name and email are OR'ed.
func buildCustomerFilter(f domain.CustomerFilter) (string, []any) {
	var conditions []string
	var args []any

	if f.Name != nil {
		args = append(args, *f.Name)
		conditions = append(conditions, fmt.Sprintf("name = $%d", len(args)))
	}
	if f.Email != nil {
		args = append(args, *f.Email)
		conditions = append(conditions, fmt.Sprintf("email = $%d", len(args)))
	}

	return strings.Join(conditions, " OR "), args
}

func buildCustomerPatch(p domain.CustomerPatch) ([]string, []any) {
	var sets []string
	var args []any

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.ClearAnnualSpend {
		sets = append(sets, "annual_spend = NULL")
	} else if p.AnnualSpend != nil {
		set("annual_spend", *p.AnnualSpend)
	}
	if p.ClearLastPurchaseDate {
		sets = append(sets, "last_purchase_date = NULL")
	} else if p.LastPurchaseDate != nil {
		set("last_purchase_date", *p.LastPurchaseDate)
	}

	return sets, args
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c := &domain.Customer{}
	var spend decimal.NullDecimal
	err := row.Scan(&c.ID, &c.Name, &c.Email, &spend, &c.LastPurchaseDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if spend.Valid {
		c.AnnualSpend = &spend.Decimal
	}
	return c, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrConflict
	}
	return err
}
