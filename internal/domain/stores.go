package domain

import (
	"context"
)

type CustomerStore interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]Customer, error)
	Update(ctx context.Context, id string, patch CustomerPatch) (*Customer, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
