package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/patron/internal/domain"
	"github.com/Harshitk-cp/patron/internal/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrCustomerNotFound = errors.New("customer not found")

type CustomerService struct {
	store     domain.CustomerStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

func NewCustomerService(s domain.CustomerStore, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		store:     s,
		validator: newValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the clock tiers are evaluated against.
func (s *CustomerService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CustomerService) Create(ctx context.Context, in CreateCustomerInput) (*domain.TieredCustomer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	verr := NewValidationError()
	if err := collectErrors(verr, s.validator.Struct(in)); err != nil {
		return nil, err
	}
	mergeRejected(verr, in.Rejected)
	if _, bad := verr.Fields["email"]; !bad {
		if err := s.checkEmailAvailable(ctx, verr, in.Email, ""); err != nil {
			return nil, err
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	c := &domain.Customer{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Email:            in.Email,
		LastPurchaseDate: in.LastPurchaseDate,
	}
	if in.AnnualSpend != nil {
		spend := in.AnnualSpend.Round(2)
		c.AnnualSpend = &spend
	}

	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, emailTaken()
		}
		return nil, s.storeFailure("create", err)
	}

	s.logger.Info("customer created", zap.String("customer_id", c.ID))

	tc := c.WithTier(s.now())
	return &tc, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (*domain.TieredCustomer, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	tc := c.WithTier(s.now())
	return &tc, nil
}

// List returns customers selected by filter, each with its tier evaluated at
// the same instant.
func (s *CustomerService) List(ctx context.Context, filter domain.CustomerFilter) ([]domain.TieredCustomer, error) {
	customers, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, s.storeFailure("list", err)
	}

	now := s.now()
	result := make([]domain.TieredCustomer, 0, len(customers))
	for _, c := range customers {
		result = append(result, c.WithTier(now))
	}
	return result, nil
}

func (s *CustomerService) Update(ctx context.Context, id string, in UpdateCustomerInput) (*domain.TieredCustomer, error) {
	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.IsEmpty() {
		tc := existing.WithTier(s.now())
		return &tc, nil
	}

	patch, err := s.validateUpdate(ctx, existing, in)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, existing.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrCustomerNotFound
		case errors.Is(err, store.ErrConflict):
			return nil, emailTaken()
		}
		return nil, s.storeFailure("update", err, zap.String("customer_id", existing.ID))
	}

	s.logger.Info("customer updated", zap.String("customer_id", updated.ID))

	tc := updated.WithTier(s.now())
	return &tc, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrCustomerNotFound
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return s.storeFailure("delete", err, zap.String("customer_id", id))
	}

	s.logger.Info("customer deleted", zap.String("customer_id", id))
	return nil
}

// get loads a customer; ids that are not UUIDs cannot exist.
func (s *CustomerService) get(ctx context.Context, id string) (*domain.Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCustomerNotFound
	}

	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, s.storeFailure("get", err, zap.String("customer_id", id))
	}
	return c, nil
}

// validateUpdate checks the fields set in the input against the create
// schema, evaluated on the record as it would look after the update, and
// returns the patch to apply.
func (s *CustomerService) validateUpdate(ctx context.Context, existing *domain.Customer, in UpdateCustomerInput) (domain.CustomerPatch, error) {
	var patch domain.CustomerPatch
	merged := CreateCustomerInput{
		Name:             existing.Name,
		Email:            existing.Email,
		AnnualSpend:      existing.AnnualSpend,
		LastPurchaseDate: existing.LastPurchaseDate,
	}

	if in.Name.Set {
		name := ""
		if !in.Name.Null {
			name = strings.TrimSpace(in.Name.Value)
		}
		merged.Name = name
		patch.Name = &name
	}
	if in.Email.Set {
		email := ""
		if !in.Email.Null {
			email = strings.TrimSpace(in.Email.Value)
		}
		merged.Email = email
		patch.Email = &email
	}
	if in.AnnualSpend.Set {
		if in.AnnualSpend.Null {
			merged.AnnualSpend = nil
			patch.ClearAnnualSpend = true
		} else {
			spend := in.AnnualSpend.Value
			merged.AnnualSpend = &spend
			rounded := spend.Round(2)
			patch.AnnualSpend = &rounded
		}
	}
	if in.LastPurchaseDate.Set {
		if in.LastPurchaseDate.Null {
			merged.LastPurchaseDate = nil
			patch.ClearLastPurchaseDate = true
		} else {
			last := in.LastPurchaseDate.Value
			merged.LastPurchaseDate = &last
			patch.LastPurchaseDate = &last
		}
	}

	all := NewValidationError()
	if err := collectErrors(all, s.validator.Struct(merged)); err != nil {
		return patch, err
	}

	// Only report fields the client sent.
	verr := NewValidationError()
	set := map[string]bool{
		"name":             in.Name.Set,
		"email":            in.Email.Set,
		"annualSpend":      in.AnnualSpend.Set,
		"lastPurchaseDate": in.LastPurchaseDate.Set,
	}
	for field, msgs := range all.Fields {
		if set[field] {
			verr.Fields[field] = msgs
		}
	}
	mergeRejected(verr, in.Rejected)

	if _, bad := verr.Fields["email"]; in.Email.Set && !bad {
		if err := s.checkEmailAvailable(ctx, verr, merged.Email, existing.ID); err != nil {
			return patch, err
		}
	}
	if verr.HasErrors() {
		return patch, verr
	}
	return patch, nil
}

// checkEmailAvailable records a validation failure when email belongs to a
// customer other than exceptID. The unique constraint remains the authority;
// this only produces the friendly message early.
func (s *CustomerService) checkEmailAvailable(ctx context.Context, verr *ValidationError, email, exceptID string) error {
	owner, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return s.storeFailure("check email", err)
	}
	if owner.ID != exceptID {
		verr.Add("email", msgEmailTaken)
	}
	return nil
}

func (s *CustomerService) storeFailure(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	s.logger.Error("customer store failure", fields...)
	return fmt.Errorf("%s customer: %w", op, err)
}

func emailTaken() *ValidationError {
	verr := NewValidationError()
	verr.Add("email", msgEmailTaken)
	return verr
}
