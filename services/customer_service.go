package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/kendall-kelly/laundry-shop-api/store"
)

// CustomerInput is the customer payload. On Update every present field is
// written as given, empty strings included.
type CustomerInput struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// CustomerService manages the customer directory.
type CustomerService struct {
	store store.Store
	opts  options
}

// NewCustomerService creates a customer service
func NewCustomerService(st store.Store, opts ...Option) *CustomerService {
	return &CustomerService{store: st, opts: buildOptions(opts)}
}

// Create registers a customer. When the name is already known the existing
// record is returned with the non-empty contact details merged in, and
// created is false.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (customer *models.Customer, created bool, err error) {
	name := strings.TrimSpace(deref(in.Name))
	if name == "" {
		return nil, false, &ValidationError{Field: "name", Message: "is required"}
	}

	err = s.store.Atomic(ctx, func(tx store.Tx) error {
		now := s.opts.now()
		existing, err := tx.Customers.FindByKey(ctx, name)
		if err != nil {
			return err
		}
		if existing == nil || existing.Name != name {
			existing = &models.Customer{ID: s.opts.newID(), Name: name, CreatedAt: now}
			created = true
		}
		existing.MergeContact(strings.TrimSpace(deref(in.Contact)), strings.TrimSpace(deref(in.Email)), strings.TrimSpace(deref(in.Address)))
		existing.UpdatedAt = now
		customer, err = tx.Customers.Upsert(ctx, existing)
		return err
	})
	if err != nil {
		return nil, false, storeErr("create customer", err)
	}

	s.opts.logger.Info("customer upserted", slog.String("customer_id", customer.ID), slog.String("name", customer.Name))
	return customer, created, nil
}

// Update overwrites the given fields of the customer found by id or name. A
// rename is carried over to the customer's orders.
func (s *CustomerService) Update(ctx context.Context, key string, in CustomerInput) (*models.Customer, error) {
	var updated *models.Customer
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		customer, err := tx.Customers.FindByKey(ctx, key)
		if err != nil {
			return err
		}
		if customer == nil {
			return customerNotFound(key)
		}

		oldName := customer.Name
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return &ValidationError{Field: "name", Message: "must not be empty"}
			}
			if name != oldName {
				clash, err := tx.Customers.FindByKey(ctx, name)
				if err != nil {
					return err
				}
				if clash != nil && clash.ID != customer.ID {
					return &ValidationError{Field: "name", Message: "another customer already uses this name"}
				}
			}
			customer.Name = name
		}
		if in.Contact != nil {
			customer.Contact = strings.TrimSpace(*in.Contact)
		}
		if in.Email != nil {
			customer.Email = strings.TrimSpace(*in.Email)
		}
		if in.Address != nil {
			customer.Address = strings.TrimSpace(*in.Address)
		}
		customer.UpdatedAt = s.opts.now()

		if updated, err = tx.Customers.Upsert(ctx, customer); err != nil {
			return err
		}
		if customer.Name == oldName {
			return nil
		}

		orders, err := tx.Orders.GetAll(ctx)
		if err != nil {
			return err
		}
		for i := range orders {
			o := &orders[i]
			if o.CustomerID != customer.ID {
				continue
			}
			o.CustomerName = customer.Name
			if err := tx.Orders.Save(ctx, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("update customer", err)
	}

	s.opts.logger.Info("customer updated", slog.String("customer_id", updated.ID))
	return updated, nil
}

// Delete removes a customer. Their orders are kept.
func (s *CustomerService) Delete(ctx context.Context, key string) error {
	customer, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	deleted, err := s.store.Customers().Delete(ctx, customer.ID)
	if err != nil {
		return storeErr("delete customer", err)
	}
	if !deleted {
		return customerNotFound(key)
	}
	s.opts.logger.Info("customer deleted", slog.String("customer_id", customer.ID))
	return nil
}

// Get looks a customer up by id or name.
func (s *CustomerService) Get(ctx context.Context, key string) (*models.Customer, error) {
	customer, err := s.store.Customers().FindByKey(ctx, key)
	if err != nil {
		return nil, storeErr("get customer", err)
	}
	if customer == nil {
		return nil, customerNotFound(key)
	}
	return customer, nil
}

// List returns customers sorted by name, optionally filtered by a
// case-insensitive substring of name, contact or email.
func (s *CustomerService) List(ctx context.Context, search string) ([]models.Customer, error) {
	customers, err := s.store.Customers().List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, storeErr("list customers", err)
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	return customers, nil
}

// History returns a customer's orders, oldest first. Orders imported before
// customers had ids are matched by name.
func (s *CustomerService) History(ctx context.Context, key string) ([]models.Order, error) {
	customer, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Orders().GetAll(ctx)
	if err != nil {
		return nil, storeErr("customer history", err)
	}
	out := make([]models.Order, 0)
	for _, o := range all {
		if o.CustomerID == customer.ID || (o.CustomerID == "" && o.CustomerName == customer.Name) {
			out = append(out, o)
		}
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
