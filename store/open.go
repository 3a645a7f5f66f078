package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kendall-kelly/laundry-shop-api/config"
	"github.com/kendall-kelly/laundry-shop-api/models"
)

// Open connects the backend selected by cfg.StoreDriver. The gorm backend is
// migrated before it is returned.
func Open(cfg *config.Config) (Store, error) {
	if cfg.StoreDriver == config.StoreDriverFile {
		return NewFileStore(cfg.DataDir)
	}

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	gs := NewGormStore(config.GetDB())
	if err := gs.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database migration completed successfully")
	return gs, nil
}

// CopyStats counts what Copy wrote to the destination.
type CopyStats struct {
	Customers     int
	Orders        int
	Notifications int
}

// Copy moves every customer, order and notification from one backend into
// another. Customers are matched by name so re-running a copy merges instead
// of duplicating, and orders that were only keyed by customer name are linked
// to the matching customer record.
func Copy(ctx context.Context, from, to Store) (CopyStats, error) {
	var stats CopyStats

	customers, err := from.Customers().List(ctx, "")
	if err != nil {
		return stats, fmt.Errorf("failed to read customers: %w", err)
	}
	orders, err := from.Orders().GetAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to read orders: %w", err)
	}

	err = to.Atomic(ctx, func(tx Tx) error {
		ids := make(map[string]string, len(customers))
		for _, c := range customers {
			target, err := mergeCustomer(ctx, tx.Customers, c)
			if err != nil {
				return err
			}
			ids[c.ID] = target.ID
			stats.Customers++
		}

		for _, o := range orders {
			if id, ok := ids[o.CustomerID]; ok {
				o.CustomerID = id
			} else if o.CustomerName != "" {
				c, err := linkOrderCustomer(ctx, tx.Customers, o)
				if err != nil {
					return err
				}
				if c.created {
					stats.Customers++
				}
				o.CustomerID = c.ID
			}
			if err := tx.Orders.Save(ctx, &o); err != nil {
				return err
			}
			stats.Orders++
		}
		return nil
	})
	if err != nil {
		return CopyStats{}, err
	}

	notifications, err := from.Notifications().ListNotifications(ctx, "")
	if err != nil {
		return stats, fmt.Errorf("failed to read notifications: %w", err)
	}
	existing, err := to.Notifications().ListNotifications(ctx, "")
	if err != nil {
		return stats, fmt.Errorf("failed to read notifications: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[n.ID] = true
	}
	for _, n := range notifications {
		if seen[n.ID] {
			continue
		}
		if err := to.Notifications().AddNotification(ctx, &n); err != nil {
			return stats, err
		}
		stats.Notifications++
	}
	return stats, nil
}

type linkedCustomer struct {
	*models.Customer
	created bool
}

// linkOrderCustomer finds the customer an order points at, by id and then by
// name, creating one from the order's contact details when neither exists.
func linkOrderCustomer(ctx context.Context, customers CustomerStore, o models.Order) (linkedCustomer, error) {
	for _, key := range []string{o.CustomerID, o.CustomerName} {
		if key == "" {
			continue
		}
		c, err := customers.FindByKey(ctx, key)
		if err != nil {
			return linkedCustomer{}, err
		}
		if c != nil {
			return linkedCustomer{Customer: c}, nil
		}
	}

	id := o.CustomerID
	if id == "" {
		id = LegacyCustomerID(o.CustomerName)
	}
	c, err := customers.Upsert(ctx, &models.Customer{
		ID:        id,
		Name:      o.CustomerName,
		Contact:   o.Contact,
		Email:     o.Email,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.CreatedAt,
	})
	if err != nil {
		return linkedCustomer{}, err
	}
	return linkedCustomer{Customer: c, created: true}, nil
}

// mergeCustomer upserts c, folding it into an existing customer of the same
// name when there is one.
func mergeCustomer(ctx context.Context, customers CustomerStore, c models.Customer) (*models.Customer, error) {
	existing, err := customers.FindByKey(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return customers.Upsert(ctx, &c)
	}
	existing.MergeContact(c.Contact, c.Email, c.Address)
	if c.UpdatedAt.After(existing.UpdatedAt) {
		existing.UpdatedAt = c.UpdatedAt
	}
	return customers.Upsert(ctx, existing)
}
