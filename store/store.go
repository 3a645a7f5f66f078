// Package store holds the persistence collaborators of the order lifecycle:
// a gorm-backed relational store and a flat-file JSON store compatible with
// the shop's historical data files.
package store

import (
	"context"

	"github.com/kendall-kelly/laundry-shop-api/models"
)

// OrderStore persists orders. GetByID returns (nil, nil) for an unknown id.
type OrderStore interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) (bool, error)
}

// CustomerStore persists customers. FindByKey matches the id first, then the
// name, and returns (nil, nil) when neither matches.
type CustomerStore interface {
	FindByKey(ctx context.Context, key string) (*models.Customer, error)
	Upsert(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, search string) ([]models.Customer, error)
}

// NotificationStore persists simulated notifications.
type NotificationStore interface {
	AddNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, orderID string) ([]models.Notification, error)
}

// Tx is the set of stores visible inside one atomic unit of work.
type Tx struct {
	Orders    OrderStore
	Customers CustomerStore
}

// Store is the full persistence backend used by the services.
type Store interface {
	Orders() OrderStore
	Customers() CustomerStore
	Notifications() NotificationStore
	// Atomic runs fn so that its order and customer writes either all land or
	// none do. fn must only use the stores it is handed.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
