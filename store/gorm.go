package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"gorm.io/gorm"
)

// GormStore keeps orders and customers in a relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store on top of an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tables used by the store
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&models.Customer{}, &models.Order{}, &models.Notification{})
}

// DB exposes the underlying connection for health checks.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Orders() OrderStore {
	return &gormOrders{db: s.db}
}

func (s *GormStore) Customers() CustomerStore {
	return &gormCustomers{db: s.db}
}

func (s *GormStore) Notifications() NotificationStore {
	return &gormNotifications{db: s.db}
}

// Atomic wraps fn in a database transaction.
func (s *GormStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Tx{
			Orders:    &gormOrders{db: tx},
			Customers: &gormCustomers{db: tx},
		})
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormOrders struct {
	db *gorm.DB
}

func (r *gormOrders) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *gormOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve order with id %s: %w", id, err)
	}
	return &order, nil
}

func (r *gormOrders) Save(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	return nil
}

func (r *gormOrders) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete order %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

type gormCustomers struct {
	db *gorm.DB
}

func (r *gormCustomers) FindByKey(ctx context.Context, key string) (*models.Customer, error) {
	// An id match wins over a name match.
	for _, column := range []string{"id", "name"} {
		var customer models.Customer
		err := r.db.WithContext(ctx).Where(column+" = ?", key).First(&customer).Error
		if err == nil {
			return &customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to retrieve customer %s: %w", key, err)
		}
	}
	return nil, nil
}

func (r *gormCustomers) Upsert(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to save customer %s: %w", customer.Name, err)
	}
	return customer, nil
}

func (r *gormCustomers) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete customer %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormCustomers) List(ctx context.Context, search string) ([]models.Customer, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(contact) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

type gormNotifications struct {
	db *gorm.DB
}

func (r *gormNotifications) AddNotification(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *gormNotifications) ListNotifications(ctx context.Context, orderID string) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
