package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kendall-kelly/laundry-shop-api/models"
)

const (
	ordersFile        = "orders.json"
	customersFile     = "customers.json"
	notificationsFile = "notifications.json"
)

// FileStore keeps each collection in a JSON file under one directory, the
// way the shop ran before it had a database. Every call reads the whole
// collection, mutates it and writes it back; a mutex serialises callers in
// this process, and concurrent processes get last-write-wins.
type FileStore struct {
	dir string
	mu  sync.Mutex
	// write persists one collection; tests swap it to inject failures
	write func(name string, v any) error
}

// NewFileStore creates the data directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	s := &FileStore{dir: dir}
	s.write = s.writeJSON
	return s, nil
}

func (s *FileStore) Orders() OrderStore {
	return &fileOrders{s: s}
}

func (s *FileStore) Customers() CustomerStore {
	return &fileCustomers{s: s}
}

func (s *FileStore) Notifications() NotificationStore {
	return &fileNotifications{s: s}
}

func (s *FileStore) Close() error {
	return nil
}

// Atomic loads orders and customers once, lets fn work on the in-memory
// copies and writes both files back only when fn succeeds.
func (s *FileStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.readOrders()
	if err != nil {
		return err
	}
	customers, err := s.readCustomers()
	if err != nil {
		return err
	}

	orderTx := &orderSet{items: orders}
	customerTx := &customerSet{items: slices.Clone(customers)}
	if err := fn(Tx{Orders: orderTx, Customers: customerTx}); err != nil {
		return err
	}

	// Customers land first. If the orders file then fails, the customers
	// file is put back so neither half of the unit survives.
	if customerTx.dirty {
		if err := s.writeCustomers(customerTx.items); err != nil {
			return err
		}
	}
	if orderTx.dirty {
		if err := s.writeOrders(orderTx.items); err != nil {
			if customerTx.dirty {
				if restoreErr := s.writeCustomers(customers); restoreErr != nil {
					return fmt.Errorf("%w (restoring %s also failed: %v)", err, customersFile, restoreErr)
				}
			}
			return err
		}
	}
	return nil
}

// ---- orders ----

type fileOrders struct {
	s *FileStore
}

func (r *fileOrders) GetAll(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := r.s.withOrders(func(set *orderSet) error {
		var err error
		out, err = set.GetAll(ctx)
		return err
	})
	return out, err
}

func (r *fileOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var out *models.Order
	err := r.s.withOrders(func(set *orderSet) error {
		var err error
		out, err = set.GetByID(ctx, id)
		return err
	})
	return out, err
}

func (r *fileOrders) Save(ctx context.Context, order *models.Order) error {
	return r.s.withOrders(func(set *orderSet) error {
		return set.Save(ctx, order)
	})
}

func (r *fileOrders) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.s.withOrders(func(set *orderSet) error {
		var err error
		found, err = set.Delete(ctx, id)
		return err
	})
	return found, err
}

func (s *FileStore) withOrders(fn func(set *orderSet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.readOrders()
	if err != nil {
		return err
	}
	set := &orderSet{items: orders}
	if err := fn(set); err != nil {
		return err
	}
	if set.dirty {
		return s.writeOrders(set.items)
	}
	return nil
}

// orderSet is an in-memory order collection implementing OrderStore.
type orderSet struct {
	items []models.Order
	dirty bool
}

func (o *orderSet) GetAll(context.Context) ([]models.Order, error) {
	out := make([]models.Order, len(o.items))
	copy(out, o.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (o *orderSet) GetByID(_ context.Context, id string) (*models.Order, error) {
	for i := range o.items {
		if o.items[i].ID == id {
			order := o.items[i]
			return &order, nil
		}
	}
	return nil, nil
}

func (o *orderSet) Save(_ context.Context, order *models.Order) error {
	o.dirty = true
	for i := range o.items {
		if o.items[i].ID == order.ID {
			o.items[i] = *order
			return nil
		}
	}
	o.items = append(o.items, *order)
	return nil
}

func (o *orderSet) Delete(_ context.Context, id string) (bool, error) {
	for i := range o.items {
		if o.items[i].ID == id {
			o.items = append(o.items[:i], o.items[i+1:]...)
			o.dirty = true
			return true, nil
		}
	}
	return false, nil
}

// ---- customers ----

type fileCustomers struct {
	s *FileStore
}

func (r *fileCustomers) FindByKey(ctx context.Context, key string) (*models.Customer, error) {
	var out *models.Customer
	err := r.s.withCustomers(func(set *customerSet) error {
		var err error
		out, err = set.FindByKey(ctx, key)
		return err
	})
	return out, err
}

func (r *fileCustomers) Upsert(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	var out *models.Customer
	err := r.s.withCustomers(func(set *customerSet) error {
		var err error
		out, err = set.Upsert(ctx, customer)
		return err
	})
	return out, err
}

func (r *fileCustomers) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.s.withCustomers(func(set *customerSet) error {
		var err error
		found, err = set.Delete(ctx, id)
		return err
	})
	return found, err
}

func (r *fileCustomers) List(ctx context.Context, search string) ([]models.Customer, error) {
	var out []models.Customer
	err := r.s.withCustomers(func(set *customerSet) error {
		var err error
		out, err = set.List(ctx, search)
		return err
	})
	return out, err
}

func (s *FileStore) withCustomers(fn func(set *customerSet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customers, err := s.readCustomers()
	if err != nil {
		return err
	}
	set := &customerSet{items: customers}
	if err := fn(set); err != nil {
		return err
	}
	if set.dirty {
		return s.writeCustomers(set.items)
	}
	return nil
}

// customerSet is an in-memory customer collection implementing CustomerStore.
type customerSet struct {
	items []models.Customer
	dirty bool
}

func (c *customerSet) FindByKey(_ context.Context, key string) (*models.Customer, error) {
	for _, match := range []func(models.Customer) bool{
		func(m models.Customer) bool { return m.ID == key },
		func(m models.Customer) bool { return m.Name == key },
	} {
		for i := range c.items {
			if match(c.items[i]) {
				customer := c.items[i]
				return &customer, nil
			}
		}
	}
	return nil, nil
}

func (c *customerSet) Upsert(_ context.Context, customer *models.Customer) (*models.Customer, error) {
	c.dirty = true
	for i := range c.items {
		if c.items[i].ID == customer.ID {
			c.items[i] = *customer
			return customer, nil
		}
	}
	c.items = append(c.items, *customer)
	return customer, nil
}

func (c *customerSet) Delete(_ context.Context, id string) (bool, error) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.dirty = true
			return true, nil
		}
	}
	return false, nil
}

func (c *customerSet) List(_ context.Context, search string) ([]models.Customer, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Customer, 0, len(c.items))
	for _, customer := range c.items {
		if search == "" ||
			strings.Contains(strings.ToLower(customer.Name), search) ||
			strings.Contains(strings.ToLower(customer.Contact), search) ||
			strings.Contains(strings.ToLower(customer.Email), search) {
			out = append(out, customer)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- notifications ----

type fileNotifications struct {
	s *FileStore
}

func (r *fileNotifications) AddNotification(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var items []models.Notification
	if err := r.s.readJSON(notificationsFile, &items); err != nil {
		return err
	}
	items = append(items, *n)
	return r.s.writeJSON(notificationsFile, items)
}

func (r *fileNotifications) ListNotifications(_ context.Context, orderID string) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var items []models.Notification
	if err := r.s.readJSON(notificationsFile, &items); err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(items))
	for _, n := range items {
		if orderID == "" || n.OrderID == orderID {
			out = append(out, n)
		}
	}
	return out, nil
}

// ---- file I/O ----

func (s *FileStore) readOrders() ([]models.Order, error) {
	var records []orderRecord
	if err := s.readJSON(ordersFile, &records); err != nil {
		return nil, err
	}
	fallback := s.modTime(ordersFile)
	orders := make([]models.Order, 0, len(records))
	for _, r := range records {
		orders = append(orders, r.toModel(fallback))
	}
	return orders, nil
}

func (s *FileStore) writeOrders(orders []models.Order) error {
	records := make([]orderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, recordFromOrder(o))
	}
	return s.write(ordersFile, records)
}

func (s *FileStore) readCustomers() ([]models.Customer, error) {
	var records []customerRecord
	if err := s.readJSON(customersFile, &records); err != nil {
		return nil, err
	}
	customers := make([]models.Customer, 0, len(records))
	for _, r := range records {
		customers = append(customers, r.toModel())
	}
	return customers, nil
}

func (s *FileStore) writeCustomers(customers []models.Customer) error {
	records := make([]customerRecord, 0, len(customers))
	for _, c := range customers {
		records = append(records, recordFromCustomer(c))
	}
	return s.write(customersFile, records)
}

// modTime reports when a data file was last written, or the zero time when
// it cannot be read.
func (s *FileStore) modTime(name string) time.Time {
	info, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime().UTC()
}

// readJSON treats a missing file as an empty collection.
func (s *FileStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// writeJSON replaces the file through a rename so readers never see a
// half-written collection.
func (s *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
