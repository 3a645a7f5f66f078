package store

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/laundry-shop-api/config"
	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_FileDriver(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(&config.Config{StoreDriver: config.StoreDriverFile, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
}

func TestOpen_GormDriver(t *testing.T) {
	originalDB := config.GetDB()
	defer config.SetDB(originalDB)

	s, err := Open(&config.Config{
		StoreDriver: config.StoreDriverGorm,
		DatabaseURL: "sqlite://" + t.TempDir() + "/laundry.db",
	})
	require.NoError(t, err)
	defer s.Close()

	gs, ok := s.(*GormStore)
	require.True(t, ok)
	assert.True(t, gs.DB().Migrator().HasTable(&models.Order{}), "Open should migrate the schema")
}

func TestOpen_BadDatabaseURL(t *testing.T) {
	_, err := Open(&config.Config{StoreDriver: config.StoreDriverGorm, DatabaseURL: "redis://localhost"})
	assert.Error(t, err)
}

func TestCopy_LegacyFilesIntoDatabase(t *testing.T) {
	ctx := context.Background()
	src, err := NewFileStore(writeLegacyData(t))
	require.NoError(t, err)
	require.NoError(t, src.Notifications().AddNotification(ctx, &models.Notification{
		ID:        "n-1",
		OrderID:   "1718000000001",
		Type:      "ready",
		Channel:   "sms",
		Recipient: "0917",
		Message:   "Hi Ana, laundry is ready! Total: ₱190.00",
		CreatedAt: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
	}))

	dst := newTestGormStore(t)
	stats, err := Copy(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, CopyStats{Customers: 3, Orders: 3, Notifications: 1}, stats)

	orders, err := dst.Orders().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, LegacyCustomerID("Ana"), orders[0].CustomerID, "name-only orders link to the named customer")
	assert.Equal(t, LegacyCustomerID("Ben"), orders[1].CustomerID)
	assert.Equal(t, "c-77", orders[2].CustomerID)
	assert.Equal(t, []models.AddOn{{Name: "fabcon", Quantity: 2}}, []models.AddOn(orders[1].AddOns))

	carla, err := dst.Customers().FindByKey(ctx, "c-77")
	require.NoError(t, err)
	require.NotNil(t, carla, "a dangling customer id gets a customer record")
	assert.Equal(t, "Carla", carla.Name)

	ben, err := dst.Customers().FindByKey(ctx, "Ben")
	require.NoError(t, err)
	require.NotNil(t, ben)
	assert.Equal(t, "0918", ben.Contact)
}

func TestCopy_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	src, err := NewFileStore(writeLegacyData(t))
	require.NoError(t, err)
	require.NoError(t, src.Notifications().AddNotification(ctx, &models.Notification{
		ID: "n-1", OrderID: "1718000000002", Type: "payment", Channel: "sms", Message: "balance",
	}))
	dst := newTestGormStore(t)

	_, err = Copy(ctx, src, dst)
	require.NoError(t, err)
	stats, err := Copy(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Notifications, "notifications already copied are skipped")
	assert.Equal(t, 3, stats.Orders)

	customers, err := dst.Customers().List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, customers, 3)

	orders, err := dst.Orders().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestCopy_MergesIntoExistingCustomerByName(t *testing.T) {
	ctx := context.Background()
	src, err := NewFileStore(writeLegacyData(t))
	require.NoError(t, err)

	dst := newTestGormStore(t)
	_, err = dst.Customers().Upsert(ctx, &models.Customer{ID: "existing-ana", Name: "Ana", Address: "Blk 4"})
	require.NoError(t, err)

	_, err = Copy(ctx, src, dst)
	require.NoError(t, err)

	ana, err := dst.Customers().FindByKey(ctx, "Ana")
	require.NoError(t, err)
	require.NotNil(t, ana)
	assert.Equal(t, "existing-ana", ana.ID)
	assert.Equal(t, "0917", ana.Contact)
	assert.Equal(t, "Blk 4", ana.Address)

	order, err := dst.Orders().GetByID(ctx, "1718000000001")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "existing-ana", order.CustomerID)
}
