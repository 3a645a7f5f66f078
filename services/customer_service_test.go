package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/kendall-kelly/laundry-shop-api/store"
	"github.com/kendall-kelly/laundry-shop-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCustomerTest(t *testing.T) (*CustomerService, *OrderService, store.Store) {
	st := testutil.NewSQLiteStore(t)
	clock := testutil.NewClock(testStart)
	ids := testutil.SequentialIDs("id")
	opts := []Option{WithClock(clock.Now), WithIDGenerator(ids), WithLogger(testutil.DiscardLogger())}
	return NewCustomerService(st, opts...),
		NewOrderService(st, pricing.NewEngine(pricing.DefaultRates()), time.UTC, opts...),
		st
}

func TestCustomerService_Create(t *testing.T) {
	customers, _, _ := setupCustomerTest(t)
	ctx := context.Background()

	c, created, err := customers.Create(ctx, CustomerInput{Name: strp(" Maria "), Contact: strp("0917")})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Maria", c.Name)
	assert.Equal(t, "0917", c.Contact)

	again, created, err := customers.Create(ctx, CustomerInput{Name: strp("Maria"), Email: strp("m@example.com"), Contact: strp("")})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c.ID, again.ID)
	assert.Equal(t, "0917", again.Contact, "empty values never erase contact details")
	assert.Equal(t, "m@example.com", again.Email)

	_, _, err = customers.Create(ctx, CustomerInput{Name: strp("")})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestCustomerService_UpdateOverwritesAndRenames(t *testing.T) {
	customers, orders, _ := setupCustomerTest(t)
	ctx := context.Background()

	order, err := orders.Create(ctx, OrderInput{
		CustomerName: strp("Maria"),
		Contact:      strp("0917"),
		Weight:       raw(6),
		ServiceType:  strp("wash"),
	})
	require.NoError(t, err)

	updated, err := customers.Update(ctx, "Maria", CustomerInput{Name: strp("Maria Santos"), Contact: strp("")})
	require.NoError(t, err)
	assert.Equal(t, order.CustomerID, updated.ID)
	assert.Equal(t, "Maria Santos", updated.Name)
	assert.Equal(t, "", updated.Contact)

	renamed, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", renamed.CustomerName)

	_, err = customers.Update(ctx, "Maria", CustomerInput{Contact: strp("1")})
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestCustomerService_UpdateRejectsNameClash(t *testing.T) {
	customers, _, _ := setupCustomerTest(t)
	ctx := context.Background()

	_, _, err := customers.Create(ctx, CustomerInput{Name: strp("Maria")})
	require.NoError(t, err)
	_, _, err = customers.Create(ctx, CustomerInput{Name: strp("Ana")})
	require.NoError(t, err)

	_, err = customers.Update(ctx, "Ana", CustomerInput{Name: strp("Maria")})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
}

func TestCustomerService_DeleteKeepsOrders(t *testing.T) {
	customers, orders, _ := setupCustomerTest(t)
	ctx := context.Background()

	order, err := orders.Create(ctx, OrderInput{CustomerName: strp("Maria"), Weight: raw(6), ServiceType: strp("wash")})
	require.NoError(t, err)

	require.NoError(t, customers.Delete(ctx, order.CustomerID))

	_, err = customers.Get(ctx, "Maria")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))

	kept, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", kept.CustomerName)

	assert.True(t, errors.As(customers.Delete(ctx, "Maria"), &nf))
}

func TestCustomerService_ListAndHistory(t *testing.T) {
	customers, orders, st := setupCustomerTest(t)
	ctx := context.Background()

	for _, name := range []string{"Maria", "Ana", "Maria"} {
		_, err := orders.Create(ctx, OrderInput{CustomerName: strp(name), Weight: raw(6), ServiceType: strp("wash")})
		require.NoError(t, err)
	}
	// an imported order from before customers had ids
	require.NoError(t, st.Orders().Save(ctx, &models.Order{
		ID: "legacy-1", CustomerName: "Maria", Weight: 6, ServiceType: "wash",
		Price: models.MoneyFromFloat(160), Status: models.StatusClaimed, PaymentStatus: models.PaymentPaid,
		CreatedAt: testStart.Add(-24 * time.Hour),
	}))

	all, err := customers.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name)

	found, err := customers.List(ctx, "mar")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Maria", found[0].Name)

	history, err := customers.History(ctx, "Maria")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "legacy-1", history[0].ID)

	_, err = customers.History(ctx, "Nobody")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}
