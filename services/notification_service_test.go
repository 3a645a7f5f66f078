package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/kendall-kelly/laundry-shop-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationMessage(t *testing.T) {
	order := models.Order{CustomerName: "Maria", Status: models.StatusDrying, Price: models.MoneyFromFloat(190)}

	assert.Equal(t, "Hi Maria, your laundry is drying.", NotificationMessage(NotifyStatus, order))
	assert.Equal(t, "Hi Maria, pending balance: ₱190.00.", NotificationMessage(NotifyPayment, order))
	assert.Equal(t, "Hi Maria, laundry is ready! Total: ₱190.00.", NotificationMessage(NotifyReady, order))
}

func TestNotificationService_Send(t *testing.T) {
	st := testutil.NewFileStore(t)
	ctx := context.Background()
	clock := testutil.NewClock(testStart)
	svc := NewNotificationService(st, WithClock(clock.Now), WithLogger(testutil.DiscardLogger()))

	seedOrder(t, st, "o-1", testStart, 160, models.StatusFolded, models.PaymentUnpaid)
	order, err := st.Orders().GetByID(ctx, "o-1")
	require.NoError(t, err)
	order.Contact = "09171234567"
	require.NoError(t, st.Orders().Save(ctx, order))

	n, err := svc.Send(ctx, NotificationInput{OrderID: "o-1", Type: "Ready"})
	require.NoError(t, err)
	assert.Equal(t, ChannelSMS, n.Channel)
	assert.Equal(t, "09171234567", n.Recipient)
	assert.Equal(t, "Hi Maria, laundry is ready! Total: ₱160.00.", n.Message)

	custom, err := svc.Send(ctx, NotificationInput{OrderID: "o-1", Type: "status", Message: "See you soon"})
	require.NoError(t, err)
	assert.Equal(t, "See you soon", custom.Message)

	var ve *ValidationError
	_, err = svc.Send(ctx, NotificationInput{OrderID: "o-1", Type: "status", Channel: "email"})
	require.True(t, errors.As(err, &ve), "order has no email")
	_, err = svc.Send(ctx, NotificationInput{OrderID: "o-1", Type: "promo"})
	assert.True(t, errors.As(err, &ve))
	_, err = svc.Send(ctx, NotificationInput{OrderID: "o-1", Type: "status", Channel: "fax"})
	assert.True(t, errors.As(err, &ve))

	var nf *NotFoundError
	_, err = svc.Send(ctx, NotificationInput{OrderID: "missing", Type: "status"})
	assert.True(t, errors.As(err, &nf))

	sent, err := svc.List(ctx, "o-1")
	require.NoError(t, err)
	assert.Len(t, sent, 2)

	none, err := svc.List(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}
