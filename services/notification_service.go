package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/kendall-kelly/laundry-shop-api/store"
)

// Notification types and channels.
const (
	NotifyStatus  = "status"
	NotifyPayment = "payment"
	NotifyReady   = "ready"

	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// NotificationInput asks for a message about an order. An empty Message is
// filled from the shop's template for Type.
type NotificationInput struct {
	OrderID string `json:"order_id"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// NotificationService simulates SMS and email notices. Delivery is a log
// line plus a stored record.
type NotificationService struct {
	store store.Store
	opts  options
}

// NewNotificationService creates a notification service
func NewNotificationService(st store.Store, opts ...Option) *NotificationService {
	return &NotificationService{store: st, opts: buildOptions(opts)}
}

// Send builds, "delivers" and records a notification.
func (s *NotificationService) Send(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	kind := strings.ToLower(strings.TrimSpace(in.Type))
	switch kind {
	case NotifyStatus, NotifyPayment, NotifyReady:
	default:
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("must be one of status, payment, ready, got %q", in.Type)}
	}
	channel := strings.ToLower(strings.TrimSpace(in.Channel))
	if channel == "" {
		channel = ChannelSMS
	}
	if channel != ChannelSMS && channel != ChannelEmail {
		return nil, &ValidationError{Field: "channel", Message: fmt.Sprintf("must be sms or email, got %q", in.Channel)}
	}
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, &ValidationError{Field: "order_id", Message: "is required"}
	}

	order, err := s.store.Orders().GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, storeErr("send notification", err)
	}
	if order == nil {
		return nil, orderNotFound(in.OrderID)
	}

	recipient := order.Contact
	if channel == ChannelEmail {
		recipient = order.Email
	}
	if recipient == "" {
		return nil, &ValidationError{Field: "channel", Message: fmt.Sprintf("order has no %s recipient", channel)}
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		message = NotificationMessage(kind, *order)
	}

	n := &models.Notification{
		ID:        s.opts.newID(),
		OrderID:   order.ID,
		Type:      kind,
		Channel:   channel,
		Recipient: recipient,
		Message:   message,
		CreatedAt: s.opts.now(),
	}
	if err := s.store.Notifications().AddNotification(ctx, n); err != nil {
		return nil, storeErr("send notification", err)
	}

	s.opts.logger.Info("notification simulated",
		slog.String("order_id", order.ID),
		slog.String("channel", channel),
		slog.String("recipient", recipient),
		slog.String("message", message))
	return n, nil
}

// List returns the notifications sent, optionally for one order.
func (s *NotificationService) List(ctx context.Context, orderID string) ([]models.Notification, error) {
	out, err := s.store.Notifications().ListNotifications(ctx, orderID)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	if out == nil {
		out = []models.Notification{}
	}
	return out, nil
}

// NotificationMessage renders the shop's default text for a notification type.
func NotificationMessage(kind string, o models.Order) string {
	switch kind {
	case NotifyPayment:
		return fmt.Sprintf("Hi %s, pending balance: ₱%s.", o.CustomerName, o.Price.StringFixed(2))
	case NotifyReady:
		return fmt.Sprintf("Hi %s, laundry is ready! Total: ₱%s.", o.CustomerName, o.Price.StringFixed(2))
	}
	return fmt.Sprintf("Hi %s, your laundry is %s.", o.CustomerName, o.Status)
}
