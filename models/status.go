package models

import "strings"

// OrderStatus is the processing state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusWashing   OrderStatus = "washing"
	StatusDrying    OrderStatus = "drying"
	StatusFolded    OrderStatus = "folded"
	StatusCompleted OrderStatus = "completed"
	StatusClaimed   OrderStatus = "claimed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in workflow order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusWashing,
	StatusDrying,
	StatusFolded,
	StatusCompleted,
	StatusClaimed,
	StatusCancelled,
}

// ParseOrderStatus normalises user input. "ready" is accepted as an alias for folded.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	v := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if v == "ready" {
		return StatusFolded, true
	}
	for _, st := range OrderStatuses {
		if st == v {
			return v, true
		}
	}
	return "", false
}

// IsActive reports whether the order still needs work. Completed, claimed and
// cancelled orders are terminal for billing and dashboards, but remain editable.
func (s OrderStatus) IsActive() bool {
	switch s {
	case StatusCompleted, StatusClaimed, StatusCancelled:
		return false
	}
	return true
}

// InProgress is true while the laundry is in the machines.
func (s OrderStatus) InProgress() bool {
	return s == StatusWashing || s == StatusDrying
}

// Progress is the percentage shown on the dashboard progress bar.
func (s OrderStatus) Progress() int {
	switch s {
	case StatusPending:
		return 10
	case StatusWashing:
		return 30
	case StatusDrying:
		return 60
	case StatusFolded:
		return 80
	}
	return 100
}

// PaymentStatus is whether the order has been settled
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// ParsePaymentStatus validates a payment status string.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentUnpaid:
		return PaymentUnpaid, true
	case PaymentPaid:
		return PaymentPaid, true
	}
	return "", false
}
