package models

import "time"

// Notification is a simulated SMS or email sent to a customer about an order.
// Nothing is actually delivered; the record is the delivery.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID   string    `gorm:"size:36;not null;index" json:"order_id"`
	Type      string    `gorm:"not null" json:"type"`    // status, payment, ready
	Channel   string    `gorm:"not null" json:"channel"` // sms, email
	Recipient string    `json:"recipient"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
