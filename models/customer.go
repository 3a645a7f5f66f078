package models

import (
	"time"
)

// Customer represents a person or household dropping off laundry
type Customer struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	Contact   string    `json:"contact"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// MergeContact copies the non-empty incoming contact details over the
// existing ones. Empty values never erase what is already stored.
func (c *Customer) MergeContact(contact, email, address string) {
	if contact != "" {
		c.Contact = contact
	}
	if email != "" {
		c.Email = email
	}
	if address != "" {
		c.Address = address
	}
}
