package models

import (
	"encoding/json"
	"sort"
	"time"

	"gorm.io/datatypes"
)

// MaxAddOnQuantity bounds a single add-on line. One load never takes more.
const MaxAddOnQuantity = 100

// AddOn is an extra treatment billed per unit (fabric conditioner, powder detergent)
type AddOn struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order represents one laundry drop-off
type Order struct {
	ID                string                     `gorm:"primaryKey;size:36" json:"id"`
	CustomerID        string                     `gorm:"size:36;index" json:"customer_id"` // no FK: deleting a customer orphans its orders
	CustomerName      string                     `gorm:"not null;index" json:"customer_name"`
	Contact           string                     `json:"contact"`
	Email             string                     `json:"email"`
	Address           string                     `json:"address"`
	Weight            float64                    `gorm:"not null" json:"weight"`
	ServiceType       string                     `gorm:"not null" json:"service_type"`
	AddOns            datatypes.JSONSlice[AddOn] `json:"add_ons"`
	Price             Money                      `gorm:"type:decimal(10,2);not null" json:"price"`
	PriceOverridden   bool                       `gorm:"not null;default:false" json:"price_overridden"` // explicit price set on the last price-affecting write
	Status            OrderStatus                `gorm:"not null;default:'pending';index" json:"status"`
	PaymentStatus     PaymentStatus              `gorm:"not null;default:'unpaid';index" json:"payment_status"`
	PaymentMethod     string                     `json:"payment_method"`
	PaidAmount        *Money                     `gorm:"type:decimal(10,2)" json:"paid_amount"`
	PaymentDate       *time.Time                 `json:"payment_date"`
	Notes             string                     `gorm:"type:text" json:"notes"`
	PrintedName       string                     `json:"printed_name"`
	MachineAssignment string                     `json:"machine_assignment"`
	CreatedAt         time.Time                  `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt         time.Time                  `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// AddOnQuantity returns the selected quantity for an add-on, 0 when absent.
func (o Order) AddOnQuantity(name string) int {
	for _, a := range o.AddOns {
		if a.Name == name {
			return a.Quantity
		}
	}
	return 0
}

// ActiveAddOns lists the add-ons with a positive quantity, sorted by name.
// A zero quantity never marks an add-on active.
func (o Order) ActiveAddOns() []string {
	names := make([]string, 0, len(o.AddOns))
	for _, a := range o.AddOns {
		if a.Quantity > 0 {
			names = append(names, a.Name)
		}
	}
	sort.Strings(names)
	return names
}

// MarshalJSON adds the derived active_add_ons view to the stored fields.
func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	addOns := o.AddOns
	if addOns == nil {
		addOns = datatypes.JSONSlice[AddOn]{}
	}
	o.AddOns = addOns
	return json.Marshal(struct {
		order
		ActiveAddOns []string `json:"active_add_ons"`
	}{order(o), o.ActiveAddOns()})
}

// NormalizeAddOns merges duplicate names and drops blank ones. Order of first
// appearance is kept.
func NormalizeAddOns(in []AddOn) []AddOn {
	out := make([]AddOn, 0, len(in))
	index := make(map[string]int, len(in))
	for _, a := range in {
		if a.Name == "" {
			continue
		}
		if i, ok := index[a.Name]; ok {
			out[i].Quantity += a.Quantity
			continue
		}
		index[a.Name] = len(out)
		out = append(out, a)
	}
	return out
}
