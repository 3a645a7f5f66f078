package store

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/laundry-shop-api/models"
	"gorm.io/datatypes"
)

// legacyCustomerNamespace derives stable ids for customers that were only
// ever keyed by name in the old data files.
var legacyCustomerNamespace = uuid.MustParse("5b0e4c8e-3f4a-4c55-9a57-3c1b1f0e6d21")

// LegacyCustomerID returns the id a name-keyed customer is given on migration.
func LegacyCustomerID(name string) string {
	return uuid.NewSHA1(legacyCustomerNamespace, []byte(name)).String()
}

// flexNumber accepts 7, 7.5, "7.5" and "" (zero).
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = flexNumber(v)
	return nil
}

// flexTime accepts RFC 3339 timestamps, bare dates and empty strings.
type flexTime struct {
	time.Time
	Valid bool
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed.UTC(), true
			return nil
		}
	}
	return &time.ParseError{Value: s, Message: ": unrecognised timestamp"}
}

// orderRecord is the on-disk order. It reads the canonical shape written by
// this package plus every historical shape of the shop's orders.json; only
// the canonical fields are ever written back.
type orderRecord struct {
	ID                string               `json:"id"`
	CustomerID        string               `json:"customer_id,omitempty"`
	CustomerName      string               `json:"customer_name"`
	Contact           string               `json:"contact"`
	Email             string               `json:"email"`
	Address           string               `json:"address"`
	Weight            flexNumber           `json:"weight"`
	ServiceType       string               `json:"service_type"`
	AddOns            []models.AddOn       `json:"add_ons"`
	Price             *models.Money        `json:"price"`
	PriceOverridden   bool                 `json:"price_overridden"`
	Status            models.OrderStatus   `json:"status"`
	PaymentStatus     models.PaymentStatus `json:"payment_status"`
	PaymentMethod     string               `json:"payment_method"`
	PaidAmount        *models.Money        `json:"paid_amount"`
	PaymentDate       *time.Time           `json:"payment_date"`
	Notes             string               `json:"notes"`
	PrintedName       string               `json:"printed_name"`
	MachineAssignment string               `json:"machine_assignment"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`

	Legacy legacyOrderFields `json:"-"`
}

// legacyOrderFields are the camelCase keys of older data files.
type legacyOrderFields struct {
	CustomerID        string          `json:"customerId"`
	CustomerName      string          `json:"customerName"`
	ServiceType       string          `json:"serviceType"`
	AddFabcon         *bool           `json:"addFabcon"`
	AddPowder         *bool           `json:"addPowder"`
	FabconQuantity    *flexNumber     `json:"fabconQuantity"`
	PowderQuantity    *flexNumber     `json:"powderQuantity"`
	AddOns            json.RawMessage `json:"addOns"`
	PaymentStatus     string          `json:"paymentStatus"`
	PaymentMethod     string          `json:"paymentMethod"`
	PaymentDate       flexTime        `json:"paymentDate"`
	PaidAmount        *models.Money   `json:"paidAmount"`
	PrintedName       string          `json:"printedName"`
	MachineAssignment string          `json:"machineAssignment"`
	CreatedAt         flexTime        `json:"createdAt"`
	UpdatedAt         flexTime        `json:"updatedAt"`
}

func (r *orderRecord) UnmarshalJSON(data []byte) error {
	type canonical orderRecord
	var c canonical
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &c.Legacy); err != nil {
		return err
	}
	*r = orderRecord(c)
	return nil
}

// toModel normalises a record of any generation into the canonical order.
// toModel normalises a record. fallback dates orders whose file never
// recorded when they were made.
func (r orderRecord) toModel(fallback time.Time) models.Order {
	l := r.Legacy
	o := models.Order{
		ID:                r.ID,
		CustomerID:        firstNonEmpty(r.CustomerID, l.CustomerID),
		CustomerName:      firstNonEmpty(r.CustomerName, l.CustomerName),
		Contact:           r.Contact,
		Email:             r.Email,
		Address:           r.Address,
		Weight:            float64(r.Weight),
		ServiceType:       firstNonEmpty(r.ServiceType, l.ServiceType),
		PriceOverridden:   r.PriceOverridden,
		Status:            r.Status,
		PaymentStatus:     r.PaymentStatus,
		PaymentMethod:     firstNonEmpty(r.PaymentMethod, l.PaymentMethod),
		PaidAmount:        r.PaidAmount,
		PaymentDate:       r.PaymentDate,
		Notes:             r.Notes,
		PrintedName:       firstNonEmpty(r.PrintedName, l.PrintedName),
		MachineAssignment: firstNonEmpty(r.MachineAssignment, l.MachineAssignment),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}

	if r.Price != nil {
		o.Price = *r.Price
	}
	if o.PaidAmount == nil {
		o.PaidAmount = l.PaidAmount
	}
	if o.PaymentDate == nil && l.PaymentDate.Valid {
		t := l.PaymentDate.Time
		o.PaymentDate = &t
	}
	if o.PaymentStatus == "" {
		if ps, ok := models.ParsePaymentStatus(l.PaymentStatus); ok {
			o.PaymentStatus = ps
		} else {
			o.PaymentStatus = models.PaymentUnpaid
		}
	}
	if st, ok := models.ParseOrderStatus(string(o.Status)); ok {
		o.Status = st
	} else if o.Status == "" {
		o.Status = models.StatusPending
	}
	if o.CreatedAt.IsZero() && l.CreatedAt.Valid {
		o.CreatedAt = l.CreatedAt.Time
	}
	if o.UpdatedAt.IsZero() && l.UpdatedAt.Valid {
		o.UpdatedAt = l.UpdatedAt.Time
	}
	if o.CreatedAt.IsZero() {
		switch {
		case !o.UpdatedAt.IsZero():
			o.CreatedAt = o.UpdatedAt
		case o.PaymentDate != nil && !o.PaymentDate.IsZero():
			o.CreatedAt = *o.PaymentDate
		default:
			o.CreatedAt = fallback
		}
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	if r.AddOns != nil {
		o.AddOns = datatypes.JSONSlice[models.AddOn](boundedAddOns(models.NormalizeAddOns(r.AddOns)))
	} else {
		o.AddOns = datatypes.JSONSlice[models.AddOn](legacyAddOns(l))
	}
	return o
}

// legacyAddOns converts boolean flags, per-add-on quantities and presence
// lists into {name, quantity} pairs. An explicit quantity beats its flag.
func legacyAddOns(l legacyOrderFields) []models.AddOn {
	var addOns []models.AddOn

	if len(l.AddOns) > 0 {
		var names []string
		if err := json.Unmarshal(l.AddOns, &names); err == nil {
			for _, name := range names {
				addOns = append(addOns, models.AddOn{Name: name, Quantity: 1})
			}
		} else {
			var pairs []models.AddOn
			if err := json.Unmarshal(l.AddOns, &pairs); err == nil {
				addOns = append(addOns, pairs...)
			}
		}
	}

	pick := func(qty *flexNumber, flag *bool) int {
		if qty != nil {
			if *qty < 0 || *qty > models.MaxAddOnQuantity {
				return -1
			}
			return int(*qty)
		}
		if flag != nil && *flag {
			return 1
		}
		return 0
	}
	if q := pick(l.FabconQuantity, l.AddFabcon); q > 0 {
		addOns = append(addOns, models.AddOn{Name: "fabcon", Quantity: q})
	}
	if q := pick(l.PowderQuantity, l.AddPowder); q > 0 {
		addOns = append(addOns, models.AddOn{Name: "powder", Quantity: q})
	}

	return boundedAddOns(models.NormalizeAddOns(addOns))
}

// boundedAddOns drops lines whose quantity is negative or beyond
// MaxAddOnQuantity. Such values in old files are corrupt, and the stored
// price stays authoritative for those orders.
func boundedAddOns(in []models.AddOn) []models.AddOn {
	out := in[:0]
	for _, a := range in {
		if a.Quantity < 0 || a.Quantity > models.MaxAddOnQuantity {
			continue
		}
		out = append(out, a)
	}
	return out
}

func recordFromOrder(o models.Order) orderRecord {
	price := o.Price
	addOns := []models.AddOn(o.AddOns)
	if addOns == nil {
		addOns = []models.AddOn{}
	}
	return orderRecord{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		CustomerName:      o.CustomerName,
		Contact:           o.Contact,
		Email:             o.Email,
		Address:           o.Address,
		Weight:            flexNumber(o.Weight),
		ServiceType:       o.ServiceType,
		AddOns:            addOns,
		Price:             &price,
		PriceOverridden:   o.PriceOverridden,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		PaymentMethod:     o.PaymentMethod,
		PaidAmount:        o.PaidAmount,
		PaymentDate:       o.PaymentDate,
		Notes:             o.Notes,
		PrintedName:       o.PrintedName,
		MachineAssignment: o.MachineAssignment,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// customerRecord reads both the canonical and the camelCase customer shapes.
type customerRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Legacy struct {
		Phone     string   `json:"phone"`
		CreatedAt flexTime `json:"createdAt"`
		UpdatedAt flexTime `json:"updatedAt"`
	} `json:"-"`
}

func (r *customerRecord) UnmarshalJSON(data []byte) error {
	type canonical customerRecord
	var c canonical
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &c.Legacy); err != nil {
		return err
	}
	*r = customerRecord(c)
	return nil
}

func (r customerRecord) toModel() models.Customer {
	c := models.Customer{
		ID:        r.ID,
		Name:      r.Name,
		Contact:   firstNonEmpty(r.Contact, r.Legacy.Phone),
		Email:     r.Email,
		Address:   r.Address,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if c.ID == "" {
		c.ID = LegacyCustomerID(c.Name)
	}
	if c.CreatedAt.IsZero() && r.Legacy.CreatedAt.Valid {
		c.CreatedAt = r.Legacy.CreatedAt.Time
	}
	if c.UpdatedAt.IsZero() && r.Legacy.UpdatedAt.Valid {
		c.UpdatedAt = r.Legacy.UpdatedAt.Time
	}
	return c
}

func recordFromCustomer(c models.Customer) customerRecord {
	return customerRecord{
		ID:        c.ID,
		Name:      c.Name,
		Contact:   c.Contact,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
