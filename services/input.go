package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/shopspring/decimal"
)

// OrderInput is the raw order payload accepted by Create and Update. Numeric
// fields stay raw so that every caller goes through the same parsing: JSON
// numbers and numeric strings are accepted, anything else is a
// ValidationError. Absent fields are left untouched on update.
//
// add_ons accepts {"fabcon": 2}, ["fabcon"] (presence, quantity 1) or
// [{"name": "fabcon", "quantity": 2}]. The legacy add_fabcon/add_powder flags
// and fabcon_quantity/powder_quantity fields are converted on the way in.
type OrderInput struct {
	CustomerID        *string         `json:"customer_id"`
	CustomerName      *string         `json:"customer_name"`
	Contact           *string         `json:"contact"`
	Email             *string         `json:"email"`
	Address           *string         `json:"address"`
	Weight            json.RawMessage `json:"weight"`
	ServiceType       *string         `json:"service_type"`
	AddOns            json.RawMessage `json:"add_ons"`
	AddFabcon         *bool           `json:"add_fabcon"`
	AddPowder         *bool           `json:"add_powder"`
	FabconQuantity    json.RawMessage `json:"fabcon_quantity"`
	PowderQuantity    json.RawMessage `json:"powder_quantity"`
	Price             json.RawMessage `json:"price"`
	Notes             *string         `json:"notes"`
	PrintedName       *string         `json:"printed_name"`
	MachineAssignment *string         `json:"machine_assignment"`
	Status            *string         `json:"status"`
	PaymentStatus     *string         `json:"payment_status"`
	PaymentMethod     *string         `json:"payment_method"`
	PaidAmount        json.RawMessage `json:"paid_amount"`
	PaymentDate       *string         `json:"payment_date"`
}

// PaymentInput is the payload of UpdatePayment.
type PaymentInput struct {
	PaymentStatus string          `json:"payment_status"`
	PaidAmount    json.RawMessage `json:"paid_amount"`
	PaymentMethod *string         `json:"payment_method"`
	PaymentDate   *string         `json:"payment_date"`
}

// optionalNumber is a parsed numeric field: absent, explicitly empty
// (null or ""), or a value.
type optionalNumber struct {
	Present bool
	Value   *decimal.Decimal
}

// orderPatch is OrderInput after validation.
type orderPatch struct {
	customerID        *string
	customerName      *string
	contact           *string
	email             *string
	address           *string
	weight            optionalNumber
	serviceType       *string
	addOns            []models.AddOn // replaces the selection when addOnsSet
	addOnsSet         bool
	addOnQuantities   map[string]int // legacy per-name overrides applied after addOns
	price             optionalNumber
	notes             *string
	printedName       *string
	machineAssignment *string
	status            *models.OrderStatus
	paymentStatus     *models.PaymentStatus
	paymentMethod     *string
	paidAmount        optionalNumber
	paymentDate       *time.Time
}

func (p orderPatch) affectsPrice() bool {
	return p.weight.Present || p.serviceType != nil || p.addOnsSet || len(p.addOnQuantities) > 0 || p.price.Present
}

func (p orderPatch) affectsCustomer() bool {
	return p.customerID != nil || p.customerName != nil || p.contact != nil || p.email != nil || p.address != nil
}

func parseOrderInput(in OrderInput) (orderPatch, error) {
	p := orderPatch{
		customerID:        trimmed(in.CustomerID),
		customerName:      trimmed(in.CustomerName),
		contact:           trimmed(in.Contact),
		email:             trimmed(in.Email),
		address:           trimmed(in.Address),
		serviceType:       trimmed(in.ServiceType),
		notes:             in.Notes,
		printedName:       in.PrintedName,
		machineAssignment: in.MachineAssignment,
		paymentMethod:     trimmed(in.PaymentMethod),
	}

	var err error
	if p.weight, err = parseNumber("weight", in.Weight); err != nil {
		return p, err
	}
	if p.weight.Present && p.weight.Value == nil {
		return p, &ValidationError{Field: "weight", Message: "must not be empty"}
	}
	if p.price, err = parseNumber("price", in.Price); err != nil {
		return p, err
	}
	if p.paidAmount, err = parseNumber("paid_amount", in.PaidAmount); err != nil {
		return p, err
	}

	if p.addOns, p.addOnsSet, err = parseAddOns(in.AddOns); err != nil {
		return p, err
	}
	if p.addOnQuantities, err = parseLegacyAddOns(in); err != nil {
		return p, err
	}

	if in.Status != nil {
		st, ok := models.ParseOrderStatus(*in.Status)
		if !ok {
			return p, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", *in.Status)}
		}
		p.status = &st
	}
	if in.PaymentStatus != nil {
		ps, ok := models.ParsePaymentStatus(*in.PaymentStatus)
		if !ok {
			return p, &ValidationError{Field: "payment_status", Message: fmt.Sprintf("unknown payment status %q", *in.PaymentStatus)}
		}
		p.paymentStatus = &ps
	}
	if in.PaymentDate != nil && strings.TrimSpace(*in.PaymentDate) != "" {
		t, err := parseTimestamp("payment_date", *in.PaymentDate)
		if err != nil {
			return p, err
		}
		p.paymentDate = &t
	}

	return p, nil
}

// parseNumber accepts a JSON number or a numeric string. null and "" mean
// "present but empty".
func parseNumber(field string, raw json.RawMessage) (optionalNumber, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return optionalNumber{}, nil
	}
	if bytes.Equal(raw, []byte("null")) {
		return optionalNumber{Present: true}, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return optionalNumber{}, &ValidationError{Field: field, Message: "must be numeric"}
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return optionalNumber{Present: true}, nil
		}
	}

	v, err := decimal.NewFromString(text)
	if err != nil {
		return optionalNumber{}, &ValidationError{Field: field, Message: fmt.Sprintf("must be numeric, got %s", raw)}
	}
	return optionalNumber{Present: true, Value: &v}, nil
}

// parseQuantity parses a whole, non-negative add-on quantity.
func parseQuantity(field string, raw json.RawMessage) (int, bool, error) {
	n, err := parseNumber(field, raw)
	if err != nil || !n.Present {
		return 0, false, err
	}
	if n.Value == nil {
		return 0, true, nil
	}
	if !n.Value.IsInteger() || n.Value.IsNegative() {
		return 0, false, &ValidationError{Field: field, Message: "must be a whole number of at least 0"}
	}
	if n.Value.GreaterThan(decimal.NewFromInt(models.MaxAddOnQuantity)) {
		return 0, false, &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d", models.MaxAddOnQuantity)}
	}
	return int(n.Value.IntPart()), true, nil
}

func parseAddOns(raw json.RawMessage) ([]models.AddOn, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(raw, []byte("null")) {
		return []models.AddOn{}, true, nil
	}

	switch raw[0] {
	case '{':
		var byName map[string]json.RawMessage
		if err := json.Unmarshal(raw, &byName); err != nil {
			return nil, false, &ValidationError{Field: "add_ons", Message: "must be an object of quantities or a list"}
		}
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)

		addOns := make([]models.AddOn, 0, len(names))
		for _, name := range names {
			qty, _, err := parseQuantity("add_ons."+name, byName[name])
			if err != nil {
				return nil, false, err
			}
			addOns = append(addOns, models.AddOn{Name: strings.TrimSpace(name), Quantity: qty})
		}
		return models.NormalizeAddOns(addOns), true, nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false, &ValidationError{Field: "add_ons", Message: "must be an object of quantities or a list"}
		}
		addOns := make([]models.AddOn, 0, len(items))
		for _, item := range items {
			var name string
			if err := json.Unmarshal(item, &name); err == nil {
				addOns = append(addOns, models.AddOn{Name: strings.TrimSpace(name), Quantity: 1})
				continue
			}
			var pair struct {
				Name     string          `json:"name"`
				Quantity json.RawMessage `json:"quantity"`
			}
			if err := json.Unmarshal(item, &pair); err != nil || strings.TrimSpace(pair.Name) == "" {
				return nil, false, &ValidationError{Field: "add_ons", Message: "list entries must be names or {name, quantity} objects"}
			}
			qty, present, err := parseQuantity("add_ons."+pair.Name, pair.Quantity)
			if err != nil {
				return nil, false, err
			}
			if !present {
				qty = 1
			}
			addOns = append(addOns, models.AddOn{Name: strings.TrimSpace(pair.Name), Quantity: qty})
		}
		addOns = models.NormalizeAddOns(addOns)
		for _, a := range addOns {
			if a.Quantity > models.MaxAddOnQuantity {
				return nil, false, &ValidationError{Field: "add_ons." + a.Name, Message: fmt.Sprintf("must be at most %d", models.MaxAddOnQuantity)}
			}
		}
		return addOns, true, nil
	}

	return nil, false, &ValidationError{Field: "add_ons", Message: "must be an object of quantities or a list"}
}

// parseLegacyAddOns converts the old boolean flags and per-add-on quantity
// fields. An explicit quantity wins over its flag.
func parseLegacyAddOns(in OrderInput) (map[string]int, error) {
	out := map[string]int{}
	legacy := []struct {
		name string
		qty  json.RawMessage
		flag *bool
	}{
		{"fabcon", in.FabconQuantity, in.AddFabcon},
		{"powder", in.PowderQuantity, in.AddPowder},
	}
	for _, l := range legacy {
		qty, present, err := parseQuantity(l.name+"_quantity", l.qty)
		if err != nil {
			return nil, err
		}
		switch {
		case present:
			out[l.name] = qty
		case l.flag != nil && *l.flag:
			out[l.name] = 1
		case l.flag != nil:
			out[l.name] = 0
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("must be a date in YYYY-MM-DD form, got %q", s)}
	}
	return t, nil
}

func parseTimestamp(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("must be an RFC 3339 timestamp or YYYY-MM-DD date, got %q", s)}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

const dateLayout = "2006-01-02"
