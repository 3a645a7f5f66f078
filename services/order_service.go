package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/kendall-kelly/laundry-shop-api/store"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderService owns the order lifecycle: creation, partial updates, status
// and payment changes, deletion and filtered listing.
type OrderService struct {
	store  store.Store
	engine *pricing.Engine
	loc    *time.Location
	opts   options
}

// NewOrderService wires the service. loc decides which calendar day an order
// belongs to when filtering by date; nil means UTC.
func NewOrderService(st store.Store, engine *pricing.Engine, loc *time.Location, opts ...Option) *OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderService{store: st, engine: engine, loc: loc, opts: buildOptions(opts)}
}

// OrderFilter narrows List. Empty fields match everything; From and To are
// inclusive YYYY-MM-DD dates.
type OrderFilter struct {
	Status        string
	PaymentStatus string
	CustomerID    string
	From          string
	To            string
}

// Create validates and prices a new order, links it to its customer and
// persists both in one unit of work.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	p, err := parseOrderInput(in)
	if err != nil {
		return nil, err
	}

	hasCustomerID := p.customerID != nil && *p.customerID != ""
	if !hasCustomerID && (p.customerName == nil || *p.customerName == "") {
		return nil, &ValidationError{Field: "customer_name", Message: "is required"}
	}
	if !p.weight.Present {
		return nil, &ValidationError{Field: "weight", Message: "is required"}
	}
	if p.serviceType == nil || *p.serviceType == "" {
		return nil, &ValidationError{Field: "service_type", Message: "is required"}
	}

	now := s.opts.now()
	order := &models.Order{
		ID:            s.opts.newID(),
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentUnpaid,
		AddOns:        datatypes.JSONSlice[models.AddOn]{},
		CreatedAt:     now,
	}
	if err := s.apply(order, p); err != nil {
		return nil, err
	}
	if err := s.reprice(order, p.price); err != nil {
		return nil, err
	}
	order.UpdatedAt = now

	err = s.store.Atomic(ctx, func(tx store.Tx) error {
		key, mustExist := order.CustomerName, false
		if hasCustomerID {
			key, mustExist = *p.customerID, true
		}
		if err := s.linkCustomer(ctx, tx.Customers, order, key, mustExist, fillBlank); err != nil {
			return err
		}
		return tx.Orders.Save(ctx, order)
	})
	if err != nil {
		return nil, storeErr("create order", err)
	}

	s.opts.logger.Info("order created",
		slog.String("order_id", order.ID),
		slog.String("customer", order.CustomerName),
		slog.String("price", order.Price.StringFixed(2)))
	return order, nil
}

// Update applies a partial change. Only the fields present in the input are
// touched; the price is recomputed when weight, service, add-ons or the
// explicit price are among them.
func (s *OrderService) Update(ctx context.Context, id string, in OrderInput) (*models.Order, error) {
	p, err := parseOrderInput(in)
	if err != nil {
		return nil, err
	}
	if p.customerName != nil && *p.customerName == "" {
		return nil, &ValidationError{Field: "customer_name", Message: "must not be empty"}
	}
	if p.serviceType != nil && *p.serviceType == "" {
		return nil, &ValidationError{Field: "service_type", Message: "must not be empty"}
	}

	var updated *models.Order
	err = s.store.Atomic(ctx, func(tx store.Tx) error {
		order, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return orderNotFound(id)
		}

		if err := s.apply(order, p); err != nil {
			return err
		}
		if p.affectsPrice() {
			if err := s.reprice(order, p.price); err != nil {
				return err
			}
		}
		if p.affectsCustomer() {
			key, mustExist := order.CustomerName, false
			switch {
			case p.customerID != nil && *p.customerID != "":
				key, mustExist = *p.customerID, true
			case p.customerName == nil && order.CustomerID != "":
				key = order.CustomerID
			}
			if err := s.linkCustomer(ctx, tx.Customers, order, key, mustExist, fillAbsent(p)); err != nil {
				return err
			}
		}
		order.UpdatedAt = s.opts.now()

		if err := tx.Orders.Save(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, storeErr("update order", err)
	}

	s.opts.logger.Info("order updated", slog.String("order_id", id))
	return updated, nil
}

// UpdateStatus moves an order to any status. "ready" is stored as folded.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	st, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	var updated *models.Order
	err := s.store.Atomic(ctx, func(tx store.Tx) error {
		order, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return orderNotFound(id)
		}
		order.Status = st
		order.UpdatedAt = s.opts.now()
		if err := tx.Orders.Save(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, storeErr("update order status", err)
	}

	s.opts.logger.Info("order status changed", slog.String("order_id", id), slog.String("status", string(st)))
	return updated, nil
}

// UpdatePayment records a payment state. Marking an order paid stamps the
// payment date when none is given; marking it unpaid clears date and amount.
func (s *OrderService) UpdatePayment(ctx context.Context, id string, in PaymentInput) (*models.Order, error) {
	ps, ok := models.ParsePaymentStatus(in.PaymentStatus)
	if !ok {
		return nil, &ValidationError{Field: "payment_status", Message: fmt.Sprintf("unknown payment status %q", in.PaymentStatus)}
	}
	p, err := parseOrderInput(OrderInput{
		PaymentStatus: &in.PaymentStatus,
		PaymentMethod: in.PaymentMethod,
		PaidAmount:    in.PaidAmount,
		PaymentDate:   in.PaymentDate,
	})
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.store.Atomic(ctx, func(tx store.Tx) error {
		order, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return orderNotFound(id)
		}
		if err := s.apply(order, p); err != nil {
			return err
		}
		order.UpdatedAt = s.opts.now()
		if err := tx.Orders.Save(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, storeErr("update order payment", err)
	}

	s.opts.logger.Info("order payment changed", slog.String("order_id", id), slog.String("payment_status", string(ps)))
	return updated, nil
}

// Delete removes an order. The customer record is left alone.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Orders().Delete(ctx, id)
	if err != nil {
		return storeErr("delete order", err)
	}
	if !deleted {
		return orderNotFound(id)
	}
	s.opts.logger.Info("order deleted", slog.String("order_id", id))
	return nil
}

// Get returns one order or a NotFoundError.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	if order == nil {
		return nil, orderNotFound(id)
	}
	return order, nil
}

// List returns the orders matching filter, oldest first.
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	match, err := s.matcher(filter)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Orders().GetAll(ctx)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	out := make([]models.Order, 0, len(all))
	for _, o := range all {
		if match(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *OrderService) matcher(f OrderFilter) (func(models.Order) bool, error) {
	var status models.OrderStatus
	if f.Status != "" {
		st, ok := models.ParseOrderStatus(f.Status)
		if !ok {
			return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", f.Status)}
		}
		status = st
	}
	var payment models.PaymentStatus
	if f.PaymentStatus != "" {
		ps, ok := models.ParsePaymentStatus(f.PaymentStatus)
		if !ok {
			return nil, &ValidationError{Field: "payment_status", Message: fmt.Sprintf("unknown payment status %q", f.PaymentStatus)}
		}
		payment = ps
	}
	from, to, err := dateBounds(f.From, f.To)
	if err != nil {
		return nil, err
	}

	return func(o models.Order) bool {
		if status != "" && o.Status != status {
			return false
		}
		if payment != "" && o.PaymentStatus != payment {
			return false
		}
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			return false
		}
		day := o.CreatedAt.In(s.loc).Format(dateLayout)
		if from != "" && day < from {
			return false
		}
		if to != "" && day > to {
			return false
		}
		return true
	}, nil
}

// dateBounds validates an optional inclusive date range.
func dateBounds(from, to string) (string, string, error) {
	if from != "" {
		if _, err := ParseDate("start_date", from); err != nil {
			return "", "", err
		}
	}
	if to != "" {
		if _, err := ParseDate("end_date", to); err != nil {
			return "", "", err
		}
	}
	if from != "" && to != "" && from > to {
		return "", "", &ValidationError{Field: "start_date", Message: "must not be after end_date"}
	}
	return from, to, nil
}

// apply copies the present, non-pricing fields of p onto order and
// validates weight and service type when they change.
func (s *OrderService) apply(order *models.Order, p orderPatch) error {
	if p.customerName != nil {
		order.CustomerName = *p.customerName
	}
	if p.contact != nil {
		order.Contact = *p.contact
	}
	if p.email != nil {
		order.Email = *p.email
	}
	if p.address != nil {
		order.Address = *p.address
	}
	if p.weight.Value != nil {
		if err := s.engine.ValidateWeight(*p.weight.Value); err != nil {
			return fromPricing(err)
		}
		order.Weight = p.weight.Value.InexactFloat64()
	}
	if p.serviceType != nil {
		if err := s.engine.ValidateServiceType(*p.serviceType); err != nil {
			return fromPricing(err)
		}
		order.ServiceType = *p.serviceType
	}
	if p.addOnsSet {
		order.AddOns = datatypes.JSONSlice[models.AddOn](p.addOns)
	}
	if len(p.addOnQuantities) > 0 {
		order.AddOns = append(datatypes.JSONSlice[models.AddOn]{}, order.AddOns...)
	}
	for _, name := range sortedKeys(p.addOnQuantities) {
		order.AddOns = setAddOn(order.AddOns, name, p.addOnQuantities[name])
	}
	for _, a := range order.AddOns {
		if err := s.engine.ValidateAddOn(pricing.Selection{Name: a.Name, Quantity: a.Quantity}); err != nil {
			return fromPricing(err)
		}
	}
	if p.notes != nil {
		order.Notes = *p.notes
	}
	if p.printedName != nil {
		order.PrintedName = *p.printedName
	}
	if p.machineAssignment != nil {
		order.MachineAssignment = *p.machineAssignment
	}
	if p.status != nil {
		order.Status = *p.status
	}
	if p.paymentMethod != nil {
		order.PaymentMethod = *p.paymentMethod
	}
	if p.paidAmount.Present {
		if p.paidAmount.Value == nil {
			order.PaidAmount = nil
		} else {
			if p.paidAmount.Value.IsNegative() {
				return &ValidationError{Field: "paid_amount", Message: "must not be negative"}
			}
			m := models.NewMoney(*p.paidAmount.Value)
			order.PaidAmount = &m
		}
	}
	if p.paymentDate != nil {
		t := *p.paymentDate
		order.PaymentDate = &t
	}
	if p.paymentStatus != nil {
		order.PaymentStatus = *p.paymentStatus
		switch *p.paymentStatus {
		case models.PaymentPaid:
			if order.PaymentDate == nil {
				t := s.opts.now()
				order.PaymentDate = &t
			}
		case models.PaymentUnpaid:
			order.PaymentDate = nil
			order.PaidAmount = nil
		}
	}
	return nil
}

// reprice recomputes the stored price from the order's current fields. A
// present explicit price wins; a present but empty one drops the override.
func (s *OrderService) reprice(order *models.Order, explicit optionalNumber) error {
	b, err := s.engine.Compute(pricingRequest(*order, explicit.Value))
	if err != nil {
		return fromPricing(err)
	}
	order.Price = models.NewMoney(b.Total)
	order.PriceOverridden = b.Explicit
	return nil
}

// contactFill selects which order contact fields are copied from the
// customer record when the order leaves them blank.
type contactFill struct {
	contact, email, address bool
}

// fillBlank back-fills every blank field, as on a new order.
var fillBlank = contactFill{contact: true, email: true, address: true}

// fillAbsent back-fills only the fields a patch did not send, so an
// explicit "" clears the order's copy.
func fillAbsent(p orderPatch) contactFill {
	return contactFill{contact: p.contact == nil, email: p.email == nil, address: p.address == nil}
}

// linkCustomer resolves or creates the customer an order belongs to and
// merges the order's contact details into it. With mustExist an unknown key
// is an error; otherwise a missing customer is created under the order's name.
func (s *OrderService) linkCustomer(ctx context.Context, customers store.CustomerStore, order *models.Order, key string, mustExist bool, fill contactFill) error {
	customer, err := customers.FindByKey(ctx, key)
	if err != nil {
		return err
	}
	if customer == nil && !mustExist && key != order.CustomerName {
		if customer, err = customers.FindByKey(ctx, order.CustomerName); err != nil {
			return err
		}
	}
	now := s.opts.now()
	if customer == nil {
		if mustExist {
			return customerNotFound(key)
		}
		customer = &models.Customer{
			ID:        s.opts.newID(),
			Name:      order.CustomerName,
			CreatedAt: now,
		}
	}

	customer.MergeContact(order.Contact, order.Email, order.Address)
	customer.UpdatedAt = now
	saved, err := customers.Upsert(ctx, customer)
	if err != nil {
		return err
	}

	order.CustomerID = saved.ID
	order.CustomerName = saved.Name
	if fill.contact && order.Contact == "" {
		order.Contact = saved.Contact
	}
	if fill.email && order.Email == "" {
		order.Email = saved.Email
	}
	if fill.address && order.Address == "" {
		order.Address = saved.Address
	}
	s.opts.logger.Info("customer upserted", slog.String("customer_id", saved.ID), slog.String("name", saved.Name))
	return nil
}

// pricingRequest turns an order's stored fields into an engine request.
func pricingRequest(o models.Order, explicit *decimal.Decimal) pricing.Request {
	sels := make([]pricing.Selection, 0, len(o.AddOns))
	for _, a := range o.AddOns {
		sels = append(sels, pricing.Selection{Name: a.Name, Quantity: a.Quantity})
	}
	return pricing.Request{
		ServiceType:   o.ServiceType,
		Weight:        decimal.NewFromFloat(o.Weight),
		AddOns:        sels,
		ExplicitPrice: explicit,
	}
}

func setAddOn(addOns datatypes.JSONSlice[models.AddOn], name string, qty int) datatypes.JSONSlice[models.AddOn] {
	for i := range addOns {
		if addOns[i].Name == name {
			addOns[i].Quantity = qty
			return addOns
		}
	}
	return append(addOns, models.AddOn{Name: name, Quantity: qty})
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
