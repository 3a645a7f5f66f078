package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/kendall-kelly/laundry-shop-api/store"
)

// ErrReceiptsDisabled is returned when no receipt archive is configured.
var ErrReceiptsDisabled = errors.New("receipt archive is not configured")

// Receipt is the archived JSON document for an order.
type Receipt struct {
	OrderID         string         `json:"order_id"`
	CustomerName    string         `json:"customer_name"`
	ServiceType     string         `json:"service_type"`
	Weight          float64        `json:"weight"`
	AddOns          []models.AddOn `json:"add_ons"`
	BaseCharge      *models.Money  `json:"base_charge,omitempty"`
	ExcessCharge    *models.Money  `json:"excess_charge,omitempty"`
	AddOnCharge     *models.Money  `json:"add_on_charge,omitempty"`
	Price           models.Money   `json:"price"`
	PriceOverridden bool           `json:"price_overridden"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status"`
	PaymentMethod   string         `json:"payment_method,omitempty"`
	PaidAmount      *models.Money  `json:"paid_amount,omitempty"`
	PaymentDate     *time.Time     `json:"payment_date,omitempty"`
	IssuedAt        time.Time      `json:"issued_at"`
}

// ArchivedReceipt is where a receipt was stored.
type ArchivedReceipt struct {
	Key     string  `json:"key"`
	URL     string  `json:"url"`
	Receipt Receipt `json:"receipt"`
}

// ReceiptService renders order receipts and archives them.
type ReceiptService struct {
	orders  store.OrderStore
	engine  *pricing.Engine
	archive ReceiptArchive
	opts    options
}

// NewReceiptService creates a receipt service. A nil archive disables it.
func NewReceiptService(orders store.OrderStore, engine *pricing.Engine, archive ReceiptArchive, opts ...Option) *ReceiptService {
	return &ReceiptService{orders: orders, engine: engine, archive: archive, opts: buildOptions(opts)}
}

// Issue renders the receipt of an order, archives it and returns a link.
func (s *ReceiptService) Issue(ctx context.Context, orderID string) (*ArchivedReceipt, error) {
	if s.archive == nil {
		return nil, ErrReceiptsDisabled
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, storeErr("issue receipt", err)
	}
	if order == nil {
		return nil, orderNotFound(orderID)
	}

	receipt := s.render(*order)
	body, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}

	key := fmt.Sprintf("receipts/%s/%d.json", order.ID, receipt.IssuedAt.Unix())
	if err := s.archive.PutObject(ctx, key, body, "application/json"); err != nil {
		return nil, err
	}
	url, err := s.archive.GetPresignedURL(ctx, key)
	if err != nil {
		return nil, err
	}

	s.opts.logger.Info("receipt archived", slog.String("order_id", order.ID), slog.String("key", key))
	return &ArchivedReceipt{Key: key, URL: url, Receipt: receipt}, nil
}

func (s *ReceiptService) render(o models.Order) Receipt {
	r := Receipt{
		OrderID:         o.ID,
		CustomerName:    o.CustomerName,
		ServiceType:     o.ServiceType,
		Weight:          o.Weight,
		AddOns:          append([]models.AddOn{}, o.AddOns...),
		Price:           o.Price,
		PriceOverridden: o.PriceOverridden,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   o.PaymentMethod,
		PaidAmount:      o.PaidAmount,
		PaymentDate:     o.PaymentDate,
		IssuedAt:        s.opts.now(),
	}
	if o.PriceOverridden {
		return r
	}
	// rates may have changed since the order was priced; then no breakdown
	b, err := s.engine.Compute(pricingRequest(o, nil))
	if err != nil || !b.Total.Equal(o.Price.Decimal) {
		return r
	}
	base, excess, addOns := models.NewMoney(b.Base), models.NewMoney(b.Excess), models.NewMoney(b.AddOns)
	r.BaseCharge, r.ExcessCharge, r.AddOnCharge = &base, &excess, &addOns
	return r
}
