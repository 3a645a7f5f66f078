package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kendall-kelly/laundry-shop-api/models"
	"github.com/kendall-kelly/laundry-shop-api/store"
	"github.com/shopspring/decimal"
)

// Report kinds accepted by ReportService.Report.
const (
	ReportDaily   = "daily"
	ReportWeekly  = "weekly"
	ReportMonthly = "monthly"
	ReportCustom  = "custom"
)

// maxReportDays bounds the daily series of a single report.
const maxReportDays = 366

// DailySales is one day of the report series.
type DailySales struct {
	Date   string       `json:"date"`
	Sales  models.Money `json:"sales"`
	Orders int          `json:"orders"`
}

// Report aggregates the orders created in a date range. Cancelled orders are
// counted but never contribute to sales.
type Report struct {
	Kind            string         `json:"kind,omitempty"`
	StartDate       string         `json:"start_date,omitempty"`
	EndDate         string         `json:"end_date,omitempty"`
	TotalSales      models.Money   `json:"total_sales"`
	TotalOrders     int            `json:"total_orders"`
	CompletedOrders int            `json:"completed_orders"`
	PaidOrders      int            `json:"paid_orders"`
	UnpaidOrders    int            `json:"unpaid_orders"`
	PendingOrders   int            `json:"pending_orders"`
	ActiveOrders    int            `json:"active_orders"`
	CancelledOrders int            `json:"cancelled_orders"`
	StatusCounts    map[string]int `json:"status_counts"`
	Daily           []DailySales   `json:"daily"`
	Orders          []models.Order `json:"orders,omitempty"`
}

// DashboardOrder is an active order with its progress percentage.
type DashboardOrder struct {
	models.Order
	Progress int `json:"progress"`
}

// Dashboard is the front-counter overview.
type Dashboard struct {
	ActiveOrders     int              `json:"active_orders"`
	UnpaidOrders     int              `json:"unpaid_orders"`
	InProgressOrders int              `json:"in_progress_orders"`
	ReadyOrders      int              `json:"ready_orders"`
	CompletedOrders  int              `json:"completed_orders"`
	Orders           []DashboardOrder `json:"orders"`
}

// MarshalJSON keeps the embedded order's own encoding and adds progress.
func (d DashboardOrder) MarshalJSON() ([]byte, error) {
	return marshalWith(d.Order, "progress", d.Progress)
}

// ReportService computes sales summaries and the dashboard. Orders are
// bucketed by their creation date in loc.
type ReportService struct {
	orders store.OrderStore
	loc    *time.Location
	opts   options
}

// NewReportService creates a report service. nil loc means UTC.
func NewReportService(orders store.OrderStore, loc *time.Location, opts ...Option) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{orders: orders, loc: loc, opts: buildOptions(opts)}
}

// Today summarises the orders created today.
func (s *ReportService) Today(ctx context.Context) (*Report, error) {
	today := s.opts.now().In(s.loc).Format(dateLayout)
	r, err := s.Summary(ctx, today, today)
	if err != nil {
		return nil, err
	}
	r.Kind = ReportDaily
	r.Orders = nil
	return r, nil
}

// Report resolves a named range relative to today and summarises it. weekly
// is the last seven days, monthly runs from the first of the month, custom
// needs both dates.
func (s *ReportService) Report(ctx context.Context, kind, from, to string) (*Report, error) {
	today := s.opts.now().In(s.loc)
	day := func(t time.Time) string { return t.Format(dateLayout) }

	switch kind {
	case ReportDaily:
		from, to = day(today), day(today)
	case ReportWeekly:
		from, to = day(today.AddDate(0, 0, -6)), day(today)
	case ReportMonthly:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc)
		from, to = day(first), day(today)
	case "", ReportCustom:
		kind = ReportCustom
		if from == "" || to == "" {
			return nil, &ValidationError{Field: "start_date", Message: "custom reports need start_date and end_date"}
		}
	default:
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown report type %q", kind)}
	}

	r, err := s.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	r.Kind = kind
	return r, nil
}

// Summary aggregates the orders created between from and to inclusive.
// Empty bounds are open; with no bounds at all the series spans the
// first to the last order.
func (s *ReportService) Summary(ctx context.Context, from, to string) (*Report, error) {
	from, to, err := dateBounds(from, to)
	if err != nil {
		return nil, err
	}

	all, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, storeErr("summarise orders", err)
	}

	r := &Report{
		StartDate:    from,
		EndDate:      to,
		StatusCounts: make(map[string]int, len(models.OrderStatuses)),
		Orders:       make([]models.Order, 0),
	}
	for _, st := range models.OrderStatuses {
		r.StatusCounts[string(st)] = 0
	}

	total := decimal.Zero
	byDay := map[string]*DailySales{}
	first, last := from, to
	for _, o := range all {
		d := o.CreatedAt.In(s.loc).Format(dateLayout)
		if (from != "" && d < from) || (to != "" && d > to) {
			continue
		}
		if first == "" || d < first {
			first = d
		}
		if last == "" || d > last {
			last = d
		}

		r.Orders = append(r.Orders, o)
		r.TotalOrders++
		r.StatusCounts[string(o.Status)]++
		switch o.Status {
		case models.StatusCompleted:
			r.CompletedOrders++
		case models.StatusPending:
			r.PendingOrders++
		case models.StatusCancelled:
			r.CancelledOrders++
		}
		if o.Status.IsActive() {
			r.ActiveOrders++
		}
		if o.PaymentStatus == models.PaymentPaid {
			r.PaidOrders++
		} else {
			r.UnpaidOrders++
		}

		bucket := byDay[d]
		if bucket == nil {
			bucket = &DailySales{Date: d}
			byDay[d] = bucket
		}
		bucket.Orders++
		if o.Status != models.StatusCancelled {
			total = total.Add(o.Price.Decimal)
			bucket.Sales = models.NewMoney(bucket.Sales.Add(o.Price.Decimal))
		}
	}
	r.TotalSales = models.NewMoney(total)

	series, err := s.series(first, last, byDay, from != "" && to != "")
	if err != nil {
		return nil, err
	}
	r.Daily = series
	return r, nil
}

// series lists every day from first to last, empty days included.
// Only caller-chosen ranges are bounded.
func (s *ReportService) series(first, last string, byDay map[string]*DailySales, bounded bool) ([]DailySales, error) {
	out := make([]DailySales, 0)
	if first == "" || last == "" {
		return out, nil
	}
	start, _ := time.Parse(dateLayout, first)
	end, _ := time.Parse(dateLayout, last)
	if days := int(end.Sub(start).Hours()/24) + 1; bounded && days > maxReportDays {
		return nil, &ValidationError{Field: "end_date", Message: fmt.Sprintf("range covers %d days, at most %d allowed", days, maxReportDays)}
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		if b, ok := byDay[key]; ok {
			out = append(out, *b)
			continue
		}
		out = append(out, DailySales{Date: key, Sales: models.NewMoney(decimal.Zero)})
	}
	return out, nil
}

// Dashboard counts the orders by stage and lists the active ones.
func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	all, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, storeErr("dashboard", err)
	}

	d := &Dashboard{Orders: make([]DashboardOrder, 0)}
	for _, o := range all {
		if o.PaymentStatus != models.PaymentPaid {
			d.UnpaidOrders++
		}
		if o.Status.InProgress() {
			d.InProgressOrders++
		}
		switch o.Status {
		case models.StatusFolded:
			d.ReadyOrders++
		case models.StatusCompleted, models.StatusClaimed:
			d.CompletedOrders++
		}
		if o.Status.IsActive() {
			d.ActiveOrders++
			d.Orders = append(d.Orders, DashboardOrder{Order: o, Progress: o.Status.Progress()})
		}
	}
	return d, nil
}

// marshalWith encodes v and adds one extra top-level field.
func marshalWith(v any, key string, value any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	extra, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	fields[key] = extra
	return json.Marshal(fields)
}
