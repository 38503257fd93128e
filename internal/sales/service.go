package sales

import (
	"context"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

const dateLayout = "2006-01-02"

// ProductSales aggregate of one product over the report window
type ProductSales struct {
	ProductID int64           `json:"product_id,string"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
	LastSold  time.Time       `json:"last_sold"`
}

// Report sales summary
type Report struct {
	Status            string          `json:"status"`
	From              *time.Time      `json:"from,omitempty"`
	To                *time.Time      `json:"to,omitempty"`
	Category          string          `json:"category,omitempty"`
	Revenue           decimal.Decimal `json:"revenue"`
	Orders            int             `json:"orders"`
	Items             int             `json:"items"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	MedianOrderValue  decimal.Decimal `json:"median_order_value"`
	TopProducts       []ProductSales  `json:"top_products"`
}

// Row one exported sales line
type Row struct {
	OrderID  int64  `csv:"-" json:"order_id,string"`
	Product  string `csv:"product" json:"product"`
	Quantity int    `csv:"quantity" json:"quantity"`
	Total    string `csv:"total" json:"total"`
	Date     string `csv:"date" json:"date"`
}

// Service is read-only over orders.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// orders loads the orders in the filter window with only the lines that
// match the category filter. Orders left without lines are dropped.
func (s *Service) orders(ctx context.Context, f Filter) ([]domain.Order, error) {
	db := s.db.WithContext(ctx).Model(&domain.Order{})
	if f.Status != "" && f.Status != StatusAll {
		db = db.Where("status IN ?", domain.StatusAliases(domain.OrderStatus(f.Status)))
	}
	if !f.From.IsZero() {
		db = db.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		db = db.Where("created_at <= ?", f.To)
	}
	if f.Category != "" {
		db = db.Where("id IN (?)", s.db.Model(&domain.OrderItem{}).Select("order_id").Where("category = ?", f.Category))
	}
	var rows []domain.Order
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		if f.Category != "" {
			tx = tx.Where("category = ?", f.Category)
		}
		return tx.Order("product_name ASC")
	}).Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, domain.Internal(err, "Failed to query sales")
	}
	return rows, nil
}

// orderValue is the order total, or the sum of the matching lines when a
// category filter applies.
func orderValue(o domain.Order, f Filter) decimal.Decimal {
	if f.Category == "" {
		return o.Total
	}
	v := decimal.Zero
	for _, it := range o.Items {
		v = v.Add(it.LineTotal)
	}
	return v
}

// Report aggregates revenue, counts and the top products by quantity.
func (s *Service) Report(ctx context.Context, f Filter) (*Report, error) {
	orders, err := s.orders(ctx, f)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Status:            f.Status,
		Category:          f.Category,
		Revenue:           decimal.Zero,
		AverageOrderValue: decimal.Zero,
		MedianOrderValue:  decimal.Zero,
		TopProducts:       []ProductSales{},
	}
	if !f.From.IsZero() {
		r.From = &f.From
	}
	if !f.To.IsZero() {
		r.To = &f.To
	}

	values := make(stats.Float64Data, 0, len(orders))
	for _, o := range orders {
		v := orderValue(o, f)
		r.Revenue = r.Revenue.Add(v)
		r.Orders++
		r.Items += o.ItemCount()
		values = append(values, v.InexactFloat64())
	}
	if r.Orders > 0 {
		r.AverageOrderValue = r.Revenue.Div(decimal.NewFromInt(int64(r.Orders))).Round(2)
		if median, err := stats.Median(values); err == nil {
			r.MedianOrderValue = decimal.NewFromFloat(median).Round(2)
		}
	}
	r.Revenue = r.Revenue.Round(2)

	top := aggregate(orders)
	n := f.TopN
	if n <= 0 {
		n = defaultTopN
	}
	if len(top) > n {
		top = top[:n]
	}
	r.TopProducts = top
	return r, nil
}

// aggregate sums lines per product, ordered by quantity then revenue.
func aggregate(orders []domain.Order) []ProductSales {
	byProduct := map[int64]*ProductSales{}
	for _, o := range orders {
		for _, it := range o.Items {
			ps, ok := byProduct[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, Name: it.ProductName, Category: it.Category, Revenue: decimal.Zero}
				byProduct[it.ProductID] = ps
			}
			ps.Quantity += it.Quantity
			ps.Revenue = ps.Revenue.Add(it.LineTotal)
			if o.CreatedAt.After(ps.LastSold) {
				ps.LastSold = o.CreatedAt
			}
		}
	}
	out := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ProductRows is the per-product export: quantity and revenue summed over
// the window, dated by the last sale.
func (s *Service) ProductRows(ctx context.Context, f Filter) ([]Row, error) {
	orders, err := s.orders(ctx, f)
	if err != nil {
		return nil, err
	}
	agg := aggregate(orders)
	rows := make([]Row, 0, len(agg))
	for _, ps := range agg {
		rows = append(rows, Row{
			Product:  ps.Name,
			Quantity: ps.Quantity,
			Total:    ps.Revenue.StringFixed(2),
			Date:     ps.LastSold.Format(dateLayout),
		})
	}
	return rows, nil
}

// Rows is the flat sales history, one row per order line.
func (s *Service) Rows(ctx context.Context, f Filter) ([]Row, error) {
	orders, err := s.orders(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(orders))
	for _, o := range orders {
		for _, it := range o.Items {
			rows = append(rows, Row{
				OrderID:  o.ID,
				Product:  it.ProductName,
				Quantity: it.Quantity,
				Total:    it.LineTotal.StringFixed(2),
				Date:     o.CreatedAt.Format(dateLayout),
			})
		}
	}
	return rows, nil
}
