package order

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

// Stats staff dashboard counters
type Stats struct {
	TotalOrders     int64                        `json:"total_orders"`
	OrdersByStatus  map[domain.OrderStatus]int64 `json:"orders_by_status"`
	Revenue         decimal.Decimal              `json:"revenue"`
	TotalProducts   int64                        `json:"total_products"`
	LowStockCount   int64                        `json:"low_stock_count"`
	TotalCustomers  int64                        `json:"total_customers"`
	PendingOrders   int64                        `json:"pending_orders"`
	CompletedOrders int64                        `json:"completed_orders"`
}

type statusCount struct {
	Status string
	Total  int64
}

// Dashboard gathers the staff dashboard counters concurrently.
func (s *Service) Dashboard(ctx context.Context) (*Stats, error) {
	st := &Stats{
		OrdersByStatus: map[domain.OrderStatus]int64{
			domain.OrderPending:    0,
			domain.OrderProcessing: 0,
			domain.OrderCompleted:  0,
			domain.OrderCancelled:  0,
		},
		Revenue: decimal.Zero,
	}
	g, gctx := errgroup.WithContext(ctx)

	var counts []statusCount
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&domain.Order{}).
			Select("status, COUNT(*) AS total").
			Group("status").
			Scan(&counts).Error
	})
	var revenue decimal.NullDecimal
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&domain.Order{}).
			Select("SUM(total)").
			Where("status IN ?", domain.StatusAliases(domain.OrderCompleted)).
			Row().Scan(&revenue)
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&domain.Product{}).Count(&st.TotalProducts).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&domain.Product{}).
			Where("stock <= CASE WHEN low_stock_threshold > 0 THEN low_stock_threshold ELSE ? END", domain.DefaultLowStockThreshold).
			Count(&st.LowStockCount).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&domain.Account{}).
			Where("role = ?", domain.RoleCustomer).
			Count(&st.TotalCustomers).Error
	})
	if err := g.Wait(); err != nil {
		return nil, domain.Internal(err, "Failed to load dashboard")
	}

	for _, c := range counts {
		st.OrdersByStatus[domain.CanonicalStatus(c.Status)] += c.Total
		st.TotalOrders += c.Total
	}
	st.PendingOrders = st.OrdersByStatus[domain.OrderPending]
	st.CompletedOrders = st.OrdersByStatus[domain.OrderCompleted]
	if revenue.Valid {
		st.Revenue = revenue.Decimal.Round(2)
	}
	return st, nil
}
