package order

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/cart"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

// LineInput a requested order line
type LineInput struct {
	ProductID int64 `json:"product_id,string" validate:"required"`
	Quantity  int   `json:"quantity" validate:"min=1"`
}

// AccountLoader resolves customers for notifications and listings.
type AccountLoader interface {
	Get(ctx context.Context, id int64) (*domain.Account, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.Account, error)
}

// Summary an order with its customer's contact details
type Summary struct {
	domain.Order
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// Filter narrows staff order listings
type Filter struct {
	Status   domain.OrderStatus
	Page     int
	PageSize int
}

// Service is the order workflow.
type Service struct {
	db        *gorm.DB
	accounts  AccountLoader
	publisher domain.Publisher
}

func NewService(db *gorm.DB, accounts AccountLoader, publisher domain.Publisher) *Service {
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &Service{db: db, accounts: accounts, publisher: publisher}
}

// cartLines reads the customer's cart as order lines.
func (s *Service) cartLines(ctx context.Context, accountID int64) ([]LineInput, error) {
	var items []domain.CartItem
	err := s.db.WithContext(ctx).
		Joins("JOIN cart ON cart.id = cart_item.cart_id").
		Where("cart.account_id = ?", accountID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	lines := make([]LineInput, 0, len(items))
	for _, it := range items {
		lines = append(lines, LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines, nil
}

// normalize merges duplicate products and orders lines by product id so
// concurrent placements touch rows in the same order.
func normalize(lines []LineInput) ([]LineInput, error) {
	qty := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, domain.Validation("Quantity must be at least 1")
		}
		qty[l.ProductID] += l.Quantity
	}
	out := make([]LineInput, 0, len(qty))
	for id, q := range qty {
		out = append(out, LineInput{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// Place creates an order for the customer. When lines is empty the
// customer's cart is ordered. Every line is validated before anything is
// written; stock is then decremented conditionally per line in the same
// transaction that creates the order and clears the cart.
func (s *Service) Place(ctx context.Context, customer *domain.Account, lines []LineInput) (*domain.Order, error) {
	if len(lines) == 0 {
		var err error
		if lines, err = s.cartLines(ctx, customer.ID); err != nil {
			return nil, domain.Internal(err, "Failed to query cart")
		}
	}
	if len(lines) == 0 {
		return nil, domain.Validation("Cart is empty")
	}
	lines, err := normalize(lines)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	var products []domain.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, domain.Internal(err, "Failed to query products")
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	o := &domain.Order{
		ID:        common.UUIDint64(),
		AccountID: customer.ID,
		Status:    domain.OrderPending,
		Shipping:  customer.Address,
		Total:     decimal.Zero,
	}
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, domain.NotFound("Product %d not found", l.ProductID)
		}
		if l.Quantity > p.Stock {
			return nil, domain.InsufficientStock("Insufficient stock for %s: %d available, %d requested", p.Name, p.Stock, l.Quantity)
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		o.Items = append(o.Items, domain.OrderItem{
			ID:          common.UUIDint64(),
			OrderID:     o.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,
			Image:       p.Image,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
			LineTotal:   lineTotal,
		})
		o.Total = o.Total.Add(lineTotal)
	}
	entry := domain.OrderStatusEntry{
		ID:      common.UUIDint64(),
		OrderID: o.ID,
		Status:  domain.OrderPending,
		Note:    "Order placed",
	}
	entry.Attribute(domain.ActorOf(customer))
	o.History = []domain.OrderStatusEntry{entry}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range o.Items {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumns(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", it.Quantity),
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return domain.Internal(res.Error, "Failed to update stock")
			}
			if res.RowsAffected == 0 {
				return domain.InsufficientStock("Insufficient stock for %s", it.ProductName)
			}
		}
		if err := tx.Create(o).Error; err != nil {
			return domain.Internal(err, "Failed to create order")
		}
		if err := cart.ClearTx(tx, customer.ID); err != nil {
			return domain.Internal(err, "Failed to clear cart")
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("order placement failed",
			zap.String("namespace", "order"),
			zap.Int64("account", customer.ID),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("order placed",
		zap.String("namespace", "order"),
		zap.Int64("id", o.ID),
		zap.Int64("account", customer.ID),
		zap.String("total", o.Total.StringFixed(2)))
	s.publisher.Publish(domain.TopicOrderPlaced, domain.OrderEvent{
		Order:    *o,
		Customer: *customer,
		Actor:    customer.Name,
	})
	return o, nil
}

func (s *Service) load(db *gorm.DB, id int64) (*domain.Order, error) {
	var o domain.Order
	err := db.Preload("Items").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Order not found")
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query order")
	}
	return &o, nil
}

// Get loads an order with lines and history.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.load(s.db.WithContext(ctx), id)
}

// UpdateStatus moves an order to next and appends a history entry.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus, actor domain.Actor, note string) (*domain.Order, error) {
	return s.transition(ctx, id, next, actor, note, nil)
}

// Process is the staff variant of UpdateStatus. Completing an order
// re-checks that every ordered product still exists in the catalog. Stock
// was already taken at placement, so it is not checked again.
func (s *Service) Process(ctx context.Context, id int64, next domain.OrderStatus, actor domain.Actor, note string) (*domain.Order, error) {
	return s.transition(ctx, id, next, actor, note, func(tx *gorm.DB, o *domain.Order) error {
		if next != domain.OrderCompleted {
			return nil
		}
		ids := make([]int64, 0, len(o.Items))
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
		var found []int64
		if err := tx.Model(&domain.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return domain.Internal(err, "Failed to query products")
		}
		exists := make(map[int64]bool, len(found))
		for _, pid := range found {
			exists[pid] = true
		}
		for _, it := range o.Items {
			if !exists[it.ProductID] {
				return domain.Conflict("%s is no longer available", it.ProductName)
			}
		}
		return nil
	})
}

func (s *Service) transition(ctx context.Context, id int64, next domain.OrderStatus, actor domain.Actor, note string,
	check func(tx *gorm.DB, o *domain.Order) error) (*domain.Order, error) {
	next = domain.CanonicalStatus(string(next))
	if !next.Valid() {
		return nil, domain.Validation("Invalid order status")
	}
	if actor == nil {
		return nil, domain.Validation("Actor is required")
	}

	var previous domain.OrderStatus
	var updated *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.load(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		previous = o.Status
		if !previous.CanTransition(next) {
			return domain.Conflict("Cannot change order status from %s to %s", previous, next)
		}
		if check != nil {
			if err := check(tx, o); err != nil {
				return err
			}
		}
		now := time.Now()
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status IN ?", id, domain.StatusAliases(previous)).
			Updates(map[string]interface{}{"status": next, "updated_at": now})
		if res.Error != nil {
			return domain.Internal(res.Error, "Failed to update order")
		}
		if res.RowsAffected == 0 {
			return domain.Conflict("Order was modified concurrently, retry")
		}
		entry := &domain.OrderStatusEntry{
			ID:        common.UUIDint64(),
			OrderID:   id,
			Status:    next,
			Note:      note,
			CreatedAt: now,
		}
		entry.Attribute(actor)
		if err := tx.Create(entry).Error; err != nil {
			return domain.Internal(err, "Failed to record status history")
		}
		updated, err = s.load(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order status changed",
		zap.String("namespace", "order"),
		zap.Int64("id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
		zap.String("actor", actor.DisplayName()))
	s.notifyStatus(ctx, updated, previous, actor)
	return updated, nil
}

func (s *Service) notifyStatus(ctx context.Context, o *domain.Order, previous domain.OrderStatus, actor domain.Actor) {
	customer, err := s.accounts.Get(ctx, o.AccountID)
	if err != nil {
		zap.L().Warn("order status notification skipped",
			zap.String("namespace", "order"),
			zap.Int64("id", o.ID),
			zap.Error(err))
		return
	}
	s.publisher.Publish(domain.TopicOrderStatus, domain.OrderEvent{
		Order:    *o,
		Customer: *customer,
		Previous: previous,
		Actor:    actor.DisplayName(),
	})
}

func paging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

// ListForCustomer returns the customer's own orders, newest first.
func (s *Service) ListForCustomer(ctx context.Context, accountID int64, page, pageSize int) ([]domain.Order, int64, error) {
	page, pageSize = paging(page, pageSize)
	db := s.db.WithContext(ctx).Model(&domain.Order{}).Where("account_id = ?", accountID)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, domain.Internal(err, "Failed to query orders")
	}
	var rows []domain.Order
	err := db.Preload("Items").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, domain.Internal(err, "Failed to query orders")
	}
	return rows, total, nil
}

// ListAll returns every order, optionally of one status, with customer
// name and email resolved.
func (s *Service) ListAll(ctx context.Context, f Filter) ([]Summary, int64, error) {
	page, pageSize := paging(f.Page, f.PageSize)
	db := s.db.WithContext(ctx).Model(&domain.Order{})
	if f.Status != "" {
		st := domain.CanonicalStatus(string(f.Status))
		if !st.Valid() {
			return nil, 0, domain.Validation("Invalid order status")
		}
		db = db.Where("status IN ?", domain.StatusAliases(st))
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, domain.Internal(err, "Failed to query orders")
	}
	var rows []domain.Order
	err := db.Preload("Items").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, domain.Internal(err, "Failed to query orders")
	}
	out, err := s.summarize(ctx, rows)
	return out, total, err
}

// Recent returns the latest orders for the staff dashboard.
func (s *Service) Recent(ctx context.Context, limit int) ([]Summary, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	var rows []domain.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, domain.Internal(err, "Failed to query orders")
	}
	return s.summarize(ctx, rows)
}

func (s *Service) summarize(ctx context.Context, rows []domain.Order) ([]Summary, error) {
	ids := make([]int64, 0, len(rows))
	for _, o := range rows {
		ids = append(ids, o.AccountID)
	}
	customers, err := s.accounts.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(rows))
	for _, o := range rows {
		c := customers[o.AccountID]
		out = append(out, Summary{
			Order:         o,
			CustomerName:  common.IfEmptyStr(c.Name, common.NA),
			CustomerEmail: c.Email,
		})
	}
	return out, nil
}
