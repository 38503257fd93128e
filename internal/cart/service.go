package cart

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

// Merge skip reasons
const (
	ReasonProductNotFound = "Product not found"
	ReasonOutOfStock      = "Out of stock"
	ReasonCappedByStock   = "Capped by stock"
)

// ProductLoader is the part of the catalog the cart needs.
type ProductLoader interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
}

// Line is a cart line resolved against the current product record.
type Line struct {
	ID        int64           `json:"id,string"`
	ProductID int64           `json:"product_id,string"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Mrp       decimal.Decimal `json:"mrp"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// View the cart as returned to the customer
type View struct {
	Items []Line          `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Change is the result of a quantity mutation. Message is set when the
// stored quantity is lower than requested.
type Change struct {
	View
	Quantity int    `json:"quantity"`
	Message  string `json:"message,omitempty"`
}

// GuestLine one line of a cart collected before login
type GuestLine struct {
	ProductID int64 `json:"product_id,string" validate:"required"`
	Quantity  int   `json:"quantity"`
}

// GuestCart anonymous cart submitted at login
type GuestCart struct {
	Items []GuestLine `json:"items" validate:"dive"`
}

// MergeNote disposition of one guest line that was not merged in full
type MergeNote struct {
	ProductID int64  `json:"product_id,string"`
	Requested int    `json:"requested"`
	Added     int    `json:"added"`
	Reason    string `json:"reason"`
}

// MergeResult outcome of a guest cart merge. Every input line is counted
// in Merged or listed in Skipped; Capped annotates merged lines that were cut.
type MergeResult struct {
	Items   []Line      `json:"items"`
	Merged  int         `json:"merged"`
	Skipped []MergeNote `json:"skipped"`
	Capped  []MergeNote `json:"capped"`
}

// Service is the cart manager.
type Service struct {
	repo     Repository
	products ProductLoader
}

func NewService(repo Repository, products ProductLoader) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the customer's cart, empty when none exists. Lines whose
// product was removed are left out.
func (s *Service) Get(ctx context.Context, accountID int64) (*View, error) {
	c, err := s.repo.Find(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &View{Items: []Line{}, Total: decimal.Zero}, nil
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query cart")
	}
	return s.view(ctx, c.ID)
}

func (s *Service) view(ctx context.Context, cartID int64) (*View, error) {
	items, err := s.repo.Items(ctx, cartID)
	if err != nil {
		return nil, domain.Internal(err, "Failed to query cart")
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	v := &View{Items: make([]Line, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		line := Line{
			ID:        it.ID,
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Category:  p.Category,
			Price:     p.Price,
			Mrp:       p.Mrp,
			Stock:     p.Stock,
			Quantity:  it.Quantity,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
		v.Items = append(v.Items, line)
		v.Count += it.Quantity
		v.Total = v.Total.Add(line.LineTotal)
	}
	return v, nil
}

// put adds n units to the product line, creating the line if needed, and
// caps the line at limit. It returns the quantity before and after.
func (s *Service) put(ctx context.Context, cartID int64, existing *domain.CartItem, productID int64, n, limit int) (int, int, error) {
	for attempt := 0; ; attempt++ {
		current := 0
		if existing != nil {
			current = existing.Quantity
		}
		stored := current + n
		if stored > limit {
			stored = limit
		}
		if existing != nil {
			return current, stored, s.repo.SetQuantity(ctx, existing.ID, stored)
		}
		err := s.repo.CreateItem(ctx, &domain.CartItem{
			ID:        common.UUIDint64(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  stored,
		})
		if err == nil || attempt > 0 {
			return current, stored, err
		}
		// a concurrent add created the line first
		found, ferr := s.findItem(ctx, cartID, productID)
		if ferr != nil || found == nil {
			return current, stored, err
		}
		existing = found
	}
}

func (s *Service) findItem(ctx context.Context, cartID, productID int64) (*domain.CartItem, error) {
	it, err := s.repo.GetItem(ctx, cartID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return it, err
}

func cappedMessage(p *domain.Product, stored int) string {
	return fmt.Sprintf("Only %d units of %s are available, cart quantity set to %d", p.Stock, p.Name, stored)
}

// Add puts quantity units of the product into the cart, capped at stock.
func (s *Service) Add(ctx context.Context, accountID, productID int64, quantity int) (*Change, error) {
	if quantity < 1 {
		quantity = 1
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock <= 0 {
		return nil, domain.OutOfStock("%s is out of stock", p.Name)
	}
	c, err := s.repo.Ensure(ctx, accountID)
	if err != nil {
		return nil, domain.Internal(err, "Failed to create cart")
	}
	existing, err := s.findItem(ctx, c.ID, productID)
	if err != nil {
		return nil, domain.Internal(err, "Failed to query cart")
	}

	current, stored, err := s.put(ctx, c.ID, existing, productID, quantity, p.Stock)
	if err != nil {
		return nil, domain.Internal(err, "Failed to update cart")
	}
	wanted := current + quantity

	v, err := s.view(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	res := &Change{View: *v, Quantity: stored}
	if stored < wanted {
		res.Message = cappedMessage(p, stored)
	}
	zap.L().Debug("cart add",
		zap.String("namespace", "cart"),
		zap.Int64("account", accountID),
		zap.Int64("product", productID),
		zap.Int("quantity", stored))
	return res, nil
}

// UpdateQuantity sets the quantity of a product line, removing it when
// quantity <= 0.
func (s *Service) UpdateQuantity(ctx context.Context, accountID, productID int64, quantity int) (*Change, error) {
	c, err := s.repo.Find(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Cart not found")
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query cart")
	}
	existing, err := s.findItem(ctx, c.ID, productID)
	if err != nil {
		return nil, domain.Internal(err, "Failed to query cart")
	}
	if existing == nil {
		return nil, domain.NotFound("Item not in cart")
	}

	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, c.ID, existing.ID); err != nil {
			return nil, domain.Internal(err, "Failed to update cart")
		}
		v, err := s.view(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		return &Change{View: *v}, nil
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock <= 0 {
		return nil, domain.OutOfStock("%s is out of stock", p.Name)
	}
	stored := quantity
	if stored > p.Stock {
		stored = p.Stock
	}
	if err := s.repo.SetQuantity(ctx, existing.ID, stored); err != nil {
		return nil, domain.Internal(err, "Failed to update cart")
	}
	v, err := s.view(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	res := &Change{View: *v, Quantity: stored}
	if stored < quantity {
		res.Message = cappedMessage(p, stored)
	}
	return res, nil
}

// Remove deletes a line by id. A line that does not exist is ignored.
func (s *Service) Remove(ctx context.Context, accountID, lineID int64) (*View, error) {
	c, err := s.repo.Find(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("Cart not found")
	} else if err != nil {
		return nil, domain.Internal(err, "Failed to query cart")
	}
	if err := s.repo.DeleteItem(ctx, c.ID, lineID); err != nil {
		return nil, domain.Internal(err, "Failed to update cart")
	}
	return s.view(ctx, c.ID)
}

// Merge folds a guest cart into the customer's cart line by line.
func (s *Service) Merge(ctx context.Context, accountID int64, guest GuestCart) (*MergeResult, error) {
	res := &MergeResult{Skipped: []MergeNote{}, Capped: []MergeNote{}}
	c, err := s.repo.Ensure(ctx, accountID)
	if err != nil {
		return nil, domain.Internal(err, "Failed to create cart")
	}

	for _, gl := range guest.Items {
		requested := gl.Quantity
		if requested < 1 {
			requested = 1
		}
		note := MergeNote{ProductID: gl.ProductID, Requested: requested}

		p, err := s.products.Get(ctx, gl.ProductID)
		if domain.IsKind(err, domain.KindNotFound) {
			note.Reason = ReasonProductNotFound
			res.Skipped = append(res.Skipped, note)
			continue
		} else if err != nil {
			return nil, err
		}
		if p.Stock <= 0 {
			note.Reason = ReasonOutOfStock
			res.Skipped = append(res.Skipped, note)
			continue
		}

		existing, err := s.findItem(ctx, c.ID, p.ID)
		if err != nil {
			return nil, domain.Internal(err, "Failed to query cart")
		}
		current, target, err := s.put(ctx, c.ID, existing, p.ID, requested, p.Stock)
		if err != nil {
			return nil, domain.Internal(err, "Failed to update cart")
		}
		note.Added = target - current
		if note.Added <= 0 {
			note.Added = 0
			note.Reason = ReasonCappedByStock
			res.Skipped = append(res.Skipped, note)
			continue
		}
		res.Merged++
		if note.Added < requested {
			note.Reason = ReasonCappedByStock
			res.Capped = append(res.Capped, note)
		}
	}

	v, err := s.view(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	res.Items = v.Items
	zap.L().Info("guest cart merged",
		zap.String("namespace", "cart"),
		zap.Int64("account", accountID),
		zap.Int("merged", res.Merged),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}
