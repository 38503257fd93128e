package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/dbtest"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newInput(name, category, price string, stock int) ProductInput {
	return ProductInput{
		Name:     ptr(name),
		Category: ptr(category),
		Price:    dec(price),
		Stock:    ptr(stock),
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewGormRepository(dbtest.Open(t)))
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*ProductInput)
		msg    string
	}{
		{"mrp below price", func(in *ProductInput) { in.Mrp = dec("90") }, "MRP must be greater than or equal to price"},
		{"negative discount", func(in *ProductInput) { in.Discount = ptr(-1.0) }, "Discount must be between 0 and 100"},
		{"discount above 100", func(in *ProductInput) { in.Discount = ptr(100.5) }, "Discount must be between 0 and 100"},
		{"missing category", func(in *ProductInput) { in.Category = ptr(" ") }, "Category is required"},
		{"zero price", func(in *ProductInput) { in.Price = dec("0") }, "Price must be greater than 0"},
		{"negative stock", func(in *ProductInput) { in.Stock = ptr(-2) }, "Stock must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := newInput("Rice", "Grocery", "100", 10)
			tc.mutate(&in)
			_, err := svc.Create(ctx, in)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindValidation))
			assert.Equal(t, tc.msg, domain.MessageOf(err))
		})
	}

	in := newInput("Rice", "Grocery", "100", 10)
	in.Discount = ptr(100.0)
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, p.Mrp.Equal(p.Price))
	assert.Equal(t, domain.DefaultLowStockThreshold, p.LowStockThreshold)
}

func TestUpdateKeepsInvariants(t *testing.T) {
	svc := NewService(NewGormRepository(dbtest.Open(t)))
	ctx := context.Background()

	in := newInput("Soap", "Care", "40", 8)
	in.Mrp = dec("50")
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, ProductInput{Price: dec("60")})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(40)))

	updated, err := svc.Update(ctx, p.ID, ProductInput{Price: dec("45"), Stock: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, "Soap", updated.Name)

	_, err = svc.Update(ctx, 12345, ProductInput{})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

// racingRepo lets an order decrement commit between the read and the write
// of an update.
type racingRepo struct {
	*GormRepository
	db *gorm.DB
}

func (r racingRepo) Update(ctx context.Context, p *domain.Product, columns []string) error {
	err := r.db.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", p.ID, 2).
		UpdateColumn("stock", gorm.Expr("stock - ?", 2)).Error
	if err != nil {
		return err
	}
	return r.GormRepository.Update(ctx, p, columns)
}

func TestUpdateKeepsConcurrentStockChanges(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	p, err := NewService(NewGormRepository(db)).Create(ctx, newInput("Kettle", "Kitchen", "10", 5))
	require.NoError(t, err)

	svc := NewService(racingRepo{GormRepository: NewGormRepository(db), db: db})
	updated, err := svc.Update(ctx, p.ID, ProductInput{Price: dec("12"), Mrp: dec("12")})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(12)))

	var stock int
	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", p.ID).Pluck("stock", &stock).Error)
	assert.Equal(t, 3, stock)

	updated, err = svc.Update(ctx, p.ID, ProductInput{Stock: ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
}

func TestListLowStockAndCategories(t *testing.T) {
	svc := NewService(NewGormRepository(dbtest.Open(t)))
	ctx := context.Background()

	for _, in := range []ProductInput{
		newInput("Basmati Rice", "Grocery", "120", 2),
		newInput("Brown Rice", "Grocery", "90", 30),
		newInput("Shampoo", "Care", "150", 5),
		newInput("Comb", "Care", "20", 6),
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	rows, total, err := svc.List(ctx, Filter{Query: "rice"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = svc.List(ctx, Filter{Category: "Care", Sort: "price", Order: "asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Comb", rows[0].Name)

	low, err := svc.LowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Basmati Rice", low[0].Name)
	assert.Equal(t, "Shampoo", low[1].Name)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Care", "Grocery"}, cats)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestDeleteRemovesCartAndWishlistLines(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(NewGormRepository(db))
	ctx := context.Background()

	p, err := svc.Create(ctx, newInput("Tea", "Grocery", "10", 5))
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Cart{ID: 1, AccountID: 9,
		Items: []domain.CartItem{{ID: 1, ProductID: p.ID, Quantity: 1}}}).Error)
	require.NoError(t, db.Create(&domain.Wishlist{ID: 1, AccountID: 9,
		Items: []domain.WishlistItem{{ID: 1, ProductID: p.ID}}}).Error)

	require.NoError(t, svc.Delete(ctx, p.ID))

	var n int64
	db.Model(&domain.CartItem{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&domain.WishlistItem{}).Count(&n)
	assert.Zero(t, n)

	assert.True(t, domain.IsKind(svc.Delete(ctx, p.ID), domain.KindNotFound))
}
