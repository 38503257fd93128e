package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/account"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/dbtest"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

type busRecorder struct {
	mu     sync.Mutex
	events map[string][]domain.OrderEvent
}

func (b *busRecorder) Publish(topic string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.events == nil {
		b.events = map[string][]domain.OrderEvent{}
	}
	for _, a := range args {
		if ev, ok := a.(domain.OrderEvent); ok {
			b.events[topic] = append(b.events[topic], ev)
		}
	}
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	bus      *busRecorder
	customer *domain.Account
	staff    *domain.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	accounts := account.NewService(account.NewGormRepository(db), nil)
	bus := &busRecorder{}
	f := &fixture{db: db, svc: NewService(db, accounts, bus), bus: bus}
	f.customer = f.addAccount(t, "Asha", domain.RoleCustomer)
	f.staff = f.addAccount(t, "Ravi", domain.RoleStaff)
	return f
}

func (f *fixture) addAccount(t *testing.T, name string, role domain.Role) *domain.Account {
	a := &domain.Account{
		ID:      common.UUIDint64(),
		Name:    name,
		Email:   name + "@shop.test",
		Role:    role,
		Status:  common.ENABLED,
		Address: domain.Address{City: "Pune"},
	}
	require.NoError(t, f.db.Create(a).Error)
	return a
}

func (f *fixture) product(t *testing.T, name string, price string, stock int) *domain.Product {
	p := &domain.Product{
		ID:       common.UUIDint64(),
		Name:     name,
		Category: "Grocery",
		Price:    decimal.RequireFromString(price),
		Mrp:      decimal.RequireFromString(price),
		Stock:    stock,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) stock(t *testing.T, id int64) int {
	var p domain.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.Stock
}

func TestPlaceDecrementsStockAndFreezesPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Almonds", "199.50", 5)

	o, err := f.svc.Place(ctx, f.customer, []LineInput{{ProductID: p.ID, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.True(t, o.Total.Equal(decimal.RequireFromString("399")))

	require.NoError(t, f.db.Model(&domain.Product{}).Where("id = ?", p.ID).Update("price", "250").Error)

	got, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("399")))
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("199.5")))
	assert.Equal(t, "Almonds", got.Items[0].ProductName)
	assert.Equal(t, "Pune", got.Shipping.City)

	require.Len(t, got.History, 1)
	h := got.History[0]
	assert.Equal(t, domain.OrderPending, h.Status)
	assert.False(t, h.CreatedAt.IsZero())
	assert.Equal(t, domain.AccountActor{ID: f.customer.ID, Name: "Asha"}, h.Actor())

	require.Len(t, f.bus.events[domain.TopicOrderPlaced], 1)
}

func TestPlaceIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Apples", "50", 10)
	b := f.product(t, "Bananas", "30", 1)

	_, err := f.svc.Place(ctx, f.customer, []LineInput{
		{ProductID: a.ID, Quantity: 4},
		{ProductID: b.ID, Quantity: 2},
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInsufficientStock))
	assert.Contains(t, domain.MessageOf(err), "Bananas")
	assert.Equal(t, 10, f.stock(t, a.ID))
	assert.Equal(t, 1, f.stock(t, b.ID))

	_, err = f.svc.Place(ctx, f.customer, []LineInput{{ProductID: a.ID, Quantity: 1}, {ProductID: 5555, Quantity: 1}})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Equal(t, 10, f.stock(t, a.ID))

	var n int64
	f.db.Model(&domain.Order{}).Count(&n)
	assert.Zero(t, n)
}

func TestPlaceSumsDuplicateLines(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Milk", "30", 3)
	_, err := f.svc.Place(context.Background(), f.customer, []LineInput{
		{ProductID: p.ID, Quantity: 2},
		{ProductID: p.ID, Quantity: 2},
	})
	assert.True(t, domain.IsKind(err, domain.KindInsufficientStock))
	assert.Equal(t, 3, f.stock(t, p.ID))
}

func TestPlaceFromCartClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Place(ctx, f.customer, nil)
	assert.Equal(t, "Cart is empty", domain.MessageOf(err))

	p := f.product(t, "Bread", "40", 6)
	require.NoError(t, f.db.Create(&domain.Cart{
		ID:        common.UUIDint64(),
		AccountID: f.customer.ID,
		Items:     []domain.CartItem{{ID: common.UUIDint64(), ProductID: p.ID, Quantity: 2}},
	}).Error)

	o, err := f.svc.Place(ctx, f.customer, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, o.ItemCount())
	assert.Equal(t, 4, f.stock(t, p.ID))

	var items int64
	f.db.Model(&domain.CartItem{}).Count(&items)
	assert.Zero(t, items)
	var carts int64
	f.db.Model(&domain.Cart{}).Count(&carts)
	assert.EqualValues(t, 1, carts)
}

func TestConcurrentPlacementsNeverOversell(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Limited Edition", "999", 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Place(context.Background(), f.customer, []LineInput{{ProductID: p.ID, Quantity: 1}})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if domain.IsKind(err, domain.KindInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, 0, f.stock(t, p.ID))
}

func TestStatusUpdatesAppendHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Coffee", "300", 5)
	o, err := f.svc.Place(ctx, f.customer, []LineInput{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	o, err = f.svc.UpdateStatus(ctx, o.ID, domain.OrderProcessing, domain.ActorOf(f.staff), "")
	require.NoError(t, err)
	require.Len(t, o.History, 2)

	o, err = f.svc.Process(ctx, o.ID, domain.OrderCompleted, domain.SystemActor{Label: "administrator"}, "packed")
	require.NoError(t, err)
	require.Len(t, o.History, 3)
	assert.Equal(t, domain.OrderCompleted, o.Status)
	assert.Equal(t, domain.OrderPending, o.History[0].Status)
	assert.Equal(t, domain.OrderProcessing, o.History[1].Status)
	assert.Equal(t, domain.ActorAccount, o.History[1].ActorKind)
	assert.Equal(t, domain.SystemActor{Label: "administrator"}, o.History[2].Actor())

	_, err = f.svc.UpdateStatus(ctx, o.ID, domain.OrderCancelled, domain.ActorOf(f.staff), "")
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	got, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, 3)

	_, err = f.svc.UpdateStatus(ctx, 1, domain.OrderCancelled, domain.ActorOf(f.staff), "")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	_, err = f.svc.UpdateStatus(ctx, o.ID, "lost", domain.ActorOf(f.staff), "")
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	assert.Len(t, f.bus.events[domain.TopicOrderStatus], 2)
	assert.Equal(t, domain.OrderProcessing, f.bus.events[domain.TopicOrderStatus][1].Previous)
}

func TestProcessRejectsDeletedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Tea", "120", 5)
	o, err := f.svc.Place(ctx, f.customer, []LineInput{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&domain.Product{}, p.ID).Error)

	_, err = f.svc.Process(ctx, o.ID, domain.OrderCompleted, domain.ActorOf(f.staff), "")
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	o, err = f.svc.Process(ctx, o.ID, domain.OrderCancelled, domain.ActorOf(f.staff), "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, o.Status)
}

func TestProcessCompletesSoldOutProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Jam", "90", 2)
	o, err := f.svc.Place(ctx, f.customer, []LineInput{{ProductID: p.ID, Quantity: 2}})
	require.NoError(t, err)
	require.Equal(t, 0, f.stock(t, p.ID))

	o, err = f.svc.Process(ctx, o.ID, domain.OrderCompleted, domain.ActorOf(f.staff), "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, o.Status)
	assert.Equal(t, 0, f.stock(t, p.ID))
}

func TestLegacyStatusesReadCanonical(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	for i, st := range []string{"placed", "confirmed", "shipped", "delivered"} {
		require.NoError(t, f.db.Create(&domain.Order{
			ID:        int64(100 + i),
			AccountID: f.customer.ID,
			Total:     decimal.NewFromInt(10),
			Status:    domain.OrderStatus(st),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}).Error)
	}

	rows, total, err := f.svc.ListForCustomer(ctx, f.customer.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	for _, o := range rows {
		assert.True(t, o.Status == domain.OrderPending || o.Status == domain.OrderCompleted, o.Status)
	}

	pending, total, err := f.svc.ListAll(ctx, Filter{Status: domain.OrderPending})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Asha", pending[0].CustomerName)

	// legacy shipped moves on like completed: terminal
	_, err = f.svc.UpdateStatus(ctx, 102, domain.OrderCancelled, domain.ActorOf(f.staff), "")
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	o, err := f.svc.UpdateStatus(ctx, 100, domain.OrderProcessing, domain.ActorOf(f.staff), "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, o.Status)

	stats, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.OrdersByStatus[domain.OrderPending])
	assert.EqualValues(t, 1, stats.OrdersByStatus[domain.OrderProcessing])
	assert.EqualValues(t, 2, stats.CompletedOrders)
	assert.True(t, stats.Revenue.Equal(decimal.NewFromInt(20)))
	assert.EqualValues(t, 1, stats.TotalCustomers)
}

func TestRecent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Jam", "80", 10)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Place(ctx, f.customer, []LineInput{{ProductID: p.ID, Quantity: 1}})
		require.NoError(t, err)
	}
	rows, err := f.svc.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "Asha@shop.test", rows[0].CustomerEmail)
}
