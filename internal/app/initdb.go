package app

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/catalog"
)

// checkSuper creates or repairs the configured administrator account.
func (a *Application) checkSuper(ctx context.Context) error {
	admin, err := a.accounts.EnsureSuperuser(ctx, a.appConfig.Superuser)
	if err != nil {
		zap.L().Error("failed to ensure super admin", zap.Error(err))
		return err
	}
	zap.L().Info("super admin ready", zap.String("email", admin.Email))
	return nil
}

type demoProduct struct {
	name, category, tag string
	price, mrp          string
	discount            float64
	stock               int
}

var demoProducts = []demoProduct{
	{"Basmati Rice 5kg", "Grocery", "bestseller", "549.00", "620.00", 11, 40},
	{"Cold Pressed Groundnut Oil 1L", "Grocery", "", "245.00", "260.00", 5, 25},
	{"Stainless Steel Water Bottle", "Kitchen", "new", "399.00", "499.00", 20, 15},
	{"Cotton Bath Towel", "Home", "", "299.00", "299.00", 0, 4},
	{"LED Desk Lamp", "Electronics", "sale", "1299.00", "1799.00", 28, 8},
}

// checkProducts seeds a small demo catalog into an empty product table.
func (a *Application) checkProducts(ctx context.Context) {
	n, err := a.catalog.Count(ctx)
	if err != nil || n > 0 {
		return
	}
	for _, d := range demoProducts {
		name, category, tag := d.name, d.category, d.tag
		price, mrp := decimal.RequireFromString(d.price), decimal.RequireFromString(d.mrp)
		discount, stock := d.discount, d.stock
		desc := name + " (demo item)"
		_, err := a.catalog.Create(ctx, catalog.ProductInput{
			Name:        &name,
			Category:    &category,
			Tag:         &tag,
			Price:       &price,
			Mrp:         &mrp,
			Discount:    &discount,
			Stock:       &stock,
			Description: &desc,
		})
		if err != nil {
			zap.L().Error("failed to create demo product", zap.String("name", name), zap.Error(err))
			continue
		}
		zap.L().Info("initialized demo product", zap.String("name", name))
	}
}
