package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/config"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/account"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/auth"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/cart"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/catalog"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/order"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/sales"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/storage"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/wishlist"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// ServiceProvider exposes the domain services
type ServiceProvider interface {
	Accounts() *account.Service
	Tokens() *auth.TokenManager
	Gateway() *auth.Gateway
	Catalog() *catalog.Service
	Carts() *cart.Service
	Wishlists() *wishlist.Service
	Orders() *order.Service
	Sales() *sales.Service
}

// StorageProvider provides the product image store
type StorageProvider interface {
	Images() storage.ImageStore
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	ServiceProvider
	StorageProvider

	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
