package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold applies when a product has no explicit threshold.
const DefaultLowStockThreshold = 5

// Product a sellable catalog item
type Product struct {
	ID                int64           `json:"id,string" form:"id"`
	Name              string          `gorm:"size:200;index" json:"name"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Mrp               decimal.Decimal `gorm:"type:decimal(12,2)" json:"mrp"`
	Discount          float64         `json:"discount"` // percent, informational only
	Tag               string          `gorm:"size:64" json:"tag"`
	Stock             int             `gorm:"index" json:"stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Description       string          `gorm:"type:text" json:"description"`
	Category          string          `gorm:"size:100;index" json:"category"`
	Image             string          `gorm:"size:1024" json:"image"` // image reference returned by the image store
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// IsLowStock reports whether stock is at or below the product threshold.
func (p *Product) IsLowStock() bool {
	threshold := p.LowStockThreshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return p.Stock <= threshold
}
