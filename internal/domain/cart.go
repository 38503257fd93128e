package domain

import "time"

// Cart server side cart of one customer
type Cart struct {
	ID        int64      `json:"id,string"`
	AccountID int64      `gorm:"uniqueIndex" json:"account_id,string"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (Cart) TableName() string {
	return "cart"
}

// CartItem one product line, unique per cart and product
type CartItem struct {
	ID        int64     `json:"id,string"`
	CartID    int64     `gorm:"uniqueIndex:idx_cart_product" json:"cart_id,string"`
	ProductID int64     `gorm:"uniqueIndex:idx_cart_product" json:"product_id,string"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CartItem) TableName() string {
	return "cart_item"
}
