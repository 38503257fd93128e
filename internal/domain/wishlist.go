package domain

import "time"

type Wishlist struct {
	ID        int64          `json:"id,string"`
	AccountID int64          `gorm:"uniqueIndex" json:"account_id,string"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName Specify table name
func (Wishlist) TableName() string {
	return "wishlist"
}

type WishlistItem struct {
	ID         int64     `json:"id,string"`
	WishlistID int64     `gorm:"uniqueIndex:idx_wishlist_product" json:"wishlist_id,string"`
	ProductID  int64     `gorm:"uniqueIndex:idx_wishlist_product" json:"product_id,string"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName Specify table name
func (WishlistItem) TableName() string {
	return "wishlist_item"
}
