package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// legacy values that may still exist in old rows; never written
var legacyStatus = map[string]OrderStatus{
	"placed":    OrderPending,
	"confirmed": OrderPending,
	"shipped":   OrderCompleted,
	"delivered": OrderCompleted,
}

// CanonicalStatus maps stored status strings, including legacy values,
// onto the four statuses the system writes.
func CanonicalStatus(s string) OrderStatus {
	v := strings.ToLower(strings.TrimSpace(s))
	if st, ok := legacyStatus[v]; ok {
		return st
	}
	return OrderStatus(v)
}

// StatusAliases returns every stored value that reads back as status.
func StatusAliases(status OrderStatus) []string {
	values := []string{string(status)}
	for legacy, canonical := range legacyStatus {
		if canonical == status {
			values = append(values, legacy)
		}
	}
	return values
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCompleted, OrderCancelled},
	OrderProcessing: {OrderCompleted, OrderCancelled},
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order customer order with frozen line prices
type Order struct {
	ID        int64              `json:"id,string"`
	AccountID int64              `gorm:"index" json:"account_id,string"`
	Items     []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total     decimal.Decimal    `gorm:"type:decimal(12,2)" json:"total"`
	Status    OrderStatus        `gorm:"size:16;index" json:"status"`
	History   []OrderStatusEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"history"`
	Shipping  Address            `gorm:"embedded;embeddedPrefix:ship_" json:"shipping"`
	CreatedAt time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// AfterFind normalizes legacy statuses at the data-access boundary.
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.Status = CanonicalStatus(string(o.Status))
	return nil
}

// ItemCount total units across all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// OrderItem snapshot of a product line at order time
type OrderItem struct {
	ID          int64           `json:"id,string"`
	OrderID     int64           `gorm:"index" json:"order_id,string"`
	ProductID   int64           `gorm:"index" json:"product_id,string"`
	ProductName string          `gorm:"size:200" json:"product_name"`
	Category    string          `gorm:"size:100;index" json:"category"`
	Image       string          `gorm:"size:1024" json:"image"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2)" json:"line_total"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_item"
}

// OrderStatusEntry append-only status history row
type OrderStatusEntry struct {
	ID        int64       `json:"id,string"`
	OrderID   int64       `gorm:"index" json:"order_id,string"`
	Status    OrderStatus `gorm:"size:16" json:"status"`
	ActorKind ActorKind   `gorm:"size:16" json:"actor_kind"`
	ActorID   int64       `json:"actor_id,string,omitempty"`
	ActorName string      `gorm:"size:200" json:"actor_name"`
	Note      string      `gorm:"size:500" json:"note,omitempty"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (OrderStatusEntry) TableName() string {
	return "order_status_history"
}

// AfterFind normalizes legacy statuses at the data-access boundary.
func (e *OrderStatusEntry) AfterFind(tx *gorm.DB) error {
	e.Status = CanonicalStatus(string(e.Status))
	return nil
}

// Actor returns the attribution of the entry.
func (e *OrderStatusEntry) Actor() Actor {
	if e.ActorKind == ActorAccount {
		return AccountActor{ID: e.ActorID, Name: e.ActorName}
	}
	return SystemActor{Label: e.ActorName}
}
