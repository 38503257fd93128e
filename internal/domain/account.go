package domain

import (
	"strings"
	"time"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Address postal address, embedded in accounts and order snapshots
type Address struct {
	Street     string `json:"street" form:"street"`
	City       string `json:"city" form:"city"`
	State      string `json:"state" form:"state"`
	PostalCode string `json:"postal_code" form:"postal_code"`
	Country    string `json:"country" form:"country"`
}

// Account a customer, staff member or administrator
type Account struct {
	ID        int64      `json:"id,string" form:"id"`
	Name      string     `gorm:"size:200" json:"name" form:"name"`
	Email     string     `gorm:"size:255;uniqueIndex" json:"email" form:"email"`
	Password  string     `gorm:"size:255" json:"-"`
	Role      Role       `gorm:"size:16;index" json:"role" form:"role"`
	Address   Address    `gorm:"embedded;embeddedPrefix:addr_" json:"address"`
	Status    string     `gorm:"size:16;index" json:"status" form:"status"` // enabled|disabled
	Remark    string     `json:"remark" form:"remark"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (Account) TableName() string {
	return "account"
}

// Active reports whether the account may sign in.
func (a *Account) Active() bool {
	return a.Status != common.DISABLED
}

// PasswordReset single use password reset token
type PasswordReset struct {
	ID        int64      `json:"id,string"`
	AccountID int64      `gorm:"index" json:"account_id,string"`
	Token     string     `gorm:"size:64;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName Specify table name
func (PasswordReset) TableName() string {
	return "password_reset"
}
