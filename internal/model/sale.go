package model

import (
	"time"

	"gorm.io/gorm"
)

// Sale represents a point-of-sale transaction for an inventory item
type Sale struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	OrganizationID  uint           `json:"organization_id" gorm:"index;not null"`
	CustomerID      *uint          `json:"customer_id,omitempty" gorm:"index"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	InventoryItemID uint           `json:"inventory_item_id" gorm:"index;not null"`
	Quantity        int            `json:"quantity" gorm:"not null;default:1"`
	UnitPrice       float64        `json:"unit_price"`
	Total           float64        `json:"total"`
	PaymentMethod   string         `json:"payment_method,omitempty" gorm:"type:varchar(30)"`
	SoldAt          time.Time      `json:"sold_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}
