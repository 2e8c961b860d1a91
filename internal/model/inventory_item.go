package model

import (
	"time"

	"gorm.io/gorm"
)

// InventoryItem represents a stocked part or accessory
type InventoryItem struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	Name           string         `json:"name" gorm:"type:varchar(100);not null"`
	SKU            string         `json:"sku" gorm:"type:varchar(50);index"`
	Category       string         `json:"category,omitempty" gorm:"type:varchar(50)"`
	Quantity       int            `json:"quantity" gorm:"default:0"`
	MinQuantity    int            `json:"min_quantity" gorm:"default:0"`
	CostPrice      float64        `json:"cost_price"`
	SalePrice      float64        `json:"sale_price"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
