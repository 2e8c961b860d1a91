package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a repair-shop customer, scoped to an organization
type Customer struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	Name           string         `json:"name" gorm:"type:varchar(100);not null"`
	Phone          string         `json:"phone" gorm:"type:varchar(30)"`
	Email          string         `json:"email" gorm:"type:varchar(100)"`
	Address        string         `json:"address" gorm:"type:text"`
	Notes          string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
