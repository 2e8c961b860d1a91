package model

import (
	"time"

	"gorm.io/gorm"
)

// Device represents a customer's phone or tablet brought in for service
type Device struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	CustomerID     uint           `json:"customer_id" gorm:"index;not null"`
	Brand          string         `json:"brand" gorm:"type:varchar(50);not null"`
	Model          string         `json:"model" gorm:"type:varchar(100);not null"`
	IMEI           string         `json:"imei,omitempty" gorm:"type:varchar(20);index"`
	SerialNumber   string         `json:"serial_number,omitempty" gorm:"type:varchar(50)"`
	Color          string         `json:"color,omitempty" gorm:"type:varchar(30)"`
	Condition      string         `json:"condition,omitempty" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
