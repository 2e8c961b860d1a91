package model

import (
	"time"

	"gorm.io/gorm"
)

// Unlock statuses
const (
	UnlockStatusPending    = "pending"
	UnlockStatusInProgress = "in_progress"
	UnlockStatusCompleted  = "completed"
	UnlockStatusFailed     = "failed"
)

// UnlockRequest represents a carrier/network unlock job for a customer device
type UnlockRequest struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	CustomerID     uint           `json:"customer_id" gorm:"index;not null"`
	Brand          string         `json:"brand" gorm:"type:varchar(50)"`
	Model          string         `json:"model" gorm:"type:varchar(100)"`
	IMEI           string         `json:"imei" gorm:"type:varchar(20);not null;index"`
	Carrier        string         `json:"carrier,omitempty" gorm:"type:varchar(50)"`
	Country        string         `json:"country,omitempty" gorm:"type:varchar(50)"`
	Status         string         `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Price          float64        `json:"price"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
