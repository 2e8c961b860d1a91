package model

import (
	"time"

	"gorm.io/gorm"
)

// Repair statuses follow the shop workflow from intake to delivery
const (
	RepairStatusReceived   = "received"
	RepairStatusDiagnosed  = "diagnosed"
	RepairStatusInProgress = "in_progress"
	RepairStatusCompleted  = "completed"
	RepairStatusDelivered  = "delivered"
	RepairStatusCancelled  = "cancelled"
)

// Repair represents a repair order for a customer's device
type Repair struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"index;not null"`
	CustomerID     uint           `json:"customer_id" gorm:"index;not null"`
	DeviceID       uint           `json:"device_id" gorm:"index;not null"`
	TechnicianID   *uint          `json:"technician_id,omitempty" gorm:"index"`
	Problem        string         `json:"problem" gorm:"type:text;not null"`
	Diagnosis      string         `json:"diagnosis,omitempty" gorm:"type:text"`
	Status         string         `json:"status" gorm:"type:varchar(20);not null;default:'received';index"`
	EstimatedCost  float64        `json:"estimated_cost"`
	FinalCost      float64        `json:"final_cost"`
	WarrantyDays   int            `json:"warranty_days"`
	ReceivedAt     time.Time      `json:"received_at"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
