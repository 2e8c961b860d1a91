package model

import (
	"time"
)

// OrganizationRequest represents a signup request created by the public
// registration endpoint. Requests are never deleted; they are processed
// exactly once by the admin approval or rejection workflow.
type OrganizationRequest struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Name             string     `json:"name" gorm:"type:varchar(100);not null"`
	Slug             string     `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email            string     `json:"email" gorm:"type:varchar(100);not null"`
	Phone            string     `json:"phone" gorm:"type:varchar(30)"`
	Address          string     `json:"address" gorm:"type:text"`
	OwnerName        string     `json:"owner_name" gorm:"type:varchar(100);not null"`
	OwnerEmail       string     `json:"owner_email" gorm:"type:varchar(100);not null"`
	OwnerPhone       string     `json:"owner_phone" gorm:"type:varchar(30)"`
	OwnerPassword    string     `json:"-" gorm:"type:varchar(255)"`
	SubscriptionPlan string     `json:"subscription_plan" gorm:"type:varchar(20);not null;default:'monthly_6'"`
	Status           string     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	RejectionReason  string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
