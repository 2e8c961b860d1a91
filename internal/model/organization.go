package model

import (
	"time"

	"gorm.io/gorm"
)

// Organization represents a provisioned tenant. All domain data is scoped
// by its ID. Organizations are created exactly once, as a byproduct of
// approving an OrganizationRequest.
type Organization struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	Name               string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug               string         `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email              string         `json:"email" gorm:"type:varchar(100)"`
	Phone              string         `json:"phone" gorm:"type:varchar(30)"`
	Address            string         `json:"address" gorm:"type:text"`
	SubscriptionPlan   string         `json:"subscription_plan" gorm:"type:varchar(20);not null"`
	SubscriptionEndsAt time.Time      `json:"subscription_ends_at"`
	RequestID          *uint          `json:"request_id,omitempty" gorm:"index"`
	LogoURL            string         `json:"logo_url,omitempty" gorm:"type:text"`
	MaxUsers           int            `json:"max_users" gorm:"default:5"`
	MaxDevices         int            `json:"max_devices" gorm:"default:500"`
	Active             bool           `json:"active" gorm:"default:true"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Users    []User                `json:"users,omitempty" gorm:"foreignKey:OrganizationID"`
	Settings []OrganizationSetting `json:"settings,omitempty" gorm:"foreignKey:OrganizationID"`
}
