package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an application profile bound 1:1 to an auth identity.
// OrganizationID is null only for super admins, which are organization-less.
type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	AuthID         string         `json:"auth_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	OrganizationID *uint          `json:"organization_id,omitempty" gorm:"index"`
	Role           string         `json:"role" gorm:"type:varchar(20);not null;default:'technician'"`
	Name           string         `json:"name" gorm:"type:varchar(100);not null"`
	Email          string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone          string         `json:"phone" gorm:"type:varchar(30)"`
	Active         bool           `json:"active" gorm:"default:true"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
