package model

import (
	"time"
)

// AuthIdentity is a credential record managed by the auth provider. It is
// deliberately separate from User: provisioning creates the identity first
// and compensates by deleting it if the profile row cannot be created.
type AuthIdentity struct {
	ID             string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email          string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"type:varchar(255);not null"`
	EmailConfirmed bool      `json:"email_confirmed" gorm:"default:false"`
	Metadata       string    `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
