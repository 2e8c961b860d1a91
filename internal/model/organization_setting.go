package model

import (
	"time"
)

// OrganizationSetting is a key/value/type triplet scoped to an organization.
// Defaults are seeded at provisioning time but readers must not rely on a
// key being present.
type OrganizationSetting struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrganizationID uint      `json:"organization_id" gorm:"index:idx_org_setting_key,unique;not null"`
	Key            string    `json:"key" gorm:"type:varchar(50);index:idx_org_setting_key,unique;not null"`
	Value          string    `json:"value" gorm:"type:text"`
	ValueType      string    `json:"value_type" gorm:"type:varchar(20);not null;default:'string'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Well-known setting keys seeded at organization creation
const (
	SettingCurrency      = "currency"
	SettingTaxRate       = "tax_rate"
	SettingWarrantyDays  = "warranty_days"
	SettingBusinessHours = "business_hours"
)
