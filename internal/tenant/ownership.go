package tenant

import (
	"gorm.io/gorm"
)

// Owns reports whether the resource in the given table belongs to the
// caller's organization. Super admins always pass. A missing resource and
// an organization mismatch both return false so callers cannot probe for
// existence across tenants.
func Owns(db *gorm.DB, table string, id uint, organizationID uint, isSuperAdmin bool) bool {
	if isSuperAdmin {
		return true
	}

	var count int64
	result := db.Table(table).
		Where("id = ? AND organization_id = ?", id, organizationID).
		Count(&count)
	if result.Error != nil {
		return false
	}
	return count > 0
}
