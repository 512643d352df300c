// Package owned holds the single ownership predicate used by every service.
// Absence and ownership mismatch are indistinguishable on purpose: both come
// back as not-found so the API never confirms a resource exists to a
// non-owner.
package owned

import (
	"context"

	"gorm.io/gorm"

	"secondbrain/internal/apperr"
)

// Check verifies a non-deleted row in table with the given id belongs to
// userID.
func Check(ctx context.Context, gdb *gorm.DB, table string, id, userID uint64) error {
	var n int64
	err := gdb.WithContext(ctx).Table(table).
		Where("id = ? AND user_id = ? AND is_deleted = false", id, userID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound(table[:len(table)-1] + " not found")
	}
	return nil
}
