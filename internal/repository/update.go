package repository

import (
	"context"

	"gorm.io/gorm"
)

// updateByID sets column on the row with id. MySQL reports changed rows, not
// matched rows, so an update that leaves the value as it was affects zero
// rows; only a missing row is reported as gorm.ErrRecordNotFound.
func updateByID(ctx context.Context, db *gorm.DB, model interface{}, id, column string, value interface{}) error {
	result := db.WithContext(ctx).Model(model).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
