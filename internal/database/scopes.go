package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/utils"
)

// Paginate limits a listing query to the requested page.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset()).Limit(params.Limit)
	}
}
