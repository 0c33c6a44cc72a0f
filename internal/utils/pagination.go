package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/collab-api/internal/constants"
)

// PaginationParams is a 1-based page request used by the admin listings.
type PaginationParams struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before the requested page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages reports how many pages of Limit rows cover total rows.
func (p PaginationParams) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// GetPaginationParams reads ?page= and ?limit=. Garbage falls back to the
// defaults and limits above the maximum are clamped.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	switch {
	case err != nil || limit < constants.MinPageSize:
		limit = constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		limit = constants.MaxPageSize
	}

	return PaginationParams{Page: page, Limit: limit}
}
