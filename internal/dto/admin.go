package dto

import (
	"github.com/yukikurage/collab-api/internal/repository"
	"github.com/yukikurage/collab-api/internal/utils"
)

// ListResponse represents a paginated list
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewListResponse builds the pagination envelope for items
func NewListResponse[T any](items []T, params utils.PaginationParams, totalCount int64) ListResponse[T] {
	return ListResponse[T]{
		Items:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalCount: totalCount,
		TotalPages: params.TotalPages(totalCount),
	}
}

// AnalyticsResponse summarizes the whole workspace for admins
type AnalyticsResponse struct {
	TotalUsers    int64                   `json:"totalUsers"`
	TotalTeams    int64                   `json:"totalTeams"`
	TotalProjects int64                   `json:"totalProjects"`
	TotalTasks    int64                   `json:"totalTasks"`
	TasksByStatus []repository.GroupCount `json:"tasksByStatus"`
	UsersByRole   []repository.GroupCount `json:"usersByRole"`
}
