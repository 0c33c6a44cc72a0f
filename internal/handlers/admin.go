package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/collab-api/internal/dto"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/services"
	"github.com/yukikurage/collab-api/internal/utils"
)

// AdminHandler serves the admin-only surface.
type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	users, total, err := h.adminService.ListUsers(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToUserDTOs(users), params, total))
}

func (h *AdminHandler) ListTeams(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	teams, total, err := h.adminService.ListTeams(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	items := make([]dto.TeamDTO, len(teams))
	for i, team := range teams {
		items[i] = dto.ToTeamDTO(team)
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, params, total))
}

func (h *AdminHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	projects, total, err := h.adminService.ListProjects(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	items := make([]dto.ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = dto.ToProjectDTO(project)
	}
	c.JSON(http.StatusOK, dto.NewListResponse(items, params, total))
}

func (h *AdminHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	tasks, total, err := h.adminService.ListTasks(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(dto.ToTaskDTOs(tasks), params, total))
}

// ChangeRole sets a user's role
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.adminService.ChangeRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	h.respondDeleted(c, h.adminService.DeleteUser(c.Request.Context(), c.Param("id")), "User deleted")
}

func (h *AdminHandler) DeleteTeam(c *gin.Context) {
	h.respondDeleted(c, h.adminService.DeleteTeam(c.Request.Context(), c.Param("id")), "Team deleted")
}

func (h *AdminHandler) DeleteProject(c *gin.Context) {
	h.respondDeleted(c, h.adminService.DeleteProject(c.Request.Context(), c.Param("id")), "Project deleted")
}

func (h *AdminHandler) DeleteTask(c *gin.Context) {
	h.respondDeleted(c, h.adminService.DeleteTask(c.Request.Context(), c.Param("id")), "Task deleted")
}

// Analytics returns workspace totals and breakdowns
func (h *AdminHandler) Analytics(c *gin.Context) {
	stats, err := h.adminService.Analytics(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) respondDeleted(c *gin.Context, err error, message string) {
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
