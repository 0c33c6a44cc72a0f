// Package router wires HTTP routes to handlers behind the authorization gate.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/auth"
	"github.com/yukikurage/collab-api/internal/handlers"
	"github.com/yukikurage/collab-api/internal/middleware"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/realtime"
	"github.com/yukikurage/collab-api/internal/services"
)

// Deps holds everything the HTTP surface needs.
type Deps struct {
	DB             *gorm.DB
	Gate           *auth.Gate
	Hub            *realtime.Hub
	Auth           *services.AuthService
	Teams          *services.TeamService
	Projects       *services.ProjectService
	Tasks          *services.TaskService
	Admin          *services.AdminService
	AllowedOrigins []string
	Logger         *zap.SugaredLogger
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(d.Logger), middleware.Recovery(d.Logger))

	r.Use(cors.New(corsConfig(d.AllowedOrigins)))

	authHandler := handlers.NewAuthHandler(d.Auth)
	teamHandler := handlers.NewTeamHandler(d.Teams)
	projectHandler := handlers.NewProjectHandler(d.Projects)
	taskHandler := handlers.NewTaskHandler(d.Tasks)
	adminHandler := handlers.NewAdminHandler(d.Admin)
	wsHandler := handlers.NewWSHandler(d.Hub, d.AllowedOrigins, d.Logger)
	healthHandler := handlers.NewHealthHandler(d.DB)

	requireUser := middleware.RequireAuth(d.Gate)
	requireManager := middleware.RequireAuth(d.Gate, models.RoleAdmin, models.RoleProjectManager)
	requireAdmin := middleware.RequireAuth(d.Gate, models.RoleAdmin)

	r.GET("/health", healthHandler.HealthCheck)

	api := r.Group("/api")
	{
		api.GET("/ws", requireUser, wsHandler.WebSocket)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", requireUser, authHandler.GetCurrentUser)
		}

		users := api.Group("/users", requireUser)
		{
			users.GET("", authHandler.ListUsers)
			users.GET("/profile", authHandler.GetCurrentUser)
			users.PATCH("/profile/password", authHandler.ChangePassword)
		}

		teams := api.Group("/teams", requireUser)
		{
			teams.POST("", middleware.RequireRole(models.RoleAdmin, models.RoleProjectManager), teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListTeams)
			teams.GET("/:id", teamHandler.GetTeam)
		}

		projects := api.Group("/projects")
		{
			projects.POST("", requireManager, projectHandler.CreateProject)
			projects.GET("", requireUser, projectHandler.ListProjects)
			projects.GET("/:id", requireUser, projectHandler.GetProject)
		}

		tasks := api.Group("/tasks", requireUser)
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/my-tasks", taskHandler.MyTasks)
			tasks.GET("/activity/:projectId", taskHandler.Activity)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
		}

		admin := api.Group("/admin", requireAdmin)
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id/role", adminHandler.ChangeRole)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.GET("/teams", adminHandler.ListTeams)
			admin.DELETE("/teams/:id", adminHandler.DeleteTeam)
			admin.GET("/projects", adminHandler.ListProjects)
			admin.DELETE("/projects/:id", adminHandler.DeleteProject)
			admin.GET("/tasks", adminHandler.ListTasks)
			admin.DELETE("/tasks/:id", adminHandler.DeleteTask)
			admin.GET("/analytics", adminHandler.Analytics)
		}
	}

	return r
}

// corsConfig allows every origin when the list is empty or contains "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}

	cfg.AllowOrigins = origins
	return cfg
}
