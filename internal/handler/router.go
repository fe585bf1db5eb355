package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/research-nest/researchnest-api/internal/middleware"
	"github.com/research-nest/researchnest-api/internal/models"
	"github.com/research-nest/researchnest-api/internal/service"
	"github.com/research-nest/researchnest-api/pkg/config"
	"github.com/research-nest/researchnest-api/pkg/logger"
	corsmiddleware "github.com/research-nest/researchnest-api/pkg/middleware/cors"
	reqidmiddleware "github.com/research-nest/researchnest-api/pkg/middleware/requestid"
)

// Services bundles everything the router needs.
type Services struct {
	Auth       *service.AuthService
	Milestones *service.MilestoneService
	Stages     *service.StageService
	Tasks      *service.TaskService
	Subtasks   *service.SubtaskService
	Notes      *service.NoteService
	Progress   *service.ProgressService
	Faculty    *service.FacultyService
	Exports    *service.ExportService
	Metrics    *service.MetricsService
}

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(cfg *config.Config, logr *zap.Logger, svcs Services) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svcs.Metrics))

	metricsHandler := NewMetricsHandler(svcs.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := NewAuthHandler(svcs.Auth)
	milestoneHandler := NewMilestoneHandler(svcs.Milestones)
	stageHandler := NewStageHandler(svcs.Stages)
	taskHandler := NewTaskHandler(svcs.Tasks)
	subtaskHandler := NewSubtaskHandler(svcs.Subtasks)
	noteHandler := NewNoteHandler(svcs.Notes)
	progressHandler := NewProgressHandler(svcs.Progress)
	facultyHandler := NewFacultyHandler(svcs.Faculty, svcs.Exports)

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(svcs.Auth))

	milestones := authed.Group("/milestones")
	{
		milestones.POST("", middleware.RequireRoles(models.RoleFaculty), milestoneHandler.Create)
		milestones.GET("/student/:studentId", milestoneHandler.ListByStudent)
		milestones.PATCH("/:id/status", milestoneHandler.UpdateStatus)
		milestones.PATCH("/:id/freeze", middleware.RequireRoles(models.RoleFaculty), milestoneHandler.Freeze)
		milestones.PATCH("/:id/approve", middleware.RequireRoles(models.RoleFaculty), milestoneHandler.Approve)
		milestones.DELETE("/:id", middleware.RequireRoles(models.RoleFaculty), milestoneHandler.Delete)
	}

	stages := authed.Group("/stages")
	{
		stages.POST("", middleware.RequireRoles(models.RoleFaculty), stageHandler.Create)
		stages.GET("/milestone/:milestoneId", stageHandler.ListByMilestone)
		stages.PATCH("/:id/status", stageHandler.UpdateStatus)
		stages.PATCH("/:id/freeze", middleware.RequireRoles(models.RoleFaculty), stageHandler.Freeze)
		stages.DELETE("/:id", middleware.RequireRoles(models.RoleFaculty), stageHandler.Delete)
	}

	tasks := authed.Group("/tasks")
	{
		tasks.POST("", middleware.RequireRoles(models.RoleStudent), taskHandler.Create)
		tasks.GET("/stage/:stageId", taskHandler.ListByStage)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	subtasks := authed.Group("/subtasks")
	{
		subtasks.POST("", middleware.RequireRoles(models.RoleStudent), subtaskHandler.Create)
		subtasks.GET("/task/:taskId", subtaskHandler.ListByTask)
		subtasks.PUT("/:id", subtaskHandler.Update)
		subtasks.DELETE("/:id", subtaskHandler.Delete)
	}

	notes := authed.Group("/notes")
	{
		notes.POST("", middleware.RequireRoles(models.RoleFaculty), noteHandler.Create)
		notes.GET("/student/:studentId", noteHandler.ListByStudent)
		notes.DELETE("/:id", middleware.RequireRoles(models.RoleFaculty), noteHandler.Delete)
	}

	progress := authed.Group("/progress")
	{
		progress.GET("/:studentId", progressHandler.Full)
		progress.GET("/:studentId/summary", progressHandler.Summary)
	}

	faculty := authed.Group("/faculty", middleware.RequireRoles(models.RoleFaculty))
	{
		faculty.GET("/:id/students", facultyHandler.Students)
		faculty.GET("/:id/milestones", facultyHandler.Milestones)
		faculty.GET("/:id/progress", facultyHandler.Progress)
		if cfg.Exports.Enabled {
			faculty.GET("/:id/progress/export", facultyHandler.ExportProgress)
		}
	}

	return r
}
