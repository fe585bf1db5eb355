package main

import (
	"fmt"
	"log"

	_ "github.com/research-nest/researchnest-api/api/swagger"
	"github.com/research-nest/researchnest-api/internal/handler"
	"github.com/research-nest/researchnest-api/internal/repository"
	"github.com/research-nest/researchnest-api/internal/service"
	"github.com/research-nest/researchnest-api/pkg/cache"
	"github.com/research-nest/researchnest-api/pkg/config"
	"github.com/research-nest/researchnest-api/pkg/database"
	"github.com/research-nest/researchnest-api/pkg/export"
	"github.com/research-nest/researchnest-api/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// @title ResearchNest API
// @version 1.0.0
// @description Research milestone tracking for graduate students and faculty
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	cacheSvc := service.NewCacheService(nil, metricsSvc, cfg.Cache.TTL, logr, false)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, progress cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	studentRepo := repository.NewStudentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	stageRepo := repository.NewStageRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(studentRepo, facultyRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	milestoneSvc := service.NewMilestoneService(milestoneRepo, studentRepo, stageRepo, cacheSvc, validate, logr)
	stageSvc := service.NewStageService(stageRepo, milestoneRepo, cacheSvc, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, stageRepo, cacheSvc, validate, logr)
	subtaskSvc := service.NewSubtaskService(subtaskRepo, taskRepo, cacheSvc, validate, logr)
	noteSvc := service.NewNoteService(noteRepo, validate, logr)
	progressSvc := service.NewProgressService(progressRepo, cacheSvc, logr)
	facultySvc := service.NewFacultyService(facultyRepo, milestoneRepo, progressSvc, logr)
	exportSvc := service.NewExportService(facultyRepo, milestoneRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	router := handler.NewRouter(cfg, logr, handler.Services{
		Auth:       authSvc,
		Milestones: milestoneSvc,
		Stages:     stageSvc,
		Tasks:      taskSvc,
		Subtasks:   subtaskSvc,
		Notes:      noteSvc,
		Progress:   progressSvc,
		Faculty:    facultySvc,
		Exports:    exportSvc,
		Metrics:    metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := router.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
