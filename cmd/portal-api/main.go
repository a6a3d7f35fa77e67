package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuslink/portal-api/api/swagger"
	"github.com/campuslink/portal-api/internal/handler"
	"github.com/campuslink/portal-api/internal/middleware"
	"github.com/campuslink/portal-api/internal/models"
	"github.com/campuslink/portal-api/internal/repository"
	"github.com/campuslink/portal-api/internal/service"
	"github.com/campuslink/portal-api/pkg/cache"
	"github.com/campuslink/portal-api/pkg/config"
	"github.com/campuslink/portal-api/pkg/database"
	"github.com/campuslink/portal-api/pkg/export"
	"github.com/campuslink/portal-api/pkg/jobs"
	"github.com/campuslink/portal-api/pkg/logger"
	corsmiddleware "github.com/campuslink/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuslink/portal-api/pkg/middleware/requestid"
	"github.com/campuslink/portal-api/pkg/storage"
)

// @title CampusLink Portal API
// @version 1.0.0
// @description Role-scoped university portal: announcements, assignments, lectures, subjects and chat.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connect failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheEnabled := cfg.Cache.Enabled
	var cacheRepo *repository.CacheRepository
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
			cacheEnabled = false
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheEnabled)

	fileStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("storage init failed", "error", err)
	}
	urlSigner := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	lectureRepo := repository.NewLectureRepository(db)
	chatRepo := repository.NewChatRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "portal-api",
	})
	userSvc := service.NewUserService(userRepo, subjectRepo, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, cacheSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, validate, logr)
	lectureSvc := service.NewLectureService(lectureRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	chatSvc := service.NewChatService(chatRepo, userRepo, validate, logr)
	uploadSvc := service.NewUploadService(fileStore, urlSigner, service.UploadConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
		APIPrefix:        cfg.APIPrefix,
	}, logr)
	exportSvc := service.NewExportService(lectureRepo, fileStore, urlSigner, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	sweepWorker := service.NewSweepWorker(fileStore, cfg.Uploads.SignedURLTTL, logr)
	sweepQueue := jobs.NewQueue("maintenance", sweepWorker.Handle, jobs.QueueConfig{Logger: logr})
	sweepQueue.Start(context.Background())
	defer sweepQueue.Stop()
	maintenance := service.NewMaintenanceService(sweepQueue, time.Hour, logr)
	go maintenance.Run(context.Background())

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	lectureHandler := handler.NewLectureHandler(lectureSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	uploadHandler := handler.NewUploadHandler(uploadSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Signed-token downloads authenticate through the token itself.
	api.GET("/uploads/:token", uploadHandler.Download)
	api.GET("/export/:token", exportHandler.Download)

	authed := api.Group("", middleware.JWT(authSvc))

	admins := middleware.RequireRoles(models.RoleAdmin, models.RoleDepartmentAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleDepartmentAdmin, models.RoleTeacher)

	authed.GET("/users", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
	authed.POST("/users", admins, userHandler.Create)
	authed.GET("/users/me", userHandler.Me)
	authed.GET("/users/:id", middleware.RBAC("admin", "department_admin", "SELF"), userHandler.Get)
	authed.GET("/users/:id/subjects", middleware.RBAC("admin", "department_admin", "SELF"), userHandler.EnrolledSubjects)

	authed.GET("/announcements", announcementHandler.List)
	authed.GET("/announcements/:id", announcementHandler.Get)
	authed.POST("/announcements", staff, announcementHandler.Create)

	authed.GET("/assignments", assignmentHandler.List)
	authed.GET("/assignments/:id", assignmentHandler.Get)
	authed.POST("/assignments", staff, assignmentHandler.Create)

	authed.GET("/lectures", lectureHandler.List)
	authed.GET("/lectures/:id", lectureHandler.Get)
	authed.POST("/lectures", staff, lectureHandler.Create)

	authed.GET("/subjects", subjectHandler.List)
	authed.GET("/subjects/:id", subjectHandler.Get)
	authed.POST("/subjects", staff, subjectHandler.Create)

	authed.GET("/chat/groups", chatHandler.ListGroups)
	authed.POST("/chat/groups", chatHandler.CreateGroup)
	authed.GET("/chat/groups/:id", chatHandler.GetGroup)
	authed.GET("/chat/groups/:id/messages", chatHandler.ListMessages)
	authed.POST("/chat/groups/:id/messages", chatHandler.SendMessage)

	if cfg.Uploads.Enabled {
		authed.POST("/uploads", admins, uploadHandler.Upload)
	}
	authed.GET("/export/timetable", exportHandler.GenerateTimetable)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "cache", cacheSvc.Enabled())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
