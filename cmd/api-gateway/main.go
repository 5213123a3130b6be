package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/uems-api/api/swagger"
	"github.com/noah-isme/uems-api/internal/handler"
	"github.com/noah-isme/uems-api/internal/middleware"
	"github.com/noah-isme/uems-api/internal/models"
	"github.com/noah-isme/uems-api/internal/repository"
	"github.com/noah-isme/uems-api/internal/service"
	"github.com/noah-isme/uems-api/pkg/cache"
	"github.com/noah-isme/uems-api/pkg/config"
	"github.com/noah-isme/uems-api/pkg/database"
	"github.com/noah-isme/uems-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uems-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uems-api/pkg/middleware/requestid"
	"github.com/noah-isme/uems-api/pkg/storage"
)

// @title UEMS Revaluation API
// @version 1.0.0
// @description Exam office console for revaluation application lifecycle management
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	appRepo := repository.NewApplicationRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	feeRuleRepo := repository.NewFeeRuleRepository(db)
	fileRepo := repository.NewFileRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "uems-api",
	})

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		localStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare exports storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.JWT.Secret, 24*time.Hour)
		exportSvc = service.NewExportService(appRepo, timelineRepo, directoryRepo, localStorage, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			Workers:   cfg.Exports.WorkerConcurrency,
			Retries:   cfg.Exports.WorkerRetries,
		}, logr)
		exportSvc.Start(context.Background())
		defer exportSvc.Stop()
	}

	revalOpts := []service.RevaluationServiceOption{
		service.WithFileStore(fileRepo),
		service.WithRosterStore(directoryRepo),
		service.WithAuditLogger(userRepo),
		service.WithTransitionObserver(metricsSvc),
	}
	if redisClient != nil {
		revalOpts = append(revalOpts, service.WithCache(cacheRepo))
	}
	if exportSvc != nil {
		revalOpts = append(revalOpts, service.WithExportQueuer(exportSvc))
	}
	revalSvc := service.NewRevaluationService(appRepo, timelineRepo, feeRuleRepo, logr, cfg.Revaluation, revalOpts...)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, appRepo, timelineRepo, logr, cfg.Revaluation,
		service.WithAssignmentAudit(userRepo))
	directorySvc := service.NewDirectoryService(directoryRepo, logr)

	revalHandler := handler.NewRevaluationHandler(revalSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	directoryHandler := handler.NewDirectoryHandler(directorySvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.POST("/password", middleware.JWT(authSvc), authHandler.ChangePassword)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	coe := middleware.RequireRoles(models.RoleCoEAdmin)
	finance := middleware.RequireRoles(models.RoleCoEAdmin, models.RoleFinance)
	examiner := middleware.RequireRoles(models.RoleCoEAdmin, models.RoleExaminer)
	anyStaff := middleware.RequireRoles(models.RoleCoEAdmin, models.RoleFinance, models.RoleExaminer, models.RoleStudent)

	revals := authed.Group("/revaluations")
	revals.POST("", coe, revalHandler.Create)
	revals.GET("", anyStaff, revalHandler.List)
	revals.GET("/:id", anyStaff, revalHandler.Get)
	revals.POST("/:id/payment", finance, revalHandler.VerifyPayment)
	revals.PATCH("/:id/status", coe, middleware.Audit(userRepo, models.AuditActionStatusChange, "revaluation"), revalHandler.UpdateStatus)
	revals.PUT("/:id/marks", examiner, revalHandler.SaveMarks)
	revals.POST("/:id/approve", coe, revalHandler.Approve)
	revals.POST("/:id/publish", coe, revalHandler.Publish)
	revals.POST("/:id/reject", coe, revalHandler.Reject)
	revals.GET("/:id/timeline", anyStaff, revalHandler.Timeline)
	revals.POST("/:id/timeline", coe, revalHandler.AddTimelineEntry)
	revals.GET("/:id/files", anyStaff, revalHandler.Files)
	revals.POST("/:id/files", coe, revalHandler.AddFile)

	authed.GET("/fees/rules", anyStaff, revalHandler.FeeRules)

	assignments := authed.Group("/assignments")
	assignments.POST("", coe, assignmentHandler.Create)
	assignments.GET("", examiner, assignmentHandler.List)

	authed.GET("/students", coe, directoryHandler.Students)
	authed.GET("/students/:id", anyStaff, directoryHandler.Student)
	authed.GET("/exams/:id", anyStaff, directoryHandler.Exam)

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		revals.POST("/:id/export", coe, middleware.Audit(userRepo, models.AuditActionExport, "export"), exportHandler.Request)
		authed.GET("/exports/jobs/:jobId", anyStaff, exportHandler.Job)
		authed.GET("/exports/download/:token", anyStaff, exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
