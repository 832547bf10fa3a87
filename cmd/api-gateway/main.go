package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/placement-portal-api/api/swagger"
	"github.com/noah-isme/placement-portal-api/internal/handler"
	"github.com/noah-isme/placement-portal-api/internal/middleware"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/repository"
	"github.com/noah-isme/placement-portal-api/internal/service"
	"github.com/noah-isme/placement-portal-api/pkg/cache"
	"github.com/noah-isme/placement-portal-api/pkg/config"
	"github.com/noah-isme/placement-portal-api/pkg/database"
	"github.com/noah-isme/placement-portal-api/pkg/logger"
	"github.com/noah-isme/placement-portal-api/pkg/mediahost"
	corsmiddleware "github.com/noah-isme/placement-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/placement-portal-api/pkg/middleware/requestid"
)

// @title Placement Portal API
// @version 0.1.0
// @description Placement management portal with PRN-gated registration and academic-year reset
// @BasePath /
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

	// Redis is optional: the resolver degrades to direct registry scans.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, eligibility cache disabled", "error", err)
		redisClient = nil
	}
	if !cfg.Eligibility.CacheEnabled {
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	prnRepo := repository.NewPRNRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	collegeRepo := repository.NewCollegeRepository(db)
	resetRepo := repository.NewResetRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(redisClient, cfg.Eligibility.CacheTTL, logr)
	authSvc := service.NewAuthService(userRepo, auditRepo, cfg.JWT, logr)
	prnSvc := service.NewPRNService(prnRepo, auditRepo, cacheSvc, logr)
	studentSvc := service.NewStudentService(studentRepo, collegeRepo, prnSvc, auditRepo, metricsSvc, validator.New(), logr)
	auditSvc := service.NewAuditService(auditRepo, logr)
	mediaClient := mediahost.NewClient(cfg.MediaHost)
	resetSvc := service.NewResetService(resetRepo, userRepo, auditRepo, cacheSvc, mediaClient, metricsSvc, cfg.Reset, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	prnHandler := handler.NewPRNHandler(prnSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	resetHandler := handler.NewResetHandler(resetSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
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
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	adminOnly := middleware.RequireRoles(models.RoleSuperAdmin, models.RolePlacementOfficer)

	ranges := api.Group("/ranges", middleware.JWT(authSvc), adminOnly)
	ranges.GET("", prnHandler.List)
	ranges.GET("/export", middleware.Audit(auditRepo, logr, models.AuditActionRangeExport, "prn_range"), prnHandler.Export)
	ranges.POST("", prnHandler.Create)
	ranges.PATCH("/:id", prnHandler.Update)
	ranges.DELETE("/:id", prnHandler.Delete)

	api.GET("/colleges", studentHandler.ListColleges)
	api.POST("/eligibility/check", studentHandler.CheckEligibility)
	api.POST("/students/register", studentHandler.Register)

	reset := api.Group("/reset", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleSuperAdmin))
	reset.GET("/preview", middleware.Audit(auditRepo, logr, models.AuditActionResetPreview, "reset"), resetHandler.Preview)
	reset.POST("/execute", resetHandler.Execute)

	api.GET("/audit-logs",
		middleware.JWT(authSvc),
		middleware.RequireRoles(models.RoleSuperAdmin),
		auditHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
