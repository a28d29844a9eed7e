package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-staff-api/api/swagger"
	"github.com/noah-isme/sma-staff-api/internal/handler"
	"github.com/noah-isme/sma-staff-api/internal/middleware"
	"github.com/noah-isme/sma-staff-api/internal/models"
	"github.com/noah-isme/sma-staff-api/internal/repository"
	"github.com/noah-isme/sma-staff-api/internal/service"
	"github.com/noah-isme/sma-staff-api/pkg/cache"
	"github.com/noah-isme/sma-staff-api/pkg/config"
	"github.com/noah-isme/sma-staff-api/pkg/database"
	"github.com/noah-isme/sma-staff-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-staff-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-staff-api/pkg/middleware/requestid"
)

// @title SMA Staff API
// @version 1.0.0
// @description Staff records, class and subject teacher assignments, qualification checks and workload analytics
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type handlers struct {
	staff         *handler.StaffHandler
	assignments   *handler.StaffAssignmentHandler
	qualification *handler.QualificationHandler
	workload      *handler.WorkloadHandler
	metrics       *handler.MetricsHandler
}

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
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, workload cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	staffRepo := repository.NewStaffRepository(db)
	codeRepo := repository.NewStaffCodeRepository(db)
	assignmentRepo := repository.NewStaffAssignmentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassRepository(db)
	yearRepo := repository.NewAcademicYearRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	cacheRepo := repository.NewCacheRepository(redisClient, "staff-api", logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Workload.CacheTTL, logr, redisClient != nil)

	codeGenerator := service.NewStaffCodeGenerator(codeRepo, cfg.Staff, metricsSvc, logr)
	staffSvc := service.NewStaffService(staffRepo, codeGenerator, auditRepo, cfg.Staff, validate, metricsSvc, logr, service.WithStaffCache(cacheSvc))

	specializations := service.DefaultSpecializationTable().WithOverrides(cfg.Workload.SpecializationMap)
	qualificationValidator := service.NewQualificationValidator(staffRepo, subjectRepo, classRepo, specializations, cfg.Workload.BatchWarnThreshold, logr)
	assignmentSvc := service.NewStaffAssignmentService(assignmentRepo, qualificationValidator, auditRepo, cacheSvc, metricsSvc, cfg.Workload, validate, logr)
	workloadSvc := service.NewWorkloadService(staffRepo, assignmentRepo, yearRepo, cacheSvc, cfg.Workload.CacheTTL, logr, service.WithWorkloadMetrics(metricsSvc))

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	h := handlers{
		staff:         handler.NewStaffHandler(staffSvc),
		assignments:   handler.NewStaffAssignmentHandler(assignmentSvc),
		qualification: handler.NewQualificationHandler(qualificationValidator, validate),
		workload:      handler.NewWorkloadHandler(workloadSvc),
		metrics:       handler.NewMetricsHandler(metricsSvc),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), h, tokens)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "code_sequence", cfg.Staff.SequenceMode)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerRoutes(api *gin.RouterGroup, h handlers, tokens *service.TokenService) {
	api.Use(middleware.JWT(tokens))

	read := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin, models.RoleTeacher)
	write := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	api.GET("/metrics/summary", write, h.metrics.Summary)

	staff := api.Group("/staff")
	staff.GET("", read, h.staff.List)
	staff.POST("", write, h.staff.Create)
	staff.POST("/bulk", write, h.staff.BulkCreate)
	staff.GET("/:id", read, h.staff.Get)
	staff.PUT("/:id", write, h.staff.Update)
	staff.PATCH("/:id/status", write, h.staff.UpdateStatus)
	staff.DELETE("/:id", write, h.staff.Delete)
	staff.GET("/:id/assignments", read, h.assignments.ListByStaff)
	staff.GET("/:id/workload", read, h.workload.StaffWorkload)
	staff.POST("/:id/validate/subject", read, h.qualification.ValidateSubject)
	staff.POST("/:id/validate/class-teacher", read, h.qualification.ValidateClassTeacher)
	staff.POST("/:id/validate/batch", read, h.qualification.ValidateBatch)

	assignments := api.Group("/assignments")
	assignments.POST("", write, h.assignments.Assign)
	assignments.GET("/history", read, h.assignments.History)
	assignments.GET("/:id", read, h.assignments.Get)
	assignments.POST("/:id/end", write, h.assignments.End)
	assignments.DELETE("/:id", write, h.assignments.Delete)

	api.GET("/workload/distribution", read, h.workload.Distribution)
}
