package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hostelworks/hostel-core-api/api/swagger"
	"github.com/hostelworks/hostel-core-api/internal/handler"
	"github.com/hostelworks/hostel-core-api/internal/middleware"
	"github.com/hostelworks/hostel-core-api/internal/repository"
	"github.com/hostelworks/hostel-core-api/internal/service"
	"github.com/hostelworks/hostel-core-api/pkg/cache"
	"github.com/hostelworks/hostel-core-api/pkg/config"
	"github.com/hostelworks/hostel-core-api/pkg/database"
	"github.com/hostelworks/hostel-core-api/pkg/export"
	"github.com/hostelworks/hostel-core-api/pkg/logger"
	corsmiddleware "github.com/hostelworks/hostel-core-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hostelworks/hostel-core-api/pkg/middleware/requestid"
)

// @title Hostel Core API
// @version 1.0.0
// @description Attendance lifecycle, checkout deduction rules, financial ledger and deduction statistics
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The statistics cache degrades to direct computation without Redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	attendanceRepo := repository.NewAttendanceRepository(db)
	ruleRepo := repository.NewCheckoutRuleRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	personRepo := repository.NewPersonRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Statistics.CacheTTL, logr, redisClient != nil)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, personRepo, validate, logr)
	ruleSvc := service.NewCheckoutRuleService(ruleRepo, ledgerRepo, personRepo, validate, logr)
	deductionSvc := service.NewDeductionService(ruleSvc, personRepo, cfg.Deductions.PreviewDurationsHours, logr)
	ledgerSvc := service.NewLedgerService(ledgerRepo, attendanceRepo, ruleRepo, cacheSvc, validate, logr)
	statisticsSvc := service.NewStatisticsService(ledgerRepo, cacheSvc, metricsSvc, cfg.Statistics, logr)

	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	ruleHandler := handler.NewCheckoutRuleHandler(ruleSvc)
	deductionHandler := handler.NewDeductionHandler(deductionSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc)
	statisticsHandler := handler.NewStatisticsHandler(statisticsSvc, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Statistics.ExportEnabled)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		attendance := api.Group("/attendance")
		{
			attendance.POST("/check-in", attendanceHandler.CheckIn)
			attendance.POST("/check-out", attendanceHandler.RequestCheckout)
			attendance.POST("/:id/approve", attendanceHandler.Approve)
			attendance.POST("/:id/decline", attendanceHandler.Decline)
			attendance.GET("/:id", attendanceHandler.Get)
			attendance.GET("", attendanceHandler.List)
		}

		rules := api.Group("/checkout-rules")
		{
			rules.POST("", ruleHandler.Create)
			rules.GET("", ruleHandler.List)
			rules.GET("/active", ruleHandler.Active)
			rules.POST("/:id/activate", ruleHandler.Activate)
			rules.POST("/:id/deactivate", ruleHandler.Deactivate)
			rules.DELETE("/:id", ruleHandler.Delete)
		}

		deductions := api.Group("/deductions")
		{
			deductions.GET("/preview", deductionHandler.Preview)
			deductions.GET("/preview-table", deductionHandler.PreviewTable)
		}

		ledger := api.Group("/ledger")
		{
			ledger.POST("", ledgerHandler.Record)
			ledger.GET("", ledgerHandler.List)
			ledger.GET("/:id", ledgerHandler.Get)
			ledger.PATCH("/:id", ledgerHandler.Correct)
		}

		statistics := api.Group("/statistics")
		{
			statistics.GET("/deductions", statisticsHandler.Deductions)
			statistics.GET("/deductions/export", statisticsHandler.Export)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
