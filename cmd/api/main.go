package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/eduadmin/academic-api/api/swagger"
	"github.com/eduadmin/academic-api/internal/handler"
	"github.com/eduadmin/academic-api/internal/middleware"
	"github.com/eduadmin/academic-api/internal/repository"
	"github.com/eduadmin/academic-api/internal/service"
	"github.com/eduadmin/academic-api/pkg/config"
	"github.com/eduadmin/academic-api/pkg/database"
	"github.com/eduadmin/academic-api/pkg/export"
	"github.com/eduadmin/academic-api/pkg/logger"
	corsmiddleware "github.com/eduadmin/academic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/eduadmin/academic-api/pkg/middleware/requestid"
)

// @title Academic Records API
// @version 1.0.0
// @description Backend for managing students, teachers, courses and enrollments.
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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := service.NewValidator()

	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	rosterRepo := repository.NewCourseStudentRepository(db)

	metricsSvc := service.NewMetricsService()
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, teacherRepo, rosterRepo, validate, logr)
	rosterSvc := service.NewRosterService(rosterRepo, courseRepo, validate, logr)
	exportSvc := service.NewExportService(
		courseRepo, rosterRepo, studentRepo, teacherRepo,
		export.NewCSVExporter(), export.NewPDFExporter(),
		cfg.Export.Institution, logr,
	)

	studentHandler := handler.NewStudentHandler(studentSvc, exportSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, exportSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, rosterSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		start := time.Now()
		err := db.Ping()
		metricsSvc.ObserveDBQuery("ping", time.Since(start))
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	students := api.Group("/students")
	students.GET("", studentHandler.List)
	students.POST("", studentHandler.Create)
	students.GET("/export", studentHandler.Export)
	students.GET("/:id", studentHandler.Get)
	students.PUT("/:id", studentHandler.Update)
	students.PATCH("/:id", studentHandler.Patch)
	students.DELETE("/:id", studentHandler.Delete)

	teachers := api.Group("/teachers")
	teachers.GET("", teacherHandler.List)
	teachers.POST("", teacherHandler.Create)
	teachers.GET("/export", teacherHandler.Export)
	teachers.GET("/lookup", teacherHandler.Lookup)
	teachers.GET("/:id", teacherHandler.Get)
	teachers.PUT("/:id", teacherHandler.Update)
	teachers.PATCH("/:id", teacherHandler.Patch)
	teachers.DELETE("/:id", teacherHandler.Delete)

	courses := api.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.POST("", courseHandler.Create)
	courses.GET("/:id", courseHandler.Get)
	courses.PUT("/:id", courseHandler.Update)
	courses.PATCH("/:id", courseHandler.Patch)
	courses.DELETE("/:id", courseHandler.Delete)
	courses.GET("/:id/download", courseHandler.Download)
	courses.POST("/:id/students", courseHandler.AttachStudents)
	courses.DELETE("/:id/students", courseHandler.DetachStudents)
	courses.POST("/:id/teachers", courseHandler.AttachTeachers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
