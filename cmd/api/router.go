package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/roomplan-api/api/swagger"
	"github.com/noah-isme/roomplan-api/internal/handler"
	"github.com/noah-isme/roomplan-api/internal/middleware"
	"github.com/noah-isme/roomplan-api/internal/repository"
	"github.com/noah-isme/roomplan-api/internal/service"
	"github.com/noah-isme/roomplan-api/pkg/config"
	"github.com/noah-isme/roomplan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/roomplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/roomplan-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, metrics *service.MetricsService, cacheSvc *service.CacheService, notifier *service.ChangeNotifier) *gin.Engine {
	location := cfg.Schedule.Location()
	validate := service.NewValidator()

	buildingRepo := repository.NewBuildingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	buildingSvc := service.NewBuildingService(buildingRepo, validate, notifier, logr)
	roomSvc := service.NewRoomService(roomRepo, buildingRepo, validate, notifier, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, notifier, logr)
	bookingSvc := service.NewBookingService(bookingRepo, roomRepo, teacherRepo, validate, notifier, service.BookingConfig{
		Location: location,
		Metrics:  metrics,
	}, logr)
	liveSvc := service.NewLiveService(bookingRepo, cacheSvc, metrics, service.LiveConfig{
		Location:        location,
		RefreshInterval: cfg.Schedule.LiveRefreshInterval,
		CacheTTL:        cfg.Cache.LiveTTL,
	}, logr)
	exportSvc := service.NewExportService(bookingSvc, location, logr)

	buildingHandler := handler.NewBuildingHandler(buildingSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	timetableHandler := handler.NewTimetableHandler(bookingSvc, exportSvc)
	liveHandler := handler.NewLiveHandler(liveSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/metrics/summary", metricsHandler.Summary)

	buildings := api.Group("/buildings", middleware.Audit(logr, "building"))
	buildings.GET("", buildingHandler.List)
	buildings.GET("/:id", buildingHandler.Get)
	buildings.POST("", buildingHandler.Create)
	buildings.PUT("/:id", buildingHandler.Update)
	buildings.DELETE("/:id", buildingHandler.Delete)

	rooms := api.Group("/rooms", middleware.Audit(logr, "room"))
	rooms.GET("", roomHandler.List)
	rooms.GET("/by-building/:id", roomHandler.ListByBuilding)
	rooms.GET("/:id", roomHandler.Get)
	rooms.POST("", roomHandler.Create)
	rooms.PUT("/:id", roomHandler.Update)
	rooms.DELETE("/:id", roomHandler.Delete)

	teachers := api.Group("/teachers", middleware.Audit(logr, "teacher"))
	teachers.GET("", teacherHandler.List)
	teachers.GET("/:id", teacherHandler.Get)
	teachers.POST("", teacherHandler.Create)
	teachers.PUT("/:id", teacherHandler.Update)
	teachers.DELETE("/:id", teacherHandler.Delete)

	timetable := api.Group("/timetable", middleware.Audit(logr, "booking"))
	timetable.GET("", timetableHandler.List)
	timetable.GET("/export", timetableHandler.Export)
	timetable.GET("/:id", timetableHandler.Get)
	timetable.POST("", timetableHandler.Create)
	timetable.PUT("/:id", timetableHandler.Update)
	timetable.DELETE("/:id", timetableHandler.Delete)

	api.GET("/live", liveHandler.Page)
	api.GET("/live/data", liveHandler.Data)

	if cfg.FrontendDir != "" {
		serveFrontend(r, cfg.FrontendDir, logr)
	}

	return r
}

// serveFrontend serves the built single page app and falls back to its index for client routes.
func serveFrontend(r *gin.Engine, dir string, logr *zap.Logger) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logr.Warn("frontend directory has no index.html, static serving disabled", zap.String("dir", dir), zap.Error(err))
		return
	}
	fs := http.Dir(dir)
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		clean := filepath.Clean("/" + strings.TrimPrefix(c.Request.URL.Path, "/"))
		if f, err := fs.Open(clean); err == nil {
			stat, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !stat.IsDir() {
				c.FileFromFS(clean, fs)
				return
			}
		}
		c.File(index)
	})
}
