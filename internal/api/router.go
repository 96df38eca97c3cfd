package api

import (
	"time"

	"LifeStats/internal/alias"
	"LifeStats/internal/config"
	"LifeStats/internal/metrics"
	"LifeStats/internal/repository"
	"LifeStats/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services 路由依赖的业务服务
type Services struct {
	DB      *gorm.DB
	Events  *service.EventService
	Stats   *service.StatsService
	Imports *service.ImportService
	Aliases *service.AliasService
}

// NewServices 基于同一个 gorm 连接组装全部服务；observer 可为 nil
func NewServices(db *gorm.DB, cfg *config.Config, registry *alias.Registry, observer service.MutationObserver, logger *logrus.Logger) *Services {
	statsRepo := repository.NewStatsRepository(db)
	events := service.NewEventService(
		repository.NewBathroomRepository(db),
		repository.NewDentalRepository(db),
		statsRepo,
		registry,
		observer,
		logger,
		cfg.Stats.TopNamesLimit,
	)
	return &Services{
		DB:     db,
		Events: events,
		Stats: service.NewStatsService(statsRepo, service.StatsLimits{
			RecentBathroom: cfg.Stats.RecentBathroomLimit,
			RecentDental:   cfg.Stats.RecentDentalLimit,
			Leaderboard:    cfg.Stats.LeaderboardLimit,
		}, logger),
		Imports: service.NewImportService(repository.NewImportRepository(db), events, observer, logger),
		Aliases: service.NewAliasService(repository.NewAliasRepository(db), registry, cfg.Aliases.File, logger),
	}
}

func corsConfig(cfg config.CorsConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	return c
}

// NewRouter 注册全部路由；m 为 nil 时不挂指标中间件与 /metrics
func NewRouter(cfg *config.Config, svcs *Services, m *metrics.Metrics, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), cors.New(corsConfig(cfg.Server.Cors)))
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	// 注册ppof 方便调试和监测性能问题
	if cfg.Server.Pprof {
		pprof.Register(r)
	}

	bathroom := NewBathroomHandler(svcs.Events, logger)
	dental := NewDentalHandler(svcs.Events, logger)
	stats := NewStatsHandler(svcs.Stats, logger)
	mappings := NewMappingHandler(svcs.Aliases, logger)
	imports := NewImportHandler(svcs.Imports, logger)
	exports := NewExportHandler(svcs.Events, logger)
	health := NewHealthHandler(svcs.DB, logger)

	api := r.Group("/api")
	api.GET("/health", health.Health)

	api.GET("/bathroom", bathroom.List)
	api.POST("/bathroom", bathroom.Create)
	api.GET("/bathroom/:id", bathroom.Get)
	api.PUT("/bathroom/:id", bathroom.Update)
	api.DELETE("/bathroom/:id", bathroom.Delete)
	api.GET("/events", bathroom.List)
	api.POST("/event", bathroom.CreateLegacy)
	api.GET("/top-names", bathroom.TopNames)

	api.GET("/dental", dental.List)
	api.POST("/dental", dental.Create)
	api.GET("/dental/:id", dental.Get)
	api.PUT("/dental/:id", dental.Update)
	api.DELETE("/dental/:id", dental.Delete)
	api.GET("/toothbrush", dental.List)
	api.POST("/toothbrush", dental.Create)

	api.GET("/stats", stats.Snapshot)
	api.GET("/leaderboard", stats.Leaderboard)

	api.GET("/mappings", mappings.List)
	api.POST("/mappings", mappings.Replace)

	api.POST("/import/bathroom", imports.ImportBathroom)
	api.POST("/import/dental", imports.ImportDental)
	api.POST("/import/forms", imports.ImportForms)
	api.GET("/imports", imports.ListBatches)

	api.GET("/export/bathroom.csv", exports.Bathroom)
	api.GET("/export/dental.csv", exports.Dental)

	return r
}
