package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"cellcommdb/config"
	"cellcommdb/services"
	"cellcommdb/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logging, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	db, err := storage.OpenDB(cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.", zap.String("driver", cfg.DBDriver))

	if cfg.DBAutoMigrate {
		logging.Info("Running database auto-migration...")
		if err := storage.Migrate(db); err != nil {
			logging.Fatal("Auto-migration failed", zap.Error(err))
		}
	}

	sources, err := storage.SourcesFromConfig(context.Background(), cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	metrics := services.NewMetrics(prometheus.DefaultRegisterer)
	collector := services.NewCollectService(cfg, db, sources, logging, metrics)

	router := newRouter(cfg, collector, db, logging)

	if cfg.CronSchedule != "" {
		cronScheduler := cron.New()
		_, err := cronScheduler.AddFunc(cfg.CronSchedule, func() {
			logging.Info("Running scheduled collection job...")
			runAllCollections(context.Background(), collector, logging)
		})
		if err != nil {
			logging.Fatal("Invalid cron schedule", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, collector *services.CollectService, db *gorm.DB, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/")
	api.Use(apiKeyAuthMiddleware(cfg))
	setupCollectionRoutes(api, collector)
	setupComplexRoutes(api, db, log)
	return router
}

// runAllCollections lädt erst Proteine, dann Komplexe, damit neue Proteine auflösbar sind.
func runAllCollections(ctx context.Context, collector *services.CollectService, log *zap.Logger) {
	if _, err := collector.LoadProteins(ctx, ""); err != nil {
		log.Error("Scheduled protein collection failed", zap.Error(err))
		return
	}
	if _, err := collector.LoadComplexes(ctx, ""); err != nil {
		log.Error("Scheduled complex collection failed", zap.Error(err))
	}
}

type collectRequest struct {
	File string `json:"file"`
}

func setupCollectionRoutes(rg *gin.RouterGroup, collector *services.CollectService) {
	group := rg.Group("/collections")

	handle := func(load func(context.Context, string) (*services.LoadResult, error)) gin.HandlerFunc {
		return func(c *gin.Context) {
			var req collectRequest
			if c.Request.ContentLength > 0 {
				if err := c.ShouldBindJSON(&req); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
					return
				}
			}
			res, err := load(c.Request.Context(), req.File)
			if err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, services.ErrMissingColumns) || errors.Is(err, services.ErrInvalidFlag) {
					status = http.StatusUnprocessableEntity
				}
				c.JSON(status, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, res)
		}
	}

	group.POST("/complex", handle(collector.LoadComplexes))
	group.POST("/protein", handle(collector.LoadProteins))
}

func setupComplexRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	group := rg.Group("/complexes")

	group.GET("", func(c *gin.Context) {
		complexes, err := services.ListComplexes(c.Request.Context(), db)
		if err != nil {
			log.Error("Database query for complexes failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, complexes)
	})

	group.GET("/:uniprot", func(c *gin.Context) {
		key := c.Param("uniprot")
		view, err := services.GetComplex(c.Request.Context(), db, key)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "complex not found"})
				return
			}
			log.Error("Database query for complex failed", zap.String("uniprot", key), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, view)
	})
}
