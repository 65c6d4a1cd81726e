// Package api wires the HTTP service: model builds, LP download, solution
// upload and technology listing.
package api

import (
	"net/http"

	"energyhub/internal/api/handlers"
	"energyhub/internal/api/middleware"
	"energyhub/internal/build"
	"energyhub/internal/results"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Log            *zap.Logger
	Engine         *build.Engine
	Cache          *handlers.ModelCache
	Store          *results.Store
	TechnologyDir  string
	AllowedOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Engine == nil {
		d.Engine = build.New(d.Log, 0)
	}

	router := gin.New()
	router.Use(middleware.CORS(d.AllowedOrigins))
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))

	techHandler := handlers.NewTechnologyHandler(d.TechnologyDir, d.Log)
	modelHandler := handlers.NewModelHandler(d.Engine, d.Cache, d.Store, techHandler, d.Log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "models": d.Cache.Len()})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/technologies", techHandler.ListTechnologies)

		api.POST("/models", modelHandler.BuildModel)
		api.GET("/models/:id/lp", modelHandler.GetLP)
		api.POST("/models/:id/solution", modelHandler.SubmitSolution)
		api.DELETE("/models/:id", modelHandler.DeleteModel)

		api.GET("/runs/:run_id/series", modelHandler.GetSeries)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})

	return router
}
