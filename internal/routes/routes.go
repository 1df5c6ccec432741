package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"price-compare/internal/handlers"
	"price-compare/internal/middleware"
)

// NewRouter crea el engine de gin con middlewares y rutas.
func NewRouter(h *handlers.Handler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))
	RegisterRoutes(router, h)
	return router
}

func RegisterRoutes(router *gin.Engine, h *handlers.Handler) {
	router.GET("/healthz", h.Health)
	router.GET("/docs", h.Docs)

	api := router.Group("/api")
	{
		api.GET("/search", h.Search)
		api.GET("/stores", h.ListStores)
		api.GET("/recent-searches", h.RecentSearches)
		api.GET("/products/:id", h.GetProduct)
		api.POST("/users", h.CreateUser)
		api.GET("/users/:id", h.GetUser)
	}
}
