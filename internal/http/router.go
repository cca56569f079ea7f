package api

import (
	stdhttp "net/http"

	intconfig "repairshop/internal/config"
	h "repairshop/internal/http/handlers"
	"repairshop/internal/http/middleware"
	"repairshop/internal/services"
	"repairshop/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the wired services behind the routes.
type Deps struct {
	Catalog   services.CatalogService
	Inventory services.InventoryService
	Admins    h.AdminFinder
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	storefront := h.CatalogHandler{Catalog: deps.Catalog, DefaultPerPage: env.DefaultPageSize}
	inventory := h.InventoryHandler{Inventory: deps.Inventory, DefaultPerPage: env.DefaultPageSize}
	auth := h.AuthHandler{Users: deps.Admins, Secret: env.JWTSecret}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		api.POST("/auth/login", auth.Login)

		cat := api.Group("/catalog")
		cat.GET("/items/:id", storefront.Item)
		cat.GET("/:kind", storefront.Browse)
		cat.GET("/:kind/facets", storefront.Facets)
		cat.GET("/:kind/featured", storefront.Featured)

		admin := api.Group("/admin", middleware.AuthRequired(env.JWTSecret), middleware.RequireRoles("owner", "admin"))
		admin.GET("/inventory", inventory.List)
		admin.GET("/inventory/low-stock", inventory.LowStock)
		admin.GET("/inventory/low-stock/report", inventory.LowStockReport)
		admin.POST("/inventory", inventory.Create)
		admin.PUT("/inventory/:id", inventory.Update)
		admin.DELETE("/inventory/:id", inventory.Delete)
		admin.POST("/inventory/:id/stock", inventory.AdjustStock)
		admin.POST("/cache/invalidate", inventory.InvalidateCache)
	}

	return r
}
