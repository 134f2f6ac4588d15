// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/cart-engine/internal/config"
	"github.com/your-org/cart-engine/internal/domain/cart"
	"github.com/your-org/cart-engine/internal/domain/offline"
	"github.com/your-org/cart-engine/internal/domain/product"
	"github.com/your-org/cart-engine/internal/interfaces/http/handlers"
	"github.com/your-org/cart-engine/internal/interfaces/http/middleware"
	"github.com/your-org/cart-engine/internal/pkg/syncerr"
)

// Dependencies carries the wired domain services the routes need
type Dependencies struct {
	Config       *config.Config
	Logger       *logrus.Logger
	Registry     *cart.Registry
	Validator    *cart.Validator
	Products     *product.Service
	Manager      *offline.Manager
	Connectivity *offline.Connectivity
	Recorder     *syncerr.Recorder
}

// SetupRoutes registers all API routes on the given group
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	SetupProductRoutes(rg, deps)
	SetupCartRoutes(rg, deps)
	SetupSyncRoutes(rg, deps)
}

// SetupProductRoutes sets up catalog related routes
func SetupProductRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Products, deps.Logger)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up cart related routes. Every cart route runs
// behind the session middleware so each client gets its own engine.
func SetupCartRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.Registry, deps.Validator, deps.Products, deps.Logger)

	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.Session(deps.Config))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartGroup.POST("/validate", cartHandler.ValidateCart)
	}
}

// SetupSyncRoutes sets up offline sync related routes
func SetupSyncRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	syncHandler := handlers.NewSyncHandler(deps.Registry, deps.Manager, deps.Connectivity, deps.Recorder, deps.Logger)

	sync := rg.Group("/sync")
	sync.Use(middleware.Session(deps.Config))
	{
		sync.GET("/status", syncHandler.GetStatus)
		sync.POST("/connectivity", syncHandler.SetConnectivity)
		sync.POST("/drain", syncHandler.Drain)
	}
}
