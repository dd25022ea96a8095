// Package server assembles the HTTP API: services, controllers, middleware and routes.
package server

import (
	"net/http"
	"slices"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/auth"
	"github.com/franciscosanchezn/freshbite-api/internal/controllers"
	"github.com/franciscosanchezn/freshbite-api/internal/geo"
	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/franciscosanchezn/freshbite-api/internal/payment"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// SetLevel aligns the package logger with the application log level
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Options carries the collaborators and settings the router is built from
type Options struct {
	JWTSecret   string
	TokenExpiry time.Duration
	UploadDir   string
	CORSOrigins []string
	Store       services.StoreLocation
	Payment     payment.Provider
	Geocoder    geo.Geocoder
	Router      geo.Router
}

// App holds the services behind the router so callers can reuse them
type App struct {
	Engine *gin.Engine
	OAuth  *auth.OAuthService

	Users     services.UserService
	Addresses services.AddressService
	Cart      services.CartService
	Orders    services.OrderService
	Recipes   services.RecipeService
	Clients   services.ClientService
	Delivery  services.DeliveryService
}

// New wires the services over db and registers every route
func New(db *gorm.DB, opts Options) *App {
	app := &App{
		OAuth:     auth.NewOAuthService(db, opts.JWTSecret, opts.TokenExpiry),
		Users:     services.NewUserService(db),
		Addresses: services.NewAddressService(db),
		Cart:      services.NewCartService(db),
		Orders:    services.NewOrderService(db),
		Recipes:   services.NewRecipeService(db),
		Clients:   services.NewClientService(db),
	}
	app.Delivery = services.NewDeliveryService(app.Addresses, app.Orders, opts.Router, opts.Store)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	router.MaxMultipartMemory = controllers.MaxUploadSize

	setupRoutes(router, app, opts)
	app.Engine = router
	return app
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, app *App, opts Options) {
	router.GET("/health", healthCheckHandler)
	router.Static("/uploads", opts.UploadDir)

	authController := controllers.NewAuthController(app.Users, opts.JWTSecret, opts.TokenExpiry, opts.UploadDir)
	addressController := controllers.NewAddressController(app.Addresses, opts.Geocoder)
	cartController := controllers.NewCartController(app.Cart)
	orderController := controllers.NewOrderController(app.Orders)
	paymentController := controllers.NewPaymentController(opts.Payment)
	deliveryController := controllers.NewDeliveryController(app.Delivery)
	membershipController := controllers.NewMembershipController(app.Users)
	recipeController := controllers.NewRecipeController(app.Recipes)
	clientController := controllers.NewClientController(app.Clients)

	requireAuth := middleware.BearerAuth([]byte(opts.JWTSecret), app.OAuth.Tokens())
	customers := middleware.RequireRole(models.RoleUser, models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/oauth/token", app.OAuth.HandleToken)

		authApi := v1.Group("/auth")
		{
			authApi.POST("/register", authController.Register)
			authApi.POST("/login", authController.Login)
			authApi.GET("/me", requireAuth, customers, authController.Me)
			authApi.PUT("/update", requireAuth, customers, authController.UpdateProfile)
		}

		recipesApi := v1.Group("/recipes")
		{
			recipesApi.GET("", recipeController.GetAllRecipes)
			recipesApi.GET("/:id", recipeController.GetRecipeByID)
		}

		membershipApi := v1.Group("/membership")
		{
			membershipApi.GET("/benefits", membershipController.Benefits)
			membershipApi.GET("", requireAuth, customers, membershipController.Get)
			membershipApi.POST("/upgrade", requireAuth, customers, membershipController.Upgrade)
		}

		addressApi := v1.Group("/addresses")
		{
			// geocoding helpers are public so the registration form can use them
			addressApi.GET("/search", addressController.Search)
			addressApi.GET("/reverse", addressController.Reverse)

			owned := addressApi.Group("", requireAuth, customers)
			owned.GET("/primary", addressController.Primary)
			owned.GET("", addressController.List)
			owned.POST("", addressController.Create)
			owned.PUT("/:id", addressController.Update)
			owned.DELETE("/:id", addressController.Delete)
			owned.POST("/:id/default", addressController.SetDefault)
		}

		cartApi := v1.Group("/cart", requireAuth, customers)
		{
			cartApi.GET("", cartController.Get)
			cartApi.POST("/add", cartController.Add)
			cartApi.PUT("/update/:id", cartController.UpdateQuantity)
			cartApi.DELETE("/remove/:id", cartController.Remove)
			cartApi.DELETE("/clear", cartController.Clear)
		}

		ordersApi := v1.Group("/orders", requireAuth, customers)
		{
			ordersApi.POST("/create", orderController.Create)
			ordersApi.GET("", orderController.List)
			ordersApi.GET("/:id", orderController.Get)
			ordersApi.PUT("/:id/status", orderController.UpdateStatus)
		}

		paymentApi := v1.Group("/payment")
		{
			paymentApi.GET("/key", paymentController.Key)
			paymentApi.POST("/create-order", requireAuth, customers, paymentController.CreateOrder)
			paymentApi.POST("/verify", requireAuth, customers, paymentController.Verify)
		}

		deliveryApi := v1.Group("/delivery", requireAuth, customers)
		{
			deliveryApi.GET("/route", deliveryController.Route)
			deliveryApi.GET("/track/:orderId", deliveryController.Track)
		}

		courierApi := v1.Group("/courier", requireAuth, middleware.RequireRole(models.RoleCourier))
		{
			courierApi.PUT("/orders/:id/status", orderController.CourierUpdateStatus)
		}

		adminApi := v1.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin))
		{
			adminApi.POST("/recipes", recipeController.CreateRecipe)
			adminApi.PUT("/recipes/:id", recipeController.UpdateRecipe)
			adminApi.DELETE("/recipes/:id", recipeController.DeleteRecipe)

			adminApi.POST("/couriers", clientController.CreateClient)
			adminApi.GET("/couriers", clientController.ListClients)
			adminApi.DELETE("/couriers/:id", clientController.DeleteClient)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "freshbite-api",
	})
}
