package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/franciscosanchezn/freshbite-api/docs" // Import generated docs
	"github.com/franciscosanchezn/freshbite-api/internal/auth"
	"github.com/franciscosanchezn/freshbite-api/internal/config"
	"github.com/franciscosanchezn/freshbite-api/internal/controllers"
	"github.com/franciscosanchezn/freshbite-api/internal/database"
	"github.com/franciscosanchezn/freshbite-api/internal/geo"
	"github.com/franciscosanchezn/freshbite-api/internal/payment"
	"github.com/franciscosanchezn/freshbite-api/internal/server"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	db            *gorm.DB
	configuration *config.Config
)

// @title FreshBite API
// @version 1.0
// @description Food ordering storefront: catalog, cart, checkout, payments, addresses and delivery tracking
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration = loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	// Initialize database connection
	setupDatabase(configuration)

	if err := os.MkdirAll(configuration.UploadDir, 0o755); err != nil {
		log.WithError(err).Fatal("Could not create upload directory")
	}

	// Initialize Gin router
	app := server.New(db, serverOptions(configuration))

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	checkPanicErr(app.Engine.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger sets the log level of every package from APP_ENV, overridden by LOG_LEVEL when it parses
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})
	level := config.LevelForEnvironment(conf.Environment)
	if os.Getenv("LOG_LEVEL") != "" {
		if parsed, err := log.ParseLevel(conf.LogLevel); err == nil {
			level = parsed
		} else {
			log.WithField("log_level", conf.LogLevel).Warn("Unknown LOG_LEVEL, keeping environment default")
		}
	}
	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.SetLevel(level)
	for _, setLevel := range []func(log.Level){
		auth.SetLevel,
		controllers.SetLevel,
		database.SetLevel,
		geo.SetLevel,
		payment.SetLevel,
		server.SetLevel,
		services.SetLevel,
	} {
		setLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database, brings the schema up to date and seeds the catalog
func setupDatabase(conf *config.Config) *gorm.DB {
	dbConfig := database.FromAppConfig(conf)

	var err error
	db, err = database.InitDatabase(dbConfig)
	checkPanicErr(err)

	checkPanicErr(database.Migrate(db, dbConfig))

	if conf.DBSeed {
		checkPanicErr(database.SeedRecipes(db))
	}

	// Tokens that expired while the server was down are never looked up again
	purged, err := auth.NewGormTokenStore(db).PurgeExpired(context.Background(), time.Now())
	if err != nil {
		log.WithError(err).Warn("Could not purge expired access tokens")
	} else if purged > 0 {
		log.WithField("count", purged).Info("Purged expired access tokens")
	}
	return db
}

// serverOptions maps the configuration onto the router collaborators
func serverOptions(conf *config.Config) server.Options {
	if !conf.PaymentConfigured() {
		log.Warn("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET not set, payments run in mock mode")
	}

	return server.Options{
		JWTSecret:   conf.JWTSecret,
		TokenExpiry: conf.JWTExpiry,
		UploadDir:   conf.UploadDir,
		CORSOrigins: conf.CORSOrigins,
		Store: services.StoreLocation{
			Label:            conf.StoreLabel,
			FormattedAddress: conf.StoreAddress,
			Latitude:         conf.StoreLatitude,
			Longitude:        conf.StoreLongitude,
		},
		Payment: payment.NewProvider(payment.RazorpayConfig{
			KeyID:     conf.RazorpayKeyID,
			KeySecret: conf.RazorpayKeySecret,
			APIURL:    conf.RazorpayAPIURL,
		}),
		Geocoder: geo.NewNominatimClient(conf.NominatimURL, conf.GeoUserAgent, nil),
		Router:   geo.NewOSRMClient(conf.OSRMURL, nil),
	}
}
