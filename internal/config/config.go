package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(LevelForEnvironment(GetEnvWithDefault("APP_ENV", "development")))
}

// LevelForEnvironment maps APP_ENV to the default log level
func LevelForEnvironment(environment string) logrus.Level {
	switch environment {
	case "development":
		return logrus.DebugLevel
	case "production":
		return logrus.ErrorLevel
	default:
		// Default to info level for other environments
		return logrus.InfoLevel
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string   `json:"environment"`
	Port        int      `json:"port"`
	Host        string   `json:"host"`
	UploadDir   string   `json:"upload_dir"`
	CORSOrigins []string `json:"cors_origins"`

	// Database configuration
	DBDriver      string `json:"db_driver"`
	DBPath        string `json:"db_path"`
	DBHost        string `json:"db_host"`
	DBPort        string `json:"db_port"`
	DBName        string `json:"db_name"`
	DBUser        string `json:"db_user"`
	DBPassword    string `json:"db_password"`
	DBSSLMode     string `json:"db_sslmode"`
	DatabaseURL   string `json:"database_url"`
	DBMigrations  bool   `json:"db_migrations"`
	DBSeed        bool   `json:"db_seed"`
	MigrationsDir string `json:"migrations_dir"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret string        `json:"jwt_secret"`
	JWTExpiry time.Duration `json:"jwt_expiry"`

	// Payment provider; both keys empty selects the mock provider
	RazorpayKeyID     string `json:"razorpay_key_id"`
	RazorpayKeySecret string `json:"razorpay_key_secret"`
	RazorpayAPIURL    string `json:"razorpay_api_url"`

	// Maps
	NominatimURL string `json:"nominatim_url"`
	OSRMURL      string `json:"osrm_url"`
	GeoUserAgent string `json:"geo_user_agent"`

	// Kitchen the deliveries start from
	StoreLatitude  float64 `json:"store_latitude"`
	StoreLongitude float64 `json:"store_longitude"`
	StoreLabel     string  `json:"store_label"`
	StoreAddress   string  `json:"store_address"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DBPath: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DatabaseURL: %s, LogLevel: %s, JWTSecret: [REDACTED], RazorpayKeyID: %s, RazorpayKeySecret: [REDACTED], NominatimURL: %s, OSRMURL: %s}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBPath, c.DBHost, c.DBName, c.DBUser, maskDatabaseURL(c.DatabaseURL),
		c.LogLevel, c.RazorpayKeyID, c.NominatimURL, c.OSRMURL)
}

// PaymentConfigured reports whether real payment provider credentials are present
func (c *Config) PaymentConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DATABASE_URL and the store coordinates
// Returns an error if any environment variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	jwtExpiryHours, err := strconv.Atoi(GetEnvWithDefault("JWT_EXPIRE_HOURS", "168"))
	if err != nil || jwtExpiryHours <= 0 {
		return nil, fmt.Errorf("invalid JWT_EXPIRE_HOURS: %q", os.Getenv("JWT_EXPIRE_HOURS"))
	}

	storeLat, err := strconv.ParseFloat(GetEnvWithDefault("STORE_LATITUDE", "12.96762"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_LATITUDE: %w", err)
	}
	storeLng, err := strconv.ParseFloat(GetEnvWithDefault("STORE_LONGITUDE", "80.15031"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_LONGITUDE: %w", err)
	}

	config := &Config{
		Environment:       GetEnvWithDefault("APP_ENV", "development"),
		Port:              port,
		Host:              GetEnvWithDefault("APP_HOST", "localhost"),
		UploadDir:         GetEnvWithDefault("UPLOAD_DIR", "uploads"),
		CORSOrigins:       splitList(GetEnvWithDefault("CORS_ORIGINS", "*")),
		DBDriver:          strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
		DBPath:            GetEnvWithDefault("DB_PATH", "freshbite.sqlite"),
		DBHost:            GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:            GetEnvWithDefault("DB_PORT", "5432"),
		DBName:            GetEnvWithDefault("DB_NAME", "freshbite"),
		DBUser:            GetEnvWithDefault("DB_USER", "postgres"),
		DBPassword:        GetEnvWithDefault("DB_PASSWORD", ""),
		DBSSLMode:         GetEnvWithDefault("DB_SSLMODE", "disable"),
		DatabaseURL:       dbURL,
		DBMigrations:      GetEnvAsType("DB_MIGRATIONS", false),
		DBSeed:            GetEnvAsType("DB_SEED", true),
		MigrationsDir:     GetEnvWithDefault("MIGRATIONS_DIR", "migrations"),
		LogLevel:          GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:         GetEnvWithDefault("JWT_SECRET", "secret"),
		JWTExpiry:         time.Duration(jwtExpiryHours) * time.Hour,
		RazorpayKeyID:     GetEnvWithDefault("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: GetEnvWithDefault("RAZORPAY_KEY_SECRET", ""),
		RazorpayAPIURL:    GetEnvWithDefault("RAZORPAY_API_URL", "https://api.razorpay.com"),
		NominatimURL:      GetEnvWithDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		OSRMURL:           GetEnvWithDefault("OSRM_URL", "https://router.project-osrm.org"),
		GeoUserAgent:      GetEnvWithDefault("GEO_USER_AGENT", "FreshBite/1.0 (contact@freshbite.app)"),
		StoreLatitude:     storeLat,
		StoreLongitude:    storeLng,
		StoreLabel:        GetEnvWithDefault("STORE_LABEL", "Kitchen Hub"),
		StoreAddress:      GetEnvWithDefault("STORE_ADDRESS", "Pallavaram Saravana Stores, Chennai"),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case float64:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return any(floatValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
