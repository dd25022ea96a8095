package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLevel aligns the package logger with the application log level
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// connectBackoff is the wait before each retry; its length bounds the number of attempts
var connectBackoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}

// gormConfig silences gorm's own logger unless debug logging is enabled
func gormConfig() *gorm.Config {
	level := logger.Silent
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}

// dialector picks the gorm driver for cfg.Driver
func dialector(cfg DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite", "":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", cfg.Driver)
	}
}

// InitDatabase opens the configured database and verifies it answers a ping.
// Connection failures are retried with a doubling delay; the pool is sized for the driver.
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"db_driver": dial.Name(), "db_host": cfg.Host, "db_name": cfg.Name, "db_path": cfg.Path}
	log.WithFields(fields).Info("Initializing database connection")

	attempts := len(connectBackoff) + 1
	for attempt := 1; ; attempt++ {
		db, sqlDB, err := connect(dial)
		if err == nil {
			configureConnectionPool(sqlDB, dial.Name())
			log.WithFields(fields).WithField("attempt", attempt).Info("Database initialized successfully")
			return db, nil
		}
		if attempt == attempts {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
		}

		delay := connectBackoff[attempt-1]
		log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn("Database connection attempt failed, retrying")
		time.Sleep(delay)
	}
}

func connect(dial gorm.Dialector) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(dial, gormConfig())
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return db, sqlDB, nil
}

// configureConnectionPool sizes the pool: SQLite has a single writer, so it gets one connection
func configureConnectionPool(sqlDB *sql.DB, driver string) {
	maxOpen, maxIdle := 25, 5
	if driver == "sqlite" {
		maxOpen, maxIdle = 1, 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.WithFields(logrus.Fields{
		"max_open_conns":    maxOpen,
		"max_idle_conns":    maxIdle,
		"conn_max_lifetime": "5m",
	}).Debug("Connection pool configured")
}
