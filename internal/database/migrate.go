package database

import (
	"errors"
	"fmt"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models lists every table the service owns, parents first
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Recipe{},
		&models.Address{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.CourierClient{},
		&models.OAuthToken{},
	}
}

// Migrate brings the schema up to date. Postgres deployments can opt into versioned SQL
// migrations; everything else uses gorm's AutoMigrate.
func Migrate(db *gorm.DB, cfg DatabaseConfig) error {
	if cfg.Migrations && (cfg.Driver == "postgres" || cfg.Driver == "postgresql") {
		return RunMigrations(cfg)
	}

	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	log.Info("Schema migrated with AutoMigrate")
	return nil
}

// RunMigrations executes the SQL migrations in cfg.MigrationsDir with golang-migrate
func RunMigrations(cfg DatabaseConfig) error {
	source := "file://" + cfg.MigrationsDir
	log.WithField("source", source).Info("Running SQL migrations")

	m, err := migrate.New(source, cfg.MigrationURL())
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("SQL migrations applied")
	return nil
}

// SeedRecipes fills an empty catalog with the starter menu
func SeedRecipes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Recipe{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Catalog already seeded with initial data")
		return nil
	}

	log.Info("Catalog is empty, seeding initial data")
	recipes := []models.Recipe{
		{Name: "Margherita Pizza", Description: "Tomato sauce, mozzarella and fresh basil", Price: 10.99, Category: "pizza", Rating: 4.6, ImageURL: "/images/margherita.jpg"},
		{Name: "Paneer Tikka Bowl", Description: "Charred paneer over jeera rice with mint chutney", Price: 8.49, Category: "bowls", Offer: "10% off", Rating: 4.4, ImageURL: "/images/paneer-bowl.jpg"},
		{Name: "Chicken Biryani", Description: "Slow cooked dum biryani with raita", Price: 12.99, Category: "rice", Rating: 4.8, ImageURL: "/images/biryani.jpg"},
		{Name: "Masala Dosa", Description: "Crispy dosa with potato masala, sambar and chutneys", Price: 6.5, Category: "breakfast", Rating: 4.5, ImageURL: "/images/dosa.jpg"},
		{Name: "Mango Lassi", Description: "Chilled yoghurt smoothie with Alphonso mango", Price: 3.99, Category: "drinks", Offer: "Buy 1 get 1", Rating: 4.7, ImageURL: "/images/lassi.jpg"},
	}
	if err := db.Create(&recipes).Error; err != nil {
		return err
	}
	log.WithField("count", len(recipes)).Info("Catalog seeded successfully")
	return nil
}
