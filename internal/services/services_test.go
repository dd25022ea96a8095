package services

import (
	"fmt"
	"testing"

	"github.com/franciscosanchezn/freshbite-api/internal/database"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	user := &models.User{
		Username:     name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestRecipe(t *testing.T, db *gorm.DB, name string, price float64) *models.Recipe {
	recipe := &models.Recipe{Name: name, Price: price, Category: "mains", ImageURL: "/images/" + name + ".jpg"}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

func coords(lat, lng float64) (*float64, *float64) {
	return &lat, &lng
}

func addressInput(label string) AddressInput {
	lat, lng := coords(12.97, 80.15)
	return AddressInput{
		Label:            label,
		AddressLine:      label + " street",
		FormattedAddress: label + " street, Chennai",
		City:             "Chennai",
		Latitude:         lat,
		Longitude:        lng,
	}
}

func boolPtr(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }

func float64Ptr(f float64) *float64 { return &f }

// defaultCount returns how many addresses of the user carry the default flag
func defaultCount(t *testing.T, db *gorm.DB, userID uint) int64 {
	var n int64
	require.NoError(t, db.Model(&models.Address{}).Where("user_id = ? AND is_default = ?", userID, true).Count(&n).Error)
	return n
}
