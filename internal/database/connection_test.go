package database

import (
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "app", Password: "pw", Name: "freshbite", SSLMode: "disable"}
	assert.Equal(t, "host=db user=app password=pw dbname=freshbite port=5432 sslmode=disable", pg.DSN())
	assert.Equal(t, "postgres://app:pw@db:5432/freshbite?sslmode=disable", pg.MigrationURL())

	pg.URL = "postgres://other@db/x"
	assert.Equal(t, "postgres://other@db/x", pg.DSN())
	assert.Equal(t, "postgres://other@db/x", pg.MigrationURL())

	lite := DatabaseConfig{Driver: "sqlite", Path: "/tmp/x.sqlite"}
	assert.Equal(t, "/tmp/x.sqlite", lite.DSN())

	assert.Equal(t, "", (&DatabaseConfig{Driver: "oracle"}).DSN())
	assert.NotContains(t, pg.String(), "pw")
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitDatabaseMigrateAndSeed(t *testing.T) {
	cfg := DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.sqlite")}

	db, err := InitDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db, cfg))

	for _, table := range []string{"users", "recipes", "addresses", "cart_items", "orders", "order_items", "oauth_clients", "oauth_tokens"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, SeedRecipes(db))
	var count int64
	db.Model(&models.Recipe{}).Count(&count)
	assert.Equal(t, int64(5), count)

	// Seeding twice leaves the catalog untouched
	require.NoError(t, SeedRecipes(db))
	db.Model(&models.Recipe{}).Count(&count)
	assert.Equal(t, int64(5), count)
}
