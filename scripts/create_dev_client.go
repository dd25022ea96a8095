package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/freshbite-api/internal/config"
	"github.com/franciscosanchezn/freshbite-api/internal/database"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Parse command line flags
	name := flag.String("name", "Development Courier", "Courier display name")
	email := flag.String("email", "courier@freshbite.local", "Courier account email")
	scopes := flag.String("scopes", services.DefaultCourierScopes, "Space separated scopes")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	dbConfig := database.FromAppConfig(conf)
	db, err := database.InitDatabase(dbConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db, dbConfig); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	client, secret, err := services.NewClientService(db).CreateCourierClient(context.Background(), services.CourierRegistration{
		Name:   *name,
		Email:  *email,
		Scopes: *scopes,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create courier client")
	}

	fmt.Printf("✓ Courier OAuth client created for %s!\n", *email)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", secret)
	fmt.Printf("User ID: %d\n", client.UserID)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://%s:%d/api/v1/oauth/token \\\n", conf.Host, conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", secret)
}
