package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CourierRegistration describes a delivery partner integration to onboard
type CourierRegistration struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Scopes string `json:"scopes"`
}

// ClientService manages the OAuth2 clients courier integrations authenticate with
type ClientService interface {
	// CreateCourierClient creates (or reuses) the courier account and a new client for it.
	// The plain secret is returned once and only its hash is stored.
	CreateCourierClient(ctx context.Context, reg CourierRegistration) (*models.CourierClient, string, error)
	ListClients(ctx context.Context) ([]models.CourierClient, error)
	GetClientByID(ctx context.Context, id string) (*models.CourierClient, error)
	DeleteClient(ctx context.Context, id string) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

// DefaultCourierScopes is granted when a registration names no scopes
const DefaultCourierScopes = "orders:status"

func (s *clientService) CreateCourierClient(ctx context.Context, reg CourierRegistration) (*models.CourierClient, string, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if strings.TrimSpace(reg.Name) == "" || reg.Email == "" {
		return nil, "", newError(ErrValidation, "Name and email are required")
	}
	if reg.Scopes == "" {
		reg.Scopes = DefaultCourierScopes
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	client := &models.CourierClient{
		ID:     uuid.New().String(),
		Secret: string(hashedSecret),
		Name:   reg.Name,
		Scopes: reg.Scopes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courier, err := courierAccount(tx, reg, client.ID)
		if err != nil {
			return err
		}
		client.UserID = courier.ID
		return tx.Create(client).Error
	})
	if err != nil {
		return nil, "", err
	}

	log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   client.UserID,
	}).Info("Courier client created")
	return client, secret, nil
}

// courierAccount returns the courier user for reg.Email, creating it when missing.
// An email that belongs to a customer or admin account is rejected.
func courierAccount(tx *gorm.DB, reg CourierRegistration, clientID string) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ?", reg.Email).First(&user).Error
	if err == nil {
		if user.Role != models.RoleCourier {
			return nil, newError(ErrConflict, "Email belongs to a non-courier account")
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Username:       "courier-" + clientID[:8],
		Email:          reg.Email,
		Password:       uuid.New().String(),
		FirstName:      reg.Name,
		Role:           models.RoleCourier,
		MembershipType: models.MembershipNone,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *clientService) ListClients(ctx context.Context) ([]models.CourierClient, error) {
	clients := []models.CourierClient{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.CourierClient, error) {
	var client models.CourierClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Client not found")
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.CourierClient{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return newError(ErrNotFound, "Client not found")
		}
		return tx.Where("client_id = ?", id).Delete(&models.OAuthToken{}).Error
	})
	if err != nil {
		return err
	}
	log.WithField("client_id", id).Info("Courier client deleted")
	return nil
}
