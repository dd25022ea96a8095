package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RegisterInput carries a new account. ProfilePicture is the stored upload filename.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	FirstName      string
	LastName       string
	Phone          string
	ProfilePicture string
	PrimaryAddress *AddressInput
}

// ProfileUpdate holds the profile fields a user may change; nil fields are left untouched
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Phone          *string
	ProfilePicture string
}

// Membership is the tier state of one user
type Membership struct {
	MembershipType      string     `json:"membership_type"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at"`
	IsActive            bool       `json:"is_active"`
}

type UserService interface {
	// Register creates the user and, when it carries coordinates, a default primary address in one transaction
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	// Authenticate returns the user owning email when password matches
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*models.User, error)
	GetMembership(ctx context.Context, id uint) (*Membership, error)
	// UpgradeMembership moves the user to tier for one year
	UpgradeMembership(ctx context.Context, id uint, tier string) (*Membership, error)
}

type userService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db, now: time.Now}
}

const minPasswordLength = 6

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" {
		return nil, newError(ErrValidation, "Username and email are required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, newError(ErrValidation, "Password must be at least 6 characters")
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       in.Password,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Phone:          in.Phone,
		ProfilePicture: in.ProfilePicture,
		Role:           models.RoleUser,
		MembershipType: models.MembershipNone,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).
			Where("email = ? OR username = ?", user.Email, user.Username).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return newError(ErrConflict, "User already exists")
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}

		primary := in.PrimaryAddress
		if primary == nil || primary.Validate() != nil {
			return nil
		}
		if primary.Label == "" {
			primary.Label = "Primary"
		}
		_, err := createAddress(tx, user.ID, *primary, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(ErrInvalidCredentials, "Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		log.WithField("user_id", user.ID).Warn("Password mismatch")
		return nil, newError(ErrInvalidCredentials, "Invalid credentials")
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*models.User, error) {
	changes := map[string]interface{}{}
	if update.FirstName != nil {
		changes["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		changes["last_name"] = *update.LastName
	}
	if update.Phone != nil {
		changes["phone"] = *update.Phone
	}
	if update.ProfilePicture != "" {
		changes["profile_picture"] = update.ProfilePicture
	}
	if len(changes) == 0 {
		return nil, newError(ErrValidation, "No fields to update")
	}

	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, newError(ErrNotFound, "User not found")
	}
	return s.GetUserByID(ctx, id)
}

func (s *userService) GetMembership(ctx context.Context, id uint) (*Membership, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Membership{
		MembershipType:      user.MembershipType,
		MembershipExpiresAt: user.MembershipExpiresAt,
		IsActive:            user.MembershipActive(s.now()),
	}, nil
}

func (s *userService) UpgradeMembership(ctx context.Context, id uint, tier string) (*Membership, error) {
	if _, ok := MembershipTiers[tier]; !ok {
		return nil, newError(ErrValidation, "Invalid membership type")
	}

	expiresAt := s.now().AddDate(1, 0, 0)
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"membership_type":       tier,
		"membership_expires_at": expiresAt,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, newError(ErrNotFound, "User not found")
	}

	log.WithFields(logrus.Fields{"user_id": id, "tier": tier}).Info("Membership upgraded")
	return s.GetMembership(ctx, id)
}
