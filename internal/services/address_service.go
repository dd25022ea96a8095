package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddressInput is the client payload for creating or updating an address.
// IsDefault is a pointer so an update can tell "not sent" apart from "false".
type AddressInput struct {
	Label            string   `json:"label" form:"label"`
	AddressLine      string   `json:"address_line" form:"address_line"`
	Landmark         string   `json:"landmark" form:"landmark"`
	City             string   `json:"city" form:"city"`
	State            string   `json:"state" form:"state"`
	PostalCode       string   `json:"postal_code" form:"postal_code"`
	Country          string   `json:"country" form:"country"`
	Latitude         *float64 `json:"latitude" form:"latitude"`
	Longitude        *float64 `json:"longitude" form:"longitude"`
	PlaceID          string   `json:"place_id" form:"place_id"`
	FormattedAddress string   `json:"formatted_address" form:"formatted_address"`
	Instructions     string   `json:"instructions" form:"instructions"`
	IsDefault        *bool    `json:"is_default" form:"is_default"`
}

// Validate checks that the coordinates are present and usable
func (in *AddressInput) Validate() error {
	if in.Latitude == nil || in.Longitude == nil {
		return newError(ErrValidation, "Latitude and longitude are required")
	}
	lat, lng := *in.Latitude, *in.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return newError(ErrValidation, "Latitude and longitude must be numeric")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return newError(ErrValidation, "Latitude or longitude out of range")
	}
	return nil
}

// apply copies the payload onto a, filling label and address text fallbacks
func (in *AddressInput) apply(a *models.Address) {
	a.Label = in.Label
	if a.Label == "" {
		a.Label = "Other"
	}
	a.AddressLine = in.AddressLine
	if a.AddressLine == "" {
		a.AddressLine = in.FormattedAddress
	}
	a.FormattedAddress = in.FormattedAddress
	if a.FormattedAddress == "" {
		a.FormattedAddress = in.AddressLine
	}
	a.Landmark = in.Landmark
	a.City = in.City
	a.State = in.State
	a.PostalCode = in.PostalCode
	a.Country = in.Country
	a.Latitude = *in.Latitude
	a.Longitude = *in.Longitude
	a.PlaceID = in.PlaceID
	a.Instructions = in.Instructions
}

// AddressService manages a user's saved delivery addresses.
// A user has at most models.MaxAddressesPerUser addresses and exactly one default while any exist.
type AddressService interface {
	// List returns the user's addresses, default first, then most recently updated
	List(ctx context.Context, userID uint) ([]models.Address, error)
	// GetPrimary returns the default address, or the most recently updated one
	GetPrimary(ctx context.Context, userID uint) (*models.Address, error)
	// Get returns one address owned by the user
	Get(ctx context.Context, userID, addressID uint) (*models.Address, error)
	// Resolve returns the explicit address when addressID is set, else the primary address
	Resolve(ctx context.Context, userID uint, addressID *uint) (*models.Address, error)
	Create(ctx context.Context, userID uint, in AddressInput) (*models.Address, error)
	Update(ctx context.Context, userID, addressID uint, in AddressInput) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID uint) error
	SetDefault(ctx context.Context, userID, addressID uint) (*models.Address, error)
}

type addressService struct {
	db *gorm.DB
}

// NewAddressService creates a new instance of AddressService
func NewAddressService(db *gorm.DB) AddressService {
	return &addressService{db: db}
}

const addressOrder = "is_default DESC, updated_at DESC, id DESC"

func (s *addressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	addresses := []models.Address{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order(addressOrder).Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *addressService) GetPrimary(ctx context.Context, userID uint) (*models.Address, error) {
	return primaryAddress(s.db.WithContext(ctx), userID)
}

func (s *addressService) Get(ctx context.Context, userID, addressID uint) (*models.Address, error) {
	return ownedAddress(s.db.WithContext(ctx), userID, addressID)
}

func (s *addressService) Resolve(ctx context.Context, userID uint, addressID *uint) (*models.Address, error) {
	if addressID != nil {
		return s.Get(ctx, userID, *addressID)
	}
	return s.GetPrimary(ctx, userID)
}

func (s *addressService) Create(ctx context.Context, userID uint, in AddressInput) (*models.Address, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var created *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createAddress(tx, userID, in, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id":    userID,
		"address_id": created.ID,
		"is_default": created.IsDefault,
	}).Info("Address created")
	return created, nil
}

func (s *addressService) Update(ctx context.Context, userID, addressID uint, in AddressInput) (*models.Address, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var existing *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		var err error
		existing, err = ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}

		wasDefault := existing.IsDefault
		wantDefault := wasDefault
		if in.IsDefault != nil {
			wantDefault = *in.IsDefault
		}

		if wantDefault && !wasDefault {
			if err := clearDefaults(tx, userID); err != nil {
				return err
			}
		}

		var successor *models.Address
		if !wantDefault && wasDefault {
			successor, err = latestAddress(tx, userID, addressID)
			if err != nil {
				return err
			}
			if successor == nil {
				// the only address has to stay the default
				wantDefault = true
			}
		}

		in.apply(existing)
		existing.IsDefault = wantDefault
		if err := tx.Save(existing).Error; err != nil {
			return err
		}

		if successor != nil {
			return tx.Model(successor).Update("is_default", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"user_id": userID, "address_id": addressID}).Info("Address updated")
	return existing, nil
}

func (s *addressService) Delete(ctx context.Context, userID, addressID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		existing, err := ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := tx.Delete(existing).Error; err != nil {
			return err
		}
		if !existing.IsDefault {
			return nil
		}

		next, err := latestAddress(tx, userID, addressID)
		if err != nil || next == nil {
			return err
		}
		log.WithFields(logrus.Fields{"user_id": userID, "address_id": next.ID}).Debug("Promoting address to default")
		return tx.Model(next).Update("is_default", true).Error
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"user_id": userID, "address_id": addressID}).Info("Address deleted")
	return nil
}

func (s *addressService) SetDefault(ctx context.Context, userID, addressID uint) (*models.Address, error) {
	var existing *models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		var err error
		existing, err = ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := clearDefaults(tx, userID); err != nil {
			return err
		}
		existing.IsDefault = true
		return tx.Model(existing).Update("is_default", true).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"user_id": userID, "address_id": addressID}).Info("Default address updated")
	return existing, nil
}

// createAddress inserts an address inside tx. The first address of a user, or one flagged as
// default (or forced), becomes the only default.
func createAddress(tx *gorm.DB, userID uint, in AddressInput, forceDefault bool) (*models.Address, error) {
	if err := lockUser(tx, userID); err != nil {
		return nil, err
	}

	var total int64
	if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}
	if total >= models.MaxAddressesPerUser {
		return nil, newError(ErrLimitExceeded, fmt.Sprintf("You can only save up to %d addresses.", models.MaxAddressesPerUser))
	}

	makeDefault := forceDefault || total == 0 || (in.IsDefault != nil && *in.IsDefault)
	if makeDefault {
		if err := clearDefaults(tx, userID); err != nil {
			return nil, err
		}
	}

	address := &models.Address{UserID: userID, IsDefault: makeDefault}
	in.apply(address)
	if err := tx.Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// lockUser takes a row lock on the user so address mutations of one user run one at a time.
// SQLite ignores the locking clause; its single writer gives the same guarantee.
func lockUser(tx *gorm.DB, userID uint) error {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "User not found")
	}
	return err
}

func clearDefaults(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		UpdateColumn("is_default", false).Error
}

func ownedAddress(db *gorm.DB, userID, addressID uint) (*models.Address, error) {
	var address models.Address
	err := db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Address not found")
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func primaryAddress(db *gorm.DB, userID uint) (*models.Address, error) {
	var address models.Address
	err := db.Where("user_id = ?", userID).Order(addressOrder).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "No address found")
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// latestAddress returns the most recently updated address of the user other than excludeID, or nil
func latestAddress(tx *gorm.DB, userID, excludeID uint) (*models.Address, error) {
	var next models.Address
	err := tx.Where("user_id = ? AND id <> ?", userID, excludeID).
		Order("updated_at DESC, id DESC").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}
