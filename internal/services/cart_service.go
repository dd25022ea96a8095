package services

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService manages the pending cart lines of a user
type CartService interface {
	// Get returns the cart lines joined with the current catalog data, newest first
	Get(ctx context.Context, userID uint) ([]models.CartLine, error)
	// Add merges quantity into the (user, recipe) line, creating it when absent.
	// A quantity below 1 is treated as 1.
	Add(ctx context.Context, userID, recipeID uint, quantity int) (*models.CartItem, error)
	// UpdateQuantity sets the quantity of a line; zero or less removes it
	UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) error
	Remove(ctx context.Context, userID, itemID uint) error
	Clear(ctx context.Context, userID uint) error
}

type cartService struct {
	db *gorm.DB
}

// NewCartService creates a new instance of CartService
func NewCartService(db *gorm.DB) CartService {
	return &cartService{db: db}
}

func (s *cartService) Get(ctx context.Context, userID uint) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := s.db.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.id, ci.user_id, ci.recipe_id, ci.quantity, ci.created_at, "+
			"r.name, r.description, r.price, r.image_url, r.category, r.offer, r.rating").
		Joins("JOIN recipes r ON r.id = ci.recipe_id").
		Where("ci.user_id = ?", userID).
		Order("ci.created_at DESC, ci.id DESC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *cartService) Add(ctx context.Context, userID, recipeID uint, quantity int) (*models.CartItem, error) {
	if recipeID == 0 {
		return nil, newError(ErrValidation, "Recipe ID is required")
	}
	if quantity < 1 {
		quantity = 1
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id").First(&recipe, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(ErrNotFound, "Recipe not found")
			}
			return err
		}

		// single statement merge keeps one row per (user, recipe) under concurrent adds
		line := models.CartItem{UserID: userID, RecipeID: recipeID, Quantity: quantity}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
				"updated_at": time.Now(),
			}),
		}).Create(&line).Error
		if err != nil {
			return err
		}

		return tx.Where("user_id = ? AND recipe_id = ?", userID, recipeID).First(&item).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id":   userID,
		"recipe_id": recipeID,
		"quantity":  item.Quantity,
	}).Debug("Item added to cart")
	return &item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) error {
	db := s.db.WithContext(ctx)
	if quantity <= 0 {
		return db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{}).Error
	}

	result := db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return newError(ErrNotFound, "Cart item not found")
	}
	return nil
}

func (s *cartService) Remove(ctx context.Context, userID, itemID uint) error {
	return s.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{}).Error
}

func (s *cartService) Clear(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
