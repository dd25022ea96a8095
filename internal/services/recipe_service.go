package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"gorm.io/gorm"
)

// RecipeFilter narrows the catalog listing. Category "all" or empty matches every category.
type RecipeFilter struct {
	Category string
	Search   string
}

// RecipeService provides methods to interact with the recipe catalog
type RecipeService interface {
	// ListRecipes retrieves recipes matching the filter, newest first
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error)
	// GetRecipeByID retrieves a recipe by its ID
	GetRecipeByID(ctx context.Context, id uint) (*models.Recipe, error)
	// CreateRecipe creates a new recipe in the catalog
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	// UpdateRecipe updates an existing recipe. Placed orders keep their snapshot prices.
	UpdateRecipe(ctx context.Context, recipe *models.Recipe) error
	// DeleteRecipe deletes a recipe and drops it from every cart
	DeleteRecipe(ctx context.Context, id uint) error
}

// recipeService is the implementation of the RecipeService interface
type recipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(db *gorm.DB) RecipeService {
	return &recipeService{db: db}
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})
	if c := strings.TrimSpace(filter.Category); c != "" && !strings.EqualFold(c, "all") {
		query = query.Where("category = ?", c)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	recipes := []models.Recipe{}
	if err := query.Order("created_at DESC, id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *recipeService) GetRecipeByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "Recipe not found")
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	if err := validateRecipe(recipe); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(recipe).Error
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipe *models.Recipe) error {
	if err := validateRecipe(recipe); err != nil {
		return err
	}
	existing, err := s.GetRecipeByID(ctx, recipe.ID)
	if err != nil {
		return err
	}
	recipe.CreatedAt = existing.CreatedAt
	return s.db.WithContext(ctx).Save(recipe).Error
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ordered int64
		if err := tx.Model(&models.OrderItem{}).Where("recipe_id = ?", id).Count(&ordered).Error; err != nil {
			return err
		}
		if ordered > 0 {
			return newError(ErrConflict, "Recipe is part of existing orders")
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Recipe{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return newError(ErrNotFound, "Recipe not found")
		}
		return nil
	})
}

func validateRecipe(recipe *models.Recipe) error {
	if strings.TrimSpace(recipe.Name) == "" {
		return newError(ErrValidation, "Recipe name is required")
	}
	if recipe.Price < 0 {
		return newError(ErrValidation, "Price must not be negative")
	}
	return nil
}
