package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to the recipe catalog
type RecipeController interface {
	// GetAllRecipes retrieves the catalog, optionally filtered
	GetAllRecipes(c *gin.Context)
	// GetRecipeByID retrieves a recipe by its ID
	GetRecipeByID(c *gin.Context)
	// CreateRecipe adds a recipe to the catalog
	CreateRecipe(c *gin.Context)
	// UpdateRecipe updates an existing recipe
	UpdateRecipe(c *gin.Context)
	// DeleteRecipe deletes a recipe by its ID
	DeleteRecipe(c *gin.Context)
}

type controller struct {
	service services.RecipeService
}

// NewRecipeController creates a new instance of RecipeController
func NewRecipeController(service services.RecipeService) RecipeController {
	return &controller{service: service}
}

// GetAllRecipes godoc
// @Summary Get all recipes
// @Description Get the catalog, newest first, with optional filtering
// @Tags recipes
// @Accept json
// @Produce json
// @Param category query string false "Category, 'all' disables the filter"
// @Param search query string false "Case-insensitive match on name or description"
// @Success 200 {array} models.Recipe
// @Failure 500 {object} models.APIError
// @Router /api/v1/recipes [get]
func (c *controller) GetAllRecipes(ctx *gin.Context) {
	recipes, err := c.service.ListRecipes(ctx.Request.Context(), services.RecipeFilter{
		Category: ctx.Query("category"),
		Search:   ctx.Query("search"),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, recipes)
}

// GetRecipeByID godoc
// @Summary Get recipe by ID
// @Description Get a single recipe by its ID
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/recipes/{id} [get]
func (c *controller) GetRecipeByID(ctx *gin.Context) {
	recipeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	recipe, err := c.service.GetRecipeByID(ctx.Request.Context(), recipeID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a new recipe
// @Description Add a recipe to the catalog
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body models.Recipe true "Recipe object"
// @Success 201 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/recipes [post]
func (c *controller) CreateRecipe(ctx *gin.Context) {
	var recipe models.Recipe
	if err := ctx.ShouldBindJSON(&recipe); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}
	recipe.ID = 0

	if err := c.service.CreateRecipe(ctx.Request.Context(), &recipe); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Replace a recipe. Orders already placed keep the price they were placed at.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body models.Recipe true "Recipe object"
// @Success 200 {object} models.Recipe
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/recipes/{id} [put]
func (c *controller) UpdateRecipe(ctx *gin.Context) {
	recipeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var recipe models.Recipe
	if err := ctx.ShouldBindJSON(&recipe); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	// Ensure the ID from URL is used
	recipe.ID = recipeID

	if err := c.service.UpdateRecipe(ctx.Request.Context(), &recipe); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Delete a recipe and drop it from every cart. Recipes that appear in orders cannot be deleted.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/recipes/{id} [delete]
func (c *controller) DeleteRecipe(ctx *gin.Context) {
	recipeID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.DeleteRecipe(ctx.Request.Context(), recipeID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
