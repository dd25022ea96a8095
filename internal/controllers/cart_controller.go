package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	service services.CartService
}

func NewCartController(service services.CartService) *CartController {
	return &CartController{service: service}
}

// Get godoc
// @Summary Read the cart
// @Description Cart lines joined with the current catalog price, image and category
// @Tags cart
// @Produce json
// @Success 200 {array} models.CartLine
// @Security BearerAuth
// @Router /api/v1/cart [get]
func (cc *CartController) Get(c *gin.Context) {
	lines, err := cc.service.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

type addToCartRequest struct {
	RecipeID uint `json:"recipe_id"`
	Quantity int  `json:"quantity"`
}

// Add godoc
// @Summary Add to cart
// @Description Adding a recipe already in the cart increases its quantity. Quantity defaults to 1.
// @Tags cart
// @Accept json
// @Produce json
// @Param item body addToCartRequest true "Recipe and quantity"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/cart/add [post]
func (cc *CartController) Add(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	item, err := cc.service.Add(c.Request.Context(), middleware.UserID(c), req.RecipeID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart", "success": true, "item": item})
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity godoc
// @Summary Set a line quantity
// @Description A quantity of zero or less removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "Cart item ID"
// @Param quantity body updateCartRequest true "New quantity"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/cart/update/{id} [put]
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := cc.service.UpdateQuantity(c.Request.Context(), middleware.UserID(c), id, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
}

// Remove godoc
// @Summary Remove a line
// @Tags cart
// @Produce json
// @Param id path int true "Cart item ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/cart/remove/{id} [delete]
func (cc *CartController) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := cc.service.Remove(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// Clear godoc
// @Summary Empty the cart
// @Tags cart
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/cart/clear [delete]
func (cc *CartController) Clear(c *gin.Context) {
	if err := cc.service.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
