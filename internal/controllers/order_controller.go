package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderController struct {
	service services.OrderService
}

func NewOrderController(service services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Create godoc
// @Summary Place an order
// @Description Converts the cart into an order at the current catalog prices and clears the cart.
// @Description Without address_id the primary address is used. total_amount is computed when omitted.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.CreateOrderInput true "Checkout details"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/create [post]
func (oc *OrderController) Create(c *gin.Context) {
	var in services.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	order, err := oc.service.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// List godoc
// @Summary List orders
// @Description The caller's orders, newest first, with items and address
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Security BearerAuth
// @Router /api/v1/orders [get]
func (oc *OrderController) List(c *gin.Context) {
	orders, err := oc.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get godoc
// @Summary Get an order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id} [get]
func (oc *OrderController) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := oc.service.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type statusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// UpdateStatus godoc
// @Summary Set the status of an owned order
// @Description Any of pending, packed, on_the_way, arriving, delivered. Moving backwards is allowed.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body statusRequest true "New status"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id}/status [put]
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := oc.service.UpdateStatus(c.Request.Context(), middleware.UserID(c), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

// CourierUpdateStatus godoc
// @Summary Set the status of any order
// @Description Used by courier integrations authenticated with the client credentials grant
// @Tags courier
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body statusRequest true "New status"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/courier/orders/{id}/status [put]
func (oc *OrderController) CourierUpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	if err := oc.service.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	log.WithFields(logrus.Fields{
		"order_id":   id,
		"status":     req.Status,
		"courier_id": middleware.UserID(c),
		"client_id":  c.GetString(middleware.ContextClientID),
	}).Info("Courier updated order status")
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}
