package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
)

type DeliveryController struct {
	service services.DeliveryService
}

func NewDeliveryController(service services.DeliveryService) *DeliveryController {
	return &DeliveryController{service: service}
}

// Route godoc
// @Summary Delivery route
// @Description Driving route from the kitchen to an address (the primary one when addressId is omitted).
// @Description When the routing service fails a straight path with a fixed ETA is returned and fallback is true.
// @Tags delivery
// @Produce json
// @Param addressId query int false "Address ID"
// @Success 200 {object} services.DeliveryRoute
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/delivery/route [get]
func (dc *DeliveryController) Route(c *gin.Context) {
	var addressID *uint
	if raw := c.Query("addressId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			badRequest(c, "Invalid addressId format")
			return
		}
		v := uint(id)
		addressID = &v
	}

	route, err := dc.service.Route(c.Request.Context(), middleware.UserID(c), addressID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// Track godoc
// @Summary Track a delivery
// @Description Polled snapshot of the simulated rider position along the route of an order
// @Tags delivery
// @Produce json
// @Param orderId path int true "Order ID"
// @Success 200 {object} services.Tracking
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/delivery/track/{orderId} [get]
func (dc *DeliveryController) Track(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	tracking, err := dc.service.Track(c.Request.Context(), middleware.UserID(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tracking)
}
