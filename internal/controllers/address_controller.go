package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/freshbite-api/internal/geo"
	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
)

// MinSearchLength is the shortest query forwarded to the geocoder
const MinSearchLength = 3

// AddressController serves saved addresses and the geocoding helpers of the address form
type AddressController struct {
	service  services.AddressService
	geocoder geo.Geocoder
}

func NewAddressController(service services.AddressService, geocoder geo.Geocoder) *AddressController {
	return &AddressController{service: service, geocoder: geocoder}
}

// Search godoc
// @Summary Address suggestions
// @Description Geocode free text into at most five suggestions. An unavailable geocoder yields an empty list.
// @Tags addresses
// @Produce json
// @Param q query string true "Search text, at least 3 characters"
// @Success 200 {array} geo.Place
// @Failure 400 {object} models.APIError
// @Router /api/v1/addresses/search [get]
func (ac *AddressController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < MinSearchLength {
		badRequest(c, "Search query must be at least 3 characters")
		return
	}
	c.JSON(http.StatusOK, geo.SearchOrEmpty(c.Request.Context(), ac.geocoder, query))
}

// Reverse godoc
// @Summary Reverse geocode
// @Description Resolve coordinates into a place. An unavailable geocoder yields a coordinate-only place.
// @Tags addresses
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Success 200 {object} geo.Place
// @Failure 400 {object} models.APIError
// @Router /api/v1/addresses/reverse [get]
func (ac *AddressController) Reverse(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lngErr != nil || !geo.ValidCoordinates(lat, lng) {
		badRequest(c, "Latitude and longitude are required")
		return
	}
	c.JSON(http.StatusOK, geo.ReverseOrCoordinates(c.Request.Context(), ac.geocoder, lat, lng))
}

// Primary godoc
// @Summary Primary address
// @Description The default address, or the most recently updated one
// @Tags addresses
// @Produce json
// @Success 200 {object} models.Address
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/addresses/primary [get]
func (ac *AddressController) Primary(c *gin.Context) {
	address, err := ac.service.GetPrimary(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

// List godoc
// @Summary List addresses
// @Description Saved addresses, default first, then most recently updated
// @Tags addresses
// @Produce json
// @Success 200 {array} models.Address
// @Security BearerAuth
// @Router /api/v1/addresses [get]
func (ac *AddressController) List(c *gin.Context) {
	addresses, err := ac.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

// Create godoc
// @Summary Save an address
// @Description Coordinates are required. The first address, or one sent with is_default, becomes the default.
// @Tags addresses
// @Accept json
// @Produce json
// @Param address body services.AddressInput true "Address"
// @Success 201 {object} models.Address
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/addresses [post]
func (ac *AddressController) Create(c *gin.Context) {
	var in services.AddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	address, err := ac.service.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

// Update godoc
// @Summary Update an address
// @Tags addresses
// @Accept json
// @Produce json
// @Param id path int true "Address ID"
// @Param address body services.AddressInput true "Address"
// @Success 200 {object} models.Address
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/addresses/{id} [put]
func (ac *AddressController) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.AddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	address, err := ac.service.Update(c.Request.Context(), middleware.UserID(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

// Delete godoc
// @Summary Delete an address
// @Description Deleting the default address promotes the most recently updated remaining one
// @Tags addresses
// @Produce json
// @Param id path int true "Address ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/addresses/{id} [delete]
func (ac *AddressController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ac.service.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

// SetDefault godoc
// @Summary Make an address the default
// @Tags addresses
// @Produce json
// @Param id path int true "Address ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/addresses/{id}/default [post]
func (ac *AddressController) SetDefault(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	address, err := ac.service.SetDefault(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default address updated", "address": address})
}
