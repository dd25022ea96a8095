package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
)

type MembershipController struct {
	userService services.UserService
}

func NewMembershipController(userService services.UserService) *MembershipController {
	return &MembershipController{userService: userService}
}

// Get godoc
// @Summary Membership status
// @Tags membership
// @Produce json
// @Success 200 {object} services.Membership
// @Security BearerAuth
// @Router /api/v1/membership [get]
func (mc *MembershipController) Get(c *gin.Context) {
	membership, err := mc.userService.GetMembership(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}

type upgradeRequest struct {
	MembershipType string `json:"membership_type"`
}

// Upgrade godoc
// @Summary Upgrade membership
// @Description Moves the caller to bronze, silver or gold for one year
// @Tags membership
// @Accept json
// @Produce json
// @Param tier body upgradeRequest true "Tier"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/membership/upgrade [post]
func (mc *MembershipController) Upgrade(c *gin.Context) {
	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	membership, err := mc.userService.UpgradeMembership(c.Request.Context(), middleware.UserID(c), strings.ToLower(req.MembershipType))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Membership upgraded successfully", "membership": membership})
}

// Benefits godoc
// @Summary Tier catalog
// @Tags membership
// @Produce json
// @Success 200 {object} map[string]services.MembershipTier
// @Router /api/v1/membership/benefits [get]
func (mc *MembershipController) Benefits(c *gin.Context) {
	c.JSON(http.StatusOK, services.MembershipTiers)
}
