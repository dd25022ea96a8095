package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// CreateClient godoc
// @Summary Create courier client
// @Description Create a courier account (or reuse the one owning the email) and an OAuth2 client for it.
// @Description The client secret is only returned by this call.
// @Tags couriers
// @Accept json
// @Produce json
// @Param client body services.CourierRegistration true "Courier details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.APIError "Invalid request"
// @Failure 409 {object} models.APIError "Email belongs to a customer account"
// @Security BearerAuth
// @Router /api/v1/admin/couriers [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req services.CourierRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	client, secret, err := cc.clientService.CreateCourierClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":     client.ID,
		"client_secret": secret, // Return plain secret only once
		"name":          client.Name,
		"scopes":        client.Scopes,
		"user_id":       client.UserID,
		"grant_types":   "client_credentials",
	})
}

// ListClients godoc
// @Summary List courier clients
// @Tags couriers
// @Produce json
// @Success 200 {array} models.CourierClient "List of clients"
// @Security BearerAuth
// @Router /api/v1/admin/couriers [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.ListClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// DeleteClient godoc
// @Summary Delete courier client
// @Description Delete a courier client and revoke every token issued to it
// @Tags couriers
// @Produce json
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.APIError "Client not found"
// @Security BearerAuth
// @Router /api/v1/admin/couriers/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
