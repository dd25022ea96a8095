package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/auth"
	"github.com/franciscosanchezn/freshbite-api/internal/middleware"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/franciscosanchezn/freshbite-api/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	userService services.UserService
	jwtSecret   []byte
	tokenExpiry time.Duration
	uploadDir   string
}

func NewAuthController(userService services.UserService, jwtSecret string, tokenExpiry time.Duration, uploadDir string) *AuthController {
	return &AuthController{
		userService: userService,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
		uploadDir:   uploadDir,
	}
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID                  uint       `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Phone               string     `json:"phone"`
	ProfilePicture      *string    `json:"profile_picture"`
	Role                string     `json:"role"`
	MembershipType      string     `json:"membership_type"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at"`
	CreatedAt           time.Time  `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                  u.ID,
		Username:            u.Username,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Phone:               u.Phone,
		ProfilePicture:      u.ProfilePictureURL(),
		Role:                u.Role,
		MembershipType:      u.MembershipType,
		MembershipExpiresAt: u.MembershipExpiresAt,
		CreatedAt:           u.CreatedAt,
	}
}

type registerRequest struct {
	Username       string                 `json:"username" form:"username" binding:"required"`
	Email          string                 `json:"email" form:"email" binding:"required,email"`
	Password       string                 `json:"password" form:"password" binding:"required,min=6"`
	FirstName      string                 `json:"first_name" form:"first_name"`
	LastName       string                 `json:"last_name" form:"last_name"`
	Phone          string                 `json:"phone" form:"phone"`
	PrimaryAddress *services.AddressInput `json:"primary_address" form:"-"`
}

// Register godoc
// @Summary Register a new account
// @Description Create an account from JSON or a multipart form. A primary address with coordinates becomes the default address.
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param user body registerRequest true "Account details"
// @Param profile_picture formData file false "Profile picture"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/v1/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
			return
		}
		// the address travels as a JSON document inside the form
		if raw := c.PostForm("primary_address"); raw != "" {
			var address services.AddressInput
			if err := json.Unmarshal([]byte(raw), &address); err != nil {
				log.WithError(err).Warn("Ignoring malformed primary_address")
			} else {
				req.PrimaryAddress = &address
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	picture, err := saveUpload(c, "profile_picture", ac.uploadDir)
	if errors.Is(err, errInvalidUpload) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := ac.userService.Register(c.Request.Context(), services.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		ProfilePicture: picture,
		PrimaryAddress: req.PrimaryAddress,
	})
	if err != nil {
		discardUpload(ac.uploadDir, picture)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully!",
		"user":    newUserResponse(user),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in
// @Description Check credentials and issue a signed access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /api/v1/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.IssueUserToken(ac.jwtSecret, user, ac.tokenExpiry, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int64(ac.tokenExpiry.Seconds()),
		"user":       newUserResponse(user),
	})
}

// Me godoc
// @Summary Current profile
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.OAuth2Error
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/auth/me [get]
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.userService.GetUserByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

type profileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update names, phone and optionally the profile picture. Only the fields sent are changed.
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param profile body profileRequest true "Profile fields"
// @Param profile_picture formData file false "New profile picture"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/auth/update [put]
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req profileRequest
	var picture string
	if isMultipart(c) {
		// only the fields present in the form are updated
		req.FirstName = formValue(c, "first_name")
		req.LastName = formValue(c, "last_name")
		req.Phone = formValue(c, "phone")

		var err error
		picture, err = saveUpload(c, "profile_picture", ac.uploadDir)
		if errors.Is(err, errInvalidUpload) {
			badRequest(c, err.Error())
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := ac.userService.UpdateProfile(c.Request.Context(), middleware.UserID(c), services.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		ProfilePicture: picture,
	})
	if err != nil {
		discardUpload(ac.uploadDir, picture)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func formValue(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}
