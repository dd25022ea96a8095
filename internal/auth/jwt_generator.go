package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// CourierJWTAccessGenerate generates JWT access tokens for courier clients.
// The tokens carry the same claims as login tokens so one middleware validates both.
type CourierJWTAccessGenerate struct {
	SignedKey []byte
	DB        *gorm.DB
}

// NewCourierJWTAccessGenerate creates a new courier access token generator
func NewCourierJWTAccessGenerate(key []byte, db *gorm.DB) *CourierJWTAccessGenerate {
	return &CourierJWTAccessGenerate{SignedKey: key, DB: db}
}

// Token is called by the oauth2 manager for every issued access token
func (g *CourierJWTAccessGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	// client credentials requests carry no user, the client is bound to its courier account
	userID := data.UserID
	if userID == "" {
		userID = data.Client.GetUserID()
	}
	if userID == "" {
		return "", "", errors.New("cannot generate token: no user ID available")
	}

	user, err := g.lookupUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	data.TokenInfo.SetUserID(userID)

	scope := data.TokenInfo.GetScope()
	if scope == "" {
		if client, ok := data.Client.(*models.CourierClient); ok {
			scope = client.Scopes
		}
	}

	createdAt := data.TokenInfo.GetAccessCreateAt()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{data.Client.GetID()},
			IssuedAt:  jwt.NewNumericDate(createdAt),
			ExpiresAt: jwt.NewNumericDate(createdAt.Add(data.TokenInfo.GetAccessExpiresIn())),
		},
	}
	access, err := jwt.NewWithClaims(signingMethod, claims).SignedString(g.SignedKey)
	if err != nil {
		return "", "", err
	}

	// refresh tokens are never enabled for courier clients
	return access, "", nil
}

// lookupUser loads the courier account so the role in the token always matches the database
func (g *CourierJWTAccessGenerate) lookupUser(ctx context.Context, userIDStr string) (*models.User, error) {
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	var user models.User
	if err := g.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %d not found", userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.Role != models.RoleCourier {
		return nil, fmt.Errorf("user %d is not a courier account", userID)
	}
	return &user, nil
}
