package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by every access token the API accepts, whether issued at login
// or through the courier client credentials grant.
type Claims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	Scope  string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

var signingMethod = jwt.SigningMethodHS256

// IssueUserToken signs a login token for user valid for expiry
func IssueUserToken(secret []byte, user *models.User, expiry time.Duration, now time.Time) (string, error) {
	if user == nil || user.ID == 0 {
		return "", errors.New("cannot issue token without a user")
	}
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	claims := Claims{
		UserID: user.ID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
}

// ParseToken validates signature, algorithm and time claims and returns the token claims
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.UserID == 0 {
		return nil, errors.New("token missing required 'uid' claim")
	}
	if claims.Role == "" {
		return nil, errors.New("token missing required 'role' claim")
	}
	return claims, nil
}
