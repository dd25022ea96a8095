package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CourierClient is an OAuth2 client used by a delivery partner integration.
// It satisfies oauth2.ClientInfo and oauth2.ClientPasswordVerifier.
type CourierClient struct {
	ID        string         `gorm:"primaryKey" json:"client_id"`
	Secret    string         `gorm:"not null" json:"-"` // bcrypt hash
	Name      string         `json:"name"`
	UserID    uint           `gorm:"not null;index" json:"user_id"` // courier account the tokens act as
	Scopes    string         `json:"scopes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CourierClient) TableName() string {
	return "oauth_clients"
}

func (c *CourierClient) GetID() string     { return c.ID }
func (c *CourierClient) GetSecret() string { return c.Secret }
func (c *CourierClient) GetDomain() string { return "" }
func (c *CourierClient) IsPublic() bool    { return false }

func (c *CourierClient) GetUserID() string {
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword compares a plain client secret against the stored hash
func (c *CourierClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
