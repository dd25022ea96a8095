package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles carried in access tokens
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleCourier = "courier"
)

// Membership tiers
const (
	MembershipNone   = "none"
	MembershipBronze = "bronze"
	MembershipSilver = "silver"
	MembershipGold   = "gold"
)

type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"-" json:"-"`
	PasswordHash        string     `gorm:"not null" json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Phone               string     `json:"phone"`
	ProfilePicture      string     `json:"-"`
	Role                string     `gorm:"default:'user'" json:"role"`
	MembershipType      string     `gorm:"default:'none'" json:"membership_type"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// HashPassword replaces the plain Password with its bcrypt hash
func (u *User) HashPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Password = ""
	return nil
}

// CheckPassword reports whether password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// MembershipActive reports whether the user holds a paid tier that has not expired at now
func (u *User) MembershipActive(now time.Time) bool {
	if u.MembershipType == "" || u.MembershipType == MembershipNone {
		return false
	}
	return u.MembershipExpiresAt == nil || u.MembershipExpiresAt.After(now)
}

// ProfilePictureURL returns the public path of the uploaded picture, or nil when none was uploaded
func (u *User) ProfilePictureURL() *string {
	if u.ProfilePicture == "" {
		return nil
	}
	url := "/uploads/" + u.ProfilePicture
	return &url
}
