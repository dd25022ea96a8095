package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserPassword(t *testing.T) {
	user := &User{Password: "secret123"}
	require.NoError(t, user.HashPassword())

	assert.Empty(t, user.Password)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("secret124"))
}

func TestMembershipActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(24 * time.Hour)
	earlier := now.Add(-time.Minute)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"empty tier", User{}, false},
		{"no membership", User{MembershipType: MembershipNone, MembershipExpiresAt: &later}, false},
		{"active", User{MembershipType: MembershipGold, MembershipExpiresAt: &later}, true},
		{"expired", User{MembershipType: MembershipSilver, MembershipExpiresAt: &earlier}, false},
		{"no expiry", User{MembershipType: MembershipBronze}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.MembershipActive(now))
		})
	}
}

func TestProfilePictureURL(t *testing.T) {
	assert.Nil(t, (&User{}).ProfilePictureURL())

	url := (&User{ProfilePicture: "abc.png"}).ProfilePictureURL()
	require.NotNil(t, url)
	assert.Equal(t, "/uploads/abc.png", *url)
}

func TestAddressDisplayString(t *testing.T) {
	address := &Address{AddressLine: "12 Lake Road"}
	assert.Equal(t, "12 Lake Road", address.DisplayString())

	address.FormattedAddress = "12 Lake Road, Chennai 600001"
	assert.Equal(t, "12 Lake Road, Chennai 600001", address.DisplayString())
}

func TestOrderStatusValid(t *testing.T) {
	for _, status := range OrderStatuses {
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, OrderStatus("cancelled").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestCourierClient(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("client-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	client := &CourierClient{ID: "courier-1", Secret: string(hash), UserID: 42}
	assert.Equal(t, "courier-1", client.GetID())
	assert.Equal(t, "42", client.GetUserID())
	assert.False(t, client.IsPublic())
	assert.True(t, client.VerifyPassword("client-secret"))
	assert.False(t, client.VerifyPassword("wrong"))
}

func TestNewAPIError(t *testing.T) {
	plain := NewAPIError(ErrNotFound, "Recipe not found")
	assert.Equal(t, ErrNotFound, plain.Code)
	assert.Nil(t, plain.Details)

	detailed := NewAPIError(ErrForbidden, "Insufficient permissions", map[string]interface{}{"required_roles": []string{RoleAdmin}})
	assert.Equal(t, []string{RoleAdmin}, detailed.Details["required_roles"])
}
