package models

import "time"

// MaxAddressesPerUser caps how many delivery addresses a user can save
const MaxAddressesPerUser = 5

// Address is a saved delivery location owned by one user
type Address struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	Label            string    `gorm:"size:50" json:"label"`
	AddressLine      string    `gorm:"type:text" json:"address_line"`
	Landmark         string    `json:"landmark"`
	City             string    `json:"city"`
	State            string    `json:"state"`
	PostalCode       string    `json:"postal_code"`
	Country          string    `json:"country"`
	Latitude         float64   `gorm:"not null" json:"latitude"`
	Longitude        float64   `gorm:"not null" json:"longitude"`
	PlaceID          string    `json:"place_id"`
	FormattedAddress string    `gorm:"type:text" json:"formatted_address"`
	Instructions     string    `gorm:"type:text" json:"instructions"`
	IsDefault        bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DisplayString returns the formatted address, falling back to the raw line
func (a *Address) DisplayString() string {
	if a.FormattedAddress != "" {
		return a.FormattedAddress
	}
	return a.AddressLine
}
