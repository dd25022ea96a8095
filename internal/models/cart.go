package models

import "time"

// CartItem is one (user, recipe) line waiting to be ordered
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID" json:"-"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine is a cart item joined with the live catalog data of its recipe
type CartLine struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	RecipeID    uint      `json:"recipe_id"`
	Quantity    int       `json:"quantity"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Offer       string    `json:"offer"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}
