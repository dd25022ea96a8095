package models

import (
	"slices"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusOnTheWay  OrderStatus = "on_the_way"
	OrderStatusArriving  OrderStatus = "arriving"
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderStatuses lists the delivery lifecycle in progression order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPacked,
	OrderStatusOnTheWay,
	OrderStatusArriving,
	OrderStatusDelivered,
}

// Valid reports whether s is one of the lifecycle statuses
func (s OrderStatus) Valid() bool {
	return slices.Contains(OrderStatuses, s)
}

const PaymentStatusPending = "pending"

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	TotalAmount     float64     `gorm:"not null" json:"total_amount"`
	DeliveryAddress string      `gorm:"type:text" json:"delivery_address"`
	PaymentID       string      `json:"payment_id"`
	PaymentStatus   string      `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	Status          OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	AddressID       *uint       `gorm:"index" json:"address_id"`
	Address         *Address    `gorm:"foreignKey:AddressID;constraint:OnDelete:SET NULL" json:"address"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem stores the price a recipe had when the order was placed
type OrderItem struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	OrderID  uint    `gorm:"not null;index" json:"order_id"`
	RecipeID uint    `gorm:"not null" json:"recipe_id"`
	Recipe   *Recipe `gorm:"foreignKey:RecipeID" json:"-"`
	Quantity int     `gorm:"not null" json:"quantity"`
	Price    float64 `gorm:"not null" json:"price"`

	// read from the joined recipe when listing orders
	Name     string `gorm:"->;-:migration" json:"name"`
	ImageURL string `gorm:"->;-:migration" json:"image_url"`
}
