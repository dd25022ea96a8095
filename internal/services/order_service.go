package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOrderInput is the checkout payload. TotalAmount and AddressID are optional;
// a missing total is computed from the cart snapshot.
type CreateOrderInput struct {
	TotalAmount     *float64 `json:"total_amount"`
	DeliveryAddress string   `json:"delivery_address"`
	PaymentID       string   `json:"payment_id"`
	PaymentStatus   string   `json:"payment_status"`
	AddressID       *uint    `json:"address_id"`
}

// OrderService turns carts into orders and tracks their delivery status
type OrderService interface {
	// Create converts the user's cart into an order in a single transaction
	Create(ctx context.Context, userID uint, in CreateOrderInput) (*models.Order, error)
	// List returns the user's orders, newest first, each with its items and address
	List(ctx context.Context, userID uint) ([]models.Order, error)
	Get(ctx context.Context, userID, orderID uint) (*models.Order, error)
	// UpdateStatus sets the status of an order owned by the user
	UpdateStatus(ctx context.Context, userID, orderID uint, status models.OrderStatus) error
	// SetStatus sets the status of any order; used by courier integrations
	SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) error
}

type orderService struct {
	db *gorm.DB
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(db *gorm.DB) OrderService {
	return &orderService{db: db}
}

// cartSnapshot is one cart line frozen at the catalog price of checkout time
type cartSnapshot struct {
	ID       uint
	RecipeID uint
	Quantity int
	Price    float64
}

func (s *orderService) Create(ctx context.Context, userID uint, in CreateOrderInput) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// concurrent checkouts of one user run one at a time
		if err := lockUser(tx, userID); err != nil {
			return err
		}

		// locked lines cannot change quantity until the order commits
		var snapshot []cartSnapshot
		err := tx.Table("cart_items AS ci").
			Select("ci.id, ci.recipe_id, ci.quantity, r.price").
			Joins("JOIN recipes r ON r.id = ci.recipe_id").
			Where("ci.user_id = ?", userID).
			Order("ci.id ASC").
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "ci"}}).
			Scan(&snapshot).Error
		if err != nil {
			return err
		}
		if len(snapshot) == 0 {
			return newError(ErrEmptyCart, "Cart is empty")
		}

		address, err := checkoutAddress(tx, userID, in.AddressID)
		if err != nil {
			return err
		}

		deliveryAddress := in.DeliveryAddress
		if deliveryAddress == "" {
			deliveryAddress = address.DisplayString()
		}

		paymentStatus := in.PaymentStatus
		if paymentStatus == "" {
			paymentStatus = models.PaymentStatusPending
		}

		var total float64
		if in.TotalAmount != nil {
			total = *in.TotalAmount
		} else {
			for _, line := range snapshot {
				total += line.Price * float64(line.Quantity)
			}
		}

		order = models.Order{
			UserID:          userID,
			TotalAmount:     total,
			DeliveryAddress: deliveryAddress,
			PaymentID:       in.PaymentID,
			PaymentStatus:   paymentStatus,
			Status:          models.OrderStatusPending,
			AddressID:       &address.ID,
		}
		if err := tx.Omit("Address", "Items").Create(&order).Error; err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(snapshot))
		lineIDs := make([]uint, 0, len(snapshot))
		for _, line := range snapshot {
			lineIDs = append(lineIDs, line.ID)
			items = append(items, models.OrderItem{
				OrderID:  order.ID,
				RecipeID: line.RecipeID,
				Quantity: line.Quantity,
				Price:    line.Price,
			})
		}
		if err := tx.Omit("Recipe").Create(&items).Error; err != nil {
			return err
		}

		// lines added after the snapshot stay in the cart
		return tx.Where("user_id = ? AND id IN ?", userID, lineIDs).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.TotalAmount,
	}).Info("Order placed")

	return s.Get(ctx, userID, order.ID)
}

// checkoutAddress resolves the delivery address: an explicit owned id wins over the primary address
func checkoutAddress(tx *gorm.DB, userID uint, addressID *uint) (*models.Address, error) {
	if addressID != nil {
		return ownedAddress(tx, userID, *addressID)
	}
	address, err := primaryAddress(tx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(ErrNoAddress, "Please add a delivery address before placing an order")
	}
	return address, err
}

func (s *orderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	db := s.db.WithContext(ctx)
	orders := []models.Order{}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	if err := attachOrderDetails(db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	db := s.db.WithContext(ctx)
	var order models.Order
	err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Order not found")
	}
	if err != nil {
		return nil, err
	}

	orders := []models.Order{order}
	if err := attachOrderDetails(db, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// attachOrderDetails loads items and addresses for a page of orders and groups them per order.
// Items keep insertion order and an order without items gets an empty slice.
func attachOrderDetails(db *gorm.DB, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]uint, 0, len(orders))
	addressIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		if o.AddressID != nil {
			addressIDs = append(addressIDs, *o.AddressID)
		}
	}

	var items []models.OrderItem
	err := db.Table("order_items").
		Select("order_items.*, recipes.name AS name, recipes.image_url AS image_url").
		Joins("LEFT JOIN recipes ON recipes.id = order_items.recipe_id").
		Where("order_items.order_id IN ?", orderIDs).
		Order("order_items.id ASC").
		Find(&items).Error
	if err != nil {
		return err
	}
	grouped := make(map[uint][]models.OrderItem, len(orders))
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}

	addresses := make(map[uint]*models.Address, len(addressIDs))
	if len(addressIDs) > 0 {
		var rows []models.Address
		if err := db.Where("id IN ?", addressIDs).Find(&rows).Error; err != nil {
			return err
		}
		for i := range rows {
			addresses[rows[i].ID] = &rows[i]
		}
	}

	for i := range orders {
		orders[i].Items = grouped[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
		if orders[i].AddressID != nil {
			orders[i].Address = addresses[*orders[i].AddressID]
		}
	}
	return nil
}

func (s *orderService) UpdateStatus(ctx context.Context, userID, orderID uint, status models.OrderStatus) error {
	if !status.Valid() {
		return newError(ErrInvalidStatus, "Invalid status")
	}
	return s.updateStatus(s.db.WithContext(ctx).Where("id = ? AND user_id = ?", orderID, userID), orderID, status)
}

func (s *orderService) SetStatus(ctx context.Context, orderID uint, status models.OrderStatus) error {
	if !status.Valid() {
		return newError(ErrInvalidStatus, "Invalid status")
	}
	return s.updateStatus(s.db.WithContext(ctx).Where("id = ?", orderID), orderID, status)
}

func (s *orderService) updateStatus(scope *gorm.DB, orderID uint, status models.OrderStatus) error {
	result := scope.Model(&models.Order{}).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return newError(ErrNotFound, "Order not found")
	}
	log.WithFields(logrus.Fields{"order_id": orderID, "status": status}).Info("Order status updated")
	return nil
}
