package services

import (
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/geo"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
)

// StoreLocation is the kitchen every delivery starts from
type StoreLocation struct {
	Label            string  `json:"label"`
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

func (s StoreLocation) point() geo.Point {
	return geo.Point{Lat: s.Latitude, Lng: s.Longitude}
}

// RouteDestination is the customer side of a delivery route
type RouteDestination struct {
	ID               uint    `json:"id"`
	Label            string  `json:"label"`
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	PostalCode       string  `json:"postal_code"`
	Country          string  `json:"country"`
}

func destinationFor(a *models.Address) RouteDestination {
	return RouteDestination{
		ID:               a.ID,
		Label:            a.Label,
		FormattedAddress: a.DisplayString(),
		Latitude:         a.Latitude,
		Longitude:        a.Longitude,
		City:             a.City,
		State:            a.State,
		PostalCode:       a.PostalCode,
		Country:          a.Country,
	}
}

// DeliveryRoute is the driving route from the kitchen to an address
type DeliveryRoute struct {
	Source      StoreLocation    `json:"source"`
	Destination RouteDestination `json:"destination"`
	geo.RouteSummary
}

// Tracking is a polled snapshot of where a delivery is
type Tracking struct {
	OrderID          uint               `json:"order_id"`
	Status           models.OrderStatus `json:"status"`
	Stage            models.OrderStatus `json:"stage"`
	Progress         float64            `json:"progress"`
	Position         geo.Point          `json:"position"`
	RemainingMinutes int                `json:"remaining_minutes"`
	Route            DeliveryRoute      `json:"route"`
}

// DeliveryService plans delivery routes and simulates rider progress for tracking
type DeliveryService interface {
	// Route plans the route to an owned address, or to the primary address when addressID is nil
	Route(ctx context.Context, userID uint, addressID *uint) (*DeliveryRoute, error)
	// Track reports the simulated position of an owned order. It never writes the order status.
	Track(ctx context.Context, userID, orderID uint) (*Tracking, error)
}

type deliveryService struct {
	addresses AddressService
	orders    OrderService
	router    geo.Router
	store     StoreLocation
	now       func() time.Time
}

func NewDeliveryService(addresses AddressService, orders OrderService, router geo.Router, store StoreLocation) DeliveryService {
	return &deliveryService{
		addresses: addresses,
		orders:    orders,
		router:    router,
		store:     store,
		now:       time.Now,
	}
}

func (s *deliveryService) Route(ctx context.Context, userID uint, addressID *uint) (*DeliveryRoute, error) {
	address, err := s.addresses.Resolve(ctx, userID, addressID)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(ErrNotFound, "No address available for route")
	}
	if err != nil {
		return nil, err
	}
	return s.plan(ctx, address), nil
}

func (s *deliveryService) plan(ctx context.Context, address *models.Address) *DeliveryRoute {
	destination := destinationFor(address)
	summary := geo.PlanRoute(ctx, s.router, s.store.point(), geo.Point{Lat: destination.Latitude, Lng: destination.Longitude})
	return &DeliveryRoute{
		Source:       s.store,
		Destination:  destination,
		RouteSummary: summary,
	}
}

func (s *deliveryService) Track(ctx context.Context, userID, orderID uint) (*Tracking, error) {
	order, err := s.orders.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Address == nil {
		return nil, newError(ErrNotFound, "Order has no delivery address")
	}

	route := s.plan(ctx, order.Address)
	progress := deliveryProgress(order, route.ETAMinutes, s.now())
	stage := stageFor(progress)

	return &Tracking{
		OrderID:          order.ID,
		Status:           order.Status,
		Stage:            stage,
		Progress:         progress,
		Position:         geo.Interpolate(route.Path, progress),
		RemainingMinutes: int(math.Ceil((1 - progress) * float64(route.ETAMinutes))),
		Route:            *route,
	}, nil
}

// deliveryProgress is the elapsed share of the ETA since the order was placed, clamped to [0,1].
// A status set further along the lifecycle moves progress forward to that stage.
func deliveryProgress(order *models.Order, etaMinutes int, now time.Time) float64 {
	if order.Status == models.OrderStatusDelivered {
		return 1
	}

	var progress float64
	if etaMinutes > 0 {
		progress = now.Sub(order.CreatedAt).Minutes() / float64(etaMinutes)
	}
	if idx := slices.Index(models.OrderStatuses, order.Status); idx > 0 {
		progress = math.Max(progress, float64(idx)/float64(len(models.OrderStatuses)-1))
	}
	return math.Min(math.Max(progress, 0), 1)
}

// stageFor maps progress onto the lifecycle statuses in equal steps
func stageFor(progress float64) models.OrderStatus {
	last := len(models.OrderStatuses) - 1
	idx := int(progress * float64(last))
	if idx > last {
		idx = last
	}
	if idx < 0 {
		idx = 0
	}
	return models.OrderStatuses[idx]
}
