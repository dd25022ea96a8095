package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/franciscosanchezn/freshbite-api/internal/geo"
	"github.com/franciscosanchezn/freshbite-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRouter struct {
	route *geo.Route
	err   error
}

func (r stubRouter) Route(_ context.Context, from, to geo.Point) (*geo.Route, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.route, nil
}

var testStore = StoreLocation{Label: "Kitchen Hub", FormattedAddress: "Pallavaram", Latitude: 12.96762, Longitude: 80.15031}

func TestDeliveryRoute(t *testing.T) {
	f, _ := newOrderFixture(t)
	ctx := context.Background()
	router := stubRouter{route: &geo.Route{
		Path:            []geo.Point{{Lat: 12.96762, Lng: 80.15031}, {Lat: 12.97, Lng: 80.15}},
		DurationSeconds: 900,
		DistanceMeters:  4260,
	}}
	svc := NewDeliveryService(f.addresses, f.orders, router, testStore)

	_, err := svc.Route(ctx, f.user.ID, nil)
	assert.True(t, errors.Is(err, ErrNotFound))

	home, _ := f.addresses.Create(ctx, f.user.ID, addressInput("Home"))

	route, err := svc.Route(ctx, f.user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, testStore, route.Source)
	assert.Equal(t, home.ID, route.Destination.ID)
	assert.Equal(t, 15, route.ETAMinutes)
	assert.InDelta(t, 4.3, route.DistanceKm, 1e-9)
	assert.False(t, route.Fallback)

	_, err = svc.Route(ctx, f.user.ID, uintPtr(home.ID+50))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeliveryRouteFallback(t *testing.T) {
	f, _ := newOrderFixture(t)
	ctx := context.Background()
	svc := NewDeliveryService(f.addresses, f.orders, stubRouter{err: errors.New("osrm down")}, testStore)

	home, _ := f.addresses.Create(ctx, f.user.ID, addressInput("Home"))
	route, err := svc.Route(ctx, f.user.ID, uintPtr(home.ID))
	require.NoError(t, err)
	assert.True(t, route.Fallback)
	assert.Equal(t, geo.FallbackETAMinutes, route.ETAMinutes)
	assert.Equal(t, geo.FallbackDistanceKm, route.DistanceKm)
	assert.Equal(t, []geo.Point{{Lat: testStore.Latitude, Lng: testStore.Longitude}, {Lat: home.Latitude, Lng: home.Longitude}}, route.Path)
}

func TestDeliveryTrack(t *testing.T) {
	f, _ := newOrderFixture(t)
	ctx := context.Background()
	router := stubRouter{route: &geo.Route{
		Path:            []geo.Point{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}, {Lat: 20, Lng: 20}},
		DurationSeconds: 1200,
		DistanceMeters:  8000,
	}}
	svc := NewDeliveryService(f.addresses, f.orders, router, testStore).(*deliveryService)

	_, _ = f.addresses.Create(ctx, f.user.ID, addressInput("Home"))
	_, _ = f.cart.Add(ctx, f.user.ID, f.a.ID, 1)
	order, err := f.orders.Create(ctx, f.user.ID, CreateOrderInput{})
	require.NoError(t, err)

	t.Run("half way through the eta", func(t *testing.T) {
		svc.now = func() time.Time { return order.CreatedAt.Add(10 * time.Minute) }
		tr, err := svc.Track(ctx, f.user.ID, order.ID)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, tr.Progress, 1e-6)
		assert.Equal(t, models.OrderStatusOnTheWay, tr.Stage)
		assert.Equal(t, models.OrderStatusPending, tr.Status, "tracking never writes status")
		assert.InDelta(t, 10, tr.Position.Lat, 1e-4)
		assert.Equal(t, 10, tr.RemainingMinutes)
	})

	t.Run("past the eta", func(t *testing.T) {
		svc.now = func() time.Time { return order.CreatedAt.Add(time.Hour) }
		tr, err := svc.Track(ctx, f.user.ID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, 1.0, tr.Progress)
		assert.Equal(t, models.OrderStatusDelivered, tr.Stage)
		assert.Equal(t, geo.Point{Lat: 20, Lng: 20}, tr.Position)
		assert.Zero(t, tr.RemainingMinutes)
	})

	t.Run("stored status moves progress forward", func(t *testing.T) {
		svc.now = func() time.Time { return order.CreatedAt }
		require.NoError(t, f.orders.SetStatus(ctx, order.ID, models.OrderStatusArriving))
		tr, err := svc.Track(ctx, f.user.ID, order.ID)
		require.NoError(t, err)
		assert.InDelta(t, 0.75, tr.Progress, 1e-9)
		assert.Equal(t, models.OrderStatusArriving, tr.Stage)
	})

	t.Run("orders of other users are not found", func(t *testing.T) {
		_, err := svc.Track(ctx, f.user.ID+1, order.ID)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestStageFor(t *testing.T) {
	assert.Equal(t, models.OrderStatusPending, stageFor(0))
	assert.Equal(t, models.OrderStatusPending, stageFor(0.2))
	assert.Equal(t, models.OrderStatusPacked, stageFor(0.25))
	assert.Equal(t, models.OrderStatusArriving, stageFor(0.99))
	assert.Equal(t, models.OrderStatusDelivered, stageFor(1))
}
