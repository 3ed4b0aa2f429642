package websocket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

func newTestBroadcaster(t *testing.T) (*Broadcaster, *Registry) {
	t.Helper()
	registry := NewRegistry(logger.NewNop())
	return NewBroadcaster(registry, DefaultLowStockThreshold, logger.NewNop()), registry
}

func lowStockAlerts(conn *fakeConn) []domain.AdminAlert {
	var alerts []domain.AdminAlert
	for _, e := range conn.received("admin-alert") {
		alert, ok := e.data.(domain.AdminAlert)
		if ok && alert.Type == domain.EventLowStockAlert {
			alerts = append(alerts, alert)
		}
	}
	return alerts
}

func TestStockUpdatePayload(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	viewer := newFakeConn("c1", domain.Anonymous)
	registry.Register(viewer)
	registry.JoinRoom(viewer, ProductRoom("p1"))

	broadcaster.BroadcastStockUpdate("p1", 0, 12)

	events := viewer.received("product-updated")
	require.Len(t, events, 1)

	update, ok := events[0].data.(domain.ProductDelta)
	require.True(t, ok)
	stock, ok := update.(domain.StockUpdate)
	require.True(t, ok)

	assert.Equal(t, domain.EventStockUpdate, stock.Type)
	assert.Equal(t, "p1", stock.ProductID)
	assert.Equal(t, 0, stock.Stock)
	assert.Equal(t, 12, stock.PreviousStock)
	assert.True(t, stock.IsLowStock)
	assert.True(t, stock.IsOutOfStock)
	assert.NotEmpty(t, stock.Timestamp)
}

func TestLowStockAlertFiresOnFallingEdgeOnly(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	admin := newFakeConn("a1", domain.Identity{UserID: "admin", Role: domain.RoleAdmin})
	registry.Register(admin)
	registry.JoinRoom(admin, AdminRoom)

	// Falling edge: 15 -> 5.
	broadcaster.BroadcastStockUpdate("p1", 5, 15)
	assert.Len(t, lowStockAlerts(admin), 1)

	// Already below threshold: no repeat alert.
	broadcaster.BroadcastStockUpdate("p1", 3, 5)
	assert.Len(t, lowStockAlerts(admin), 1)

	// Restock above threshold re-arms the alert.
	broadcaster.BroadcastStockUpdate("p1", 20, 3)
	assert.Len(t, lowStockAlerts(admin), 1)

	broadcaster.BroadcastStockUpdate("p1", 8, 20)
	alerts := lowStockAlerts(admin)
	require.Len(t, alerts, 2)

	require.NotNil(t, alerts[1].Stock)
	assert.Equal(t, 8, *alerts[1].Stock)
	assert.Equal(t, "p1", alerts[1].ProductID)
	assert.Contains(t, alerts[1].Message, "running low on stock")
}

func TestPriceUpdateDiscount(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	viewer := newFakeConn("c1", domain.Anonymous)
	registry.Register(viewer)
	registry.JoinRoom(viewer, ProductRoom("p1"))

	broadcaster.BroadcastPriceUpdate("p1", 80, 100)
	broadcaster.BroadcastPriceUpdate("p1", 100, 80)
	broadcaster.BroadcastPriceUpdate("p1", 50, 50)

	events := viewer.received("product-updated")
	require.Len(t, events, 3)

	drop := events[0].data.(domain.PriceUpdate)
	require.NotNil(t, drop.Discount)
	assert.Equal(t, 20, *drop.Discount)

	// No discount on price increases or ties.
	assert.Nil(t, events[1].data.(domain.PriceUpdate).Discount)
	assert.Nil(t, events[2].data.(domain.PriceUpdate).Discount)
}

func TestProductUpdateRoomScoping(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	viewer := newFakeConn("c1", domain.Anonymous)
	registry.Register(viewer)
	registry.JoinRoom(viewer, ProductRoom("a"))
	registry.JoinRoom(viewer, ProductRoom("b"))
	registry.LeaveRoom(viewer, ProductRoom("a"))

	broadcaster.BroadcastStockUpdate("a", 4, 20)
	broadcaster.BroadcastStockUpdate("b", 4, 20)

	events := viewer.received("product-updated")
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].data.(domain.StockUpdate).ProductID)
}

func TestProductUpdateMirroredToAdminRoom(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	admin := newFakeConn("a1", domain.Identity{UserID: "admin", Role: domain.RoleAdmin})
	registry.Register(admin)
	registry.JoinRoom(admin, AdminRoom)

	// Admin is not in the product room, but still sees the mirror.
	broadcaster.BroadcastPriceUpdate("p1", 90, 100)

	assert.Empty(t, admin.received("product-updated"))
	require.Len(t, admin.received("product-admin-update"), 1)
}

func TestNewProductReachesEveryConnection(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	conns := []*fakeConn{
		newFakeConn("c1", domain.Anonymous),
		newFakeConn("c2", domain.Identity{UserID: "u1", Role: domain.RoleCustomer}),
		newFakeConn("c3", domain.Identity{UserID: "u2", Role: domain.RoleAdmin}),
	}
	for _, conn := range conns {
		registry.Register(conn)
	}

	broadcaster.BroadcastNewProduct(&domain.Product{ID: "p9", Name: "Steel Bottle"})

	for _, conn := range conns {
		events := conn.received("new-product")
		require.Len(t, events, 1, "connection %s", conn.ID())

		announcement := events[0].data.(domain.NewProductAnnouncement)
		assert.Equal(t, domain.EventNewProduct, announcement.Type)
		assert.Equal(t, "p9", announcement.Product.ID)
		assert.NotEmpty(t, announcement.Timestamp)
	}
}

func TestUserActivityGoesToAdminRoomOnly(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	admin := newFakeConn("a1", domain.Identity{UserID: "admin", Role: domain.RoleAdmin})
	customer := newFakeConn("c1", domain.Identity{UserID: "u1", Role: domain.RoleCustomer})
	registry.Register(admin)
	registry.Register(customer)
	registry.JoinRoom(admin, AdminRoom)

	broadcaster.BroadcastUserActivity(domain.UserActivity{
		Type:      domain.ActivityPurchase,
		ProductID: "p1",
		Quantity:  2,
		UserID:    "u1",
	})

	require.Len(t, admin.received("user-activity"), 1)
	assert.Empty(t, customer.received("user-activity"))

	activity := admin.received("user-activity")[0].data.(domain.UserActivity)
	assert.Equal(t, domain.ActivityPurchase, activity.Type)
	assert.NotEmpty(t, activity.Timestamp)
}

func TestSendToUser(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	conn := newFakeConn("c1", domain.Identity{UserID: "u1", Role: domain.RoleCustomer})
	registry.Register(conn)

	broadcaster.SendToUser("u1", "order-shipped", map[string]any{"orderId": "o1"})
	require.Len(t, conn.received("order-shipped"), 1)

	// Unknown user is a silent no-op.
	assert.NotPanics(t, func() {
		broadcaster.SendToUser("nobody", "order-shipped", nil)
	})
	assert.Len(t, conn.received("order-shipped"), 1)
}

func TestBroadcastAddsTimestamp(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	conn := newFakeConn("c1", domain.Anonymous)
	registry.Register(conn)

	broadcaster.Broadcast("maintenance", map[string]any{"message": "back soon"})

	events := conn.received("maintenance")
	require.Len(t, events, 1)

	payload := events[0].data.(map[string]any)
	assert.Equal(t, "back soon", payload["message"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestSendFailureSkipsConnection(t *testing.T) {
	broadcaster, registry := newTestBroadcaster(t)

	broken := newFakeConn("c1", domain.Anonymous)
	broken.sendErr = errors.New("write: broken pipe")
	healthy := newFakeConn("c2", domain.Anonymous)

	registry.Register(broken)
	registry.Register(healthy)
	registry.JoinRoom(broken, ProductRoom("p1"))
	registry.JoinRoom(healthy, ProductRoom("p1"))

	assert.NotPanics(t, func() {
		broadcaster.BroadcastStockUpdate("p1", 4, 20)
	})
	require.Len(t, healthy.received("product-updated"), 1)
}
