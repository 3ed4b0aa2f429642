package websocket

import (
	"fmt"
	"math"
	"time"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

// DefaultLowStockThreshold matches the storefront's low-stock badge.
const DefaultLowStockThreshold = 10

// Broadcaster fans domain events out to the registry's connections.
// Every operation is fire-and-forget: the CRUD layer has already
// committed its write by the time it calls in, so send failures are
// logged per connection and never propagate.
type Broadcaster struct {
	registry          *Registry
	lowStockThreshold int
	log               logger.Logger
}

func NewBroadcaster(registry *Registry, lowStockThreshold int, log logger.Logger) *Broadcaster {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Broadcaster{
		registry:          registry,
		lowStockThreshold: lowStockThreshold,
		log:               log,
	}
}

// BroadcastProductUpdate emits the delta to the product's room and
// mirrors it to the admin room. This is the primitive the other
// product broadcasts compose on.
func (b *Broadcaster) BroadcastProductUpdate(productID string, update domain.ProductDelta) {
	stamped := update.WithTimestamp(b.now())

	b.emit(b.registry.RoomMembers(ProductRoom(productID)), "product-updated", stamped)
	b.emit(b.registry.RoomMembers(AdminRoom), "product-admin-update", stamped)

	b.log.Info("Broadcasted product update", "product_id", productID, "kind", update.Kind())
}

// BroadcastStockUpdate announces a stock change. Crossing the
// low-stock threshold from above raises a one-shot admin alert; the
// edge condition keeps the alert from repeating while stock stays low.
func (b *Broadcaster) BroadcastStockUpdate(productID string, newStock, previousStock int) {
	update := domain.StockUpdate{
		Type:          domain.EventStockUpdate,
		ProductID:     productID,
		Stock:         newStock,
		PreviousStock: previousStock,
		IsLowStock:    newStock <= b.lowStockThreshold,
		IsOutOfStock:  newStock == 0,
	}

	b.BroadcastProductUpdate(productID, update)

	if newStock <= b.lowStockThreshold && previousStock > b.lowStockThreshold {
		stock := newStock
		b.SendAdminAlert(domain.AdminAlert{
			Type:      domain.EventLowStockAlert,
			ProductID: productID,
			Stock:     &stock,
			Message:   fmt.Sprintf("Product %s is running low on stock (%d remaining)", productID, newStock),
		})
	}
}

// BroadcastPriceUpdate announces a price change. Discount is signaled
// only for price drops.
func (b *Broadcaster) BroadcastPriceUpdate(productID string, newPrice, oldPrice float64) {
	var discount *int
	if oldPrice > newPrice {
		pct := int(math.Round((oldPrice - newPrice) / oldPrice * 100))
		discount = &pct
	}

	b.BroadcastProductUpdate(productID, domain.PriceUpdate{
		Type:      domain.EventPriceUpdate,
		ProductID: productID,
		Price:     newPrice,
		OldPrice:  oldPrice,
		Discount:  discount,
	})
}

// BroadcastNewProduct announces a new product to every connection.
// Announcements are not opt-in, so no room scoping applies.
func (b *Broadcaster) BroadcastNewProduct(product *domain.Product) {
	b.emit(b.registry.Connections(), "new-product", domain.NewProductAnnouncement{
		Type:      domain.EventNewProduct,
		Product:   product,
		Timestamp: b.now(),
	})

	if product != nil {
		b.log.Info("Broadcasted new product", "product_id", product.ID, "name", product.Name)
	}
}

// BroadcastUserActivity forwards an activity record to the admin room.
func (b *Broadcaster) BroadcastUserActivity(activity domain.UserActivity) {
	activity.Timestamp = b.now()
	b.emit(b.registry.RoomMembers(AdminRoom), "user-activity", activity)
}

// SendAdminAlert delivers an alert to the admin room, stamped at send
// time.
func (b *Broadcaster) SendAdminAlert(alert domain.AdminAlert) {
	alert.Timestamp = b.now()
	b.emit(b.registry.RoomMembers(AdminRoom), "admin-alert", alert)

	b.log.Info("Sent admin alert", "type", alert.Type, "message", alert.Message)
}

// SendToUser delivers directly to the user's current connection. A
// user with no live connection is a silent no-op; this is not a queued
// delivery channel.
func (b *Broadcaster) SendToUser(userID, event string, data any) {
	conn, ok := b.registry.UserConn(userID)
	if !ok {
		b.log.Debug("No active connection for user", "user_id", userID, "event", event)
		return
	}
	if err := conn.Send(event, data); err != nil {
		b.log.Error("Failed to send to user",
			"user_id", userID, "conn_id", conn.ID(), "event", event, "error", err)
	}
}

// Broadcast emits a named event to every connection with the emission
// timestamp folded into the payload.
func (b *Broadcaster) Broadcast(event string, data map[string]any) {
	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["timestamp"] = b.now()

	b.emit(b.registry.Connections(), event, payload)
}

// ConnectionStats reports the hub's diagnostic snapshot.
func (b *Broadcaster) ConnectionStats() domain.ConnectionStats {
	return b.registry.Stats()
}

func (b *Broadcaster) emit(conns []domain.Conn, event string, data any) {
	for _, conn := range conns {
		if err := conn.Send(event, data); err != nil {
			b.log.Error("Failed to send message",
				"conn_id", conn.ID(), "event", event, "error", err)
			// Continue to other connections
		}
	}
}

func (b *Broadcaster) now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
