package domain

import (
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found")

// Repository interfaces
type ProductRepository interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

// IdentityResolver turns an optional bearer credential into an
// identity. It never fails: a missing or invalid credential resolves
// to Anonymous so the connection can proceed unauthenticated.
type IdentityResolver interface {
	Resolve(token string) Identity
}

// Conn is one live transport-level link. Send frames the named event
// and its payload for the client; implementations must be safe for
// concurrent Send calls.
type Conn interface {
	ID() string
	Identity() Identity
	Send(event string, data any) error
	Close() error
}

// ProductBroadcaster is the surface the CRUD layer calls after a
// persistence write commits. Operations are fire-and-forget: failures
// are logged, never returned.
type ProductBroadcaster interface {
	BroadcastProductUpdate(productID string, update ProductDelta)
	BroadcastStockUpdate(productID string, newStock, previousStock int)
	BroadcastPriceUpdate(productID string, newPrice, oldPrice float64)
	BroadcastNewProduct(product *Product)
	BroadcastUserActivity(activity UserActivity)
	SendAdminAlert(alert AdminAlert)
	SendToUser(userID, event string, data any)
	Broadcast(event string, data map[string]any)
	ConnectionStats() ConnectionStats
}

// Event interfaces
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event *ProductEvent) error
}

type EventSubscriber interface {
	SubscribeToProductEvents(ctx context.Context, handler ProductEventHandler) error
}

type ProductEventHandler func(event *ProductEvent) error
