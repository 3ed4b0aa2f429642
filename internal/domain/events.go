package domain

type EventType string

const (
	EventStockUpdate   EventType = "stock_update"
	EventPriceUpdate   EventType = "price_update"
	EventProductUpdate EventType = "product_update"
	EventNewProduct    EventType = "new_product"
	EventUserActivity  EventType = "user_activity"
	EventAdminAlert    EventType = "admin_alert"
	EventLowStockAlert EventType = "low_stock_alert"
	EventStatsSnapshot EventType = "stats_snapshot"
)

// ActivityPurchase tags user-activity records raised by the purchase flow.
const ActivityPurchase = "purchase"

// ProductDelta is implemented by the payload variants that ride on
// product-updated events. Each variant carries a fixed field set; the
// broadcaster stamps the emission time via WithTimestamp.
type ProductDelta interface {
	Kind() EventType
	WithTimestamp(ts string) ProductDelta
}

// StockUpdate describes a stock level change on a single product.
type StockUpdate struct {
	Type          EventType `json:"type"`
	ProductID     string    `json:"productId"`
	Stock         int       `json:"stock"`
	PreviousStock int       `json:"previousStock"`
	IsLowStock    bool      `json:"isLowStock"`
	IsOutOfStock  bool      `json:"isOutOfStock"`
	Timestamp     string    `json:"timestamp,omitempty"`
}

func (u StockUpdate) Kind() EventType { return EventStockUpdate }

func (u StockUpdate) WithTimestamp(ts string) ProductDelta {
	u.Timestamp = ts
	return u
}

// PriceUpdate describes a price change. Discount is the integer
// percentage off the old price, present only when the price fell.
type PriceUpdate struct {
	Type      EventType `json:"type"`
	ProductID string    `json:"productId"`
	Price     float64   `json:"price"`
	OldPrice  float64   `json:"oldPrice"`
	Discount  *int      `json:"discount"`
	Timestamp string    `json:"timestamp,omitempty"`
}

func (u PriceUpdate) Kind() EventType { return EventPriceUpdate }

func (u PriceUpdate) WithTimestamp(ts string) ProductDelta {
	u.Timestamp = ts
	return u
}

// FieldUpdate covers generic edits to visible product fields that are
// not stock or price changes.
type FieldUpdate struct {
	Type      EventType      `json:"type"`
	ProductID string         `json:"productId"`
	Fields    map[string]any `json:"fields"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func (u FieldUpdate) Kind() EventType { return EventProductUpdate }

func (u FieldUpdate) WithTimestamp(ts string) ProductDelta {
	u.Timestamp = ts
	return u
}

// NewProductAnnouncement goes to every connection, room membership
// notwithstanding.
type NewProductAnnouncement struct {
	Type      EventType `json:"type"`
	Product   *Product  `json:"product"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// UserActivity is operational visibility for admins, never shown to
// ordinary users.
type UserActivity struct {
	Type        string `json:"type"`
	ProductID   string `json:"productId,omitempty"`
	ProductName string `json:"productName,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	UserID      string `json:"userId,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// AdminAlert is an admin-room-only notification. Stock is set on
// low-stock alerts, Stats on periodic snapshots.
type AdminAlert struct {
	Type      EventType        `json:"type"`
	ProductID string           `json:"productId,omitempty"`
	Stock     *int             `json:"stock,omitempty"`
	Message   string           `json:"message"`
	Stats     *ConnectionStats `json:"stats,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
}

// ErrorMessage is sent to a single connection when one of its requests
// fails. It never terminates the connection.
type ErrorMessage struct {
	Message string `json:"message"`
}

// ProductEvent is the wire record carried on the Redis ingest channel
// from the CRUD layer to the hub. Kind selects which of the optional
// fields are meaningful.
type ProductEvent struct {
	Kind          EventType      `json:"kind"`
	ProductID     string         `json:"productId,omitempty"`
	Stock         *int           `json:"stock,omitempty"`
	PreviousStock *int           `json:"previousStock,omitempty"`
	Price         *float64       `json:"price,omitempty"`
	OldPrice      *float64       `json:"oldPrice,omitempty"`
	Fields        map[string]any `json:"fields,omitempty"`
	Product       *Product       `json:"product,omitempty"`
	Activity      *UserActivity  `json:"activity,omitempty"`
	Alert         *AdminAlert    `json:"alert,omitempty"`
}
