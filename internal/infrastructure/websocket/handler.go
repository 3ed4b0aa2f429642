package websocket

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

const statsQueryTimeout = 5 * time.Second

// Handler upgrades HTTP requests to websocket connections and runs the
// per-connection read loop.
type Handler struct {
	registry    *Registry
	broadcaster *Broadcaster
	products    domain.ProductRepository
	identity    domain.IdentityResolver
	log         logger.Logger
}

func NewHandler(registry *Registry, broadcaster *Broadcaster,
	products domain.ProductRepository, identity domain.IdentityResolver,
	log logger.Logger) *Handler {
	return &Handler{
		registry:    registry,
		broadcaster: broadcaster,
		products:    products,
		identity:    identity,
		log:         log,
	}
}

// clientMessage is the envelope clients send. Type selects the action.
type clientMessage struct {
	Type      string `json:"type"`
	ProductID string `json:"productId"`
}

// HandleConnection resolves the optional credential, upgrades the
// request and registers the connection. Identity failures never reject
// the connection; the client simply browses anonymously.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	identity := h.identity.Resolve(bearerToken(r))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := NewConnection(conn, identity, h.log)
	h.registry.Register(wsConn)

	go h.handleMessages(wsConn, conn)
}

func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func (h *Handler) handleMessages(wsConn *Connection, conn *websocket.Conn) {
	defer func() {
		h.registry.Unregister(wsConn)
		wsConn.Close()
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("Connection read failed", "conn_id", wsConn.ID(), "error", err)
			}
			break
		}

		switch msg.Type {
		case "join-product-room":
			h.registry.JoinRoom(wsConn, ProductRoom(msg.ProductID))
		case "leave-product-room":
			h.registry.LeaveRoom(wsConn, ProductRoom(msg.ProductID))
		case "join-admin-room":
			h.handleJoinAdminRoom(wsConn)
		case "request-product-stats":
			go h.sendProductStats(wsConn, msg.ProductID)
		case "ping":
			h.send(wsConn, "pong", nil)
		}
	}
}

// handleJoinAdminRoom admits only connections whose resolved role is
// admin. Everyone else gets an error event and no state changes.
func (h *Handler) handleJoinAdminRoom(wsConn *Connection) {
	if !wsConn.Identity().IsAdmin() {
		h.send(wsConn, "error", domain.ErrorMessage{Message: "Unauthorized access to admin room"})
		return
	}
	h.registry.JoinRoom(wsConn, AdminRoom)
}

// sendProductStats loads the product and answers with a stats snapshot.
// This is the hub's only blocking path; if the connection disappears
// during the load the send fails and the response is discarded.
func (h *Handler) sendProductStats(wsConn *Connection, productID string) {
	ctx, cancel := context.WithTimeout(context.Background(), statsQueryTimeout)
	defer cancel()

	product, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			h.log.Error("Failed to load product for stats", "product_id", productID, "error", err)
		}
		h.send(wsConn, "error", domain.ErrorMessage{Message: "Failed to fetch product statistics"})
		return
	}

	viewers := h.registry.RoomMemberIDs(ProductRoom(productID))
	h.send(wsConn, "product-stats", domain.ProductStats{
		ID:            product.ID,
		Name:          product.Name,
		Stock:         product.Stock,
		Price:         product.Price,
		IsActive:      product.IsActive,
		ViewCount:     len(viewers),
		ActiveViewers: viewers,
	})
}

func (h *Handler) send(wsConn *Connection, event string, data any) {
	if err := wsConn.Send(event, data); err != nil {
		h.log.Error("Failed to send message", "conn_id", wsConn.ID(), "event", event, "error", err)
	}
}
