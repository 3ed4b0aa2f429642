package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

// Envelope frames every hub-to-client message: a named event plus its
// JSON payload.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Connection wraps one websocket link. The identity is fixed at
// creation; writes are serialized because gorilla connections allow
// only one concurrent writer.
type Connection struct {
	id       string
	identity domain.Identity
	conn     *websocket.Conn
	writeMu  sync.Mutex
	log      logger.Logger
}

func NewConnection(conn *websocket.Conn, identity domain.Identity, log logger.Logger) *Connection {
	return &Connection{
		id:       uuid.NewString(),
		identity: identity,
		conn:     conn,
		log:      log,
	}
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) Identity() domain.Identity {
	return c.identity
}

func (c *Connection) Send(event string, data any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(Envelope{Event: event, Data: data})
}

func (c *Connection) Close() error {
	return c.conn.Close()
}
