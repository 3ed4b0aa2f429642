package websocket

import (
	"sort"
	"strings"
	"sync"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

// AdminRoom is the privileged room admins may join for mirrored product
// updates and alerts.
const AdminRoom = "admin-room"

const productRoomPrefix = "product-"

// ProductRoom returns the room name for a product id.
func ProductRoom(productID string) string {
	return productRoomPrefix + productID
}

// Registry tracks live connections, the user index, the admin group and
// room membership. All mutation happens under one lock; handlers run on
// per-connection goroutines.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]domain.Conn            // connID -> connection
	users  map[string]string                 // userID -> connID, last connected wins
	admins map[string]struct{}               // connIDs carrying a verified admin role
	rooms  map[string]map[string]domain.Conn // room -> connID -> connection
	log    logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]domain.Conn),
		users:  make(map[string]string),
		admins: make(map[string]struct{}),
		rooms:  make(map[string]map[string]domain.Conn),
		log:    log,
	}
}

// Register adds a connection and its derived index entries. A second
// connection for the same user overwrites the user index entry.
func (r *Registry) Register(conn domain.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[conn.ID()] = conn

	identity := conn.Identity()
	if !identity.IsAnonymous() {
		r.users[identity.UserID] = conn.ID()
		if identity.IsAdmin() {
			r.admins[conn.ID()] = struct{}{}
		}
	}

	r.log.Info("Connection registered",
		"conn_id", conn.ID(), "user_id", identity.UserID, "role", identity.Role)
}

// Unregister removes every index entry pointing at the connection. It
// is idempotent and safe to call for connections that were never
// registered. The user index entry is removed only if it still points
// at this connection, so a newer connection from the same user is left
// intact.
func (r *Registry) Unregister(conn domain.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity := conn.Identity()
	if !identity.IsAnonymous() {
		if current, ok := r.users[identity.UserID]; ok && current == conn.ID() {
			delete(r.users, identity.UserID)
		}
	}

	delete(r.admins, conn.ID())

	for room, members := range r.rooms {
		delete(members, conn.ID())
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}

	delete(r.conns, conn.ID())

	r.log.Info("Connection unregistered", "conn_id", conn.ID(), "user_id", identity.UserID)
}

// JoinRoom adds the connection to a named room, creating it on first
// join.
func (r *Registry) JoinRoom(conn domain.Conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]domain.Conn)
	}
	r.rooms[room][conn.ID()] = conn

	r.log.Debug("Joined room", "conn_id", conn.ID(), "room", room)
}

// LeaveRoom removes the connection from a room. Leaving a room the
// connection is not a member of is not an error.
func (r *Registry) LeaveRoom(conn domain.Conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, conn.ID())
	if len(members) == 0 {
		delete(r.rooms, room)
	}

	r.log.Debug("Left room", "conn_id", conn.ID(), "room", room)
}

// RoomMembers returns the current members of a room.
func (r *Registry) RoomMembers(room string) []domain.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	if len(members) == 0 {
		return nil
	}
	conns := make([]domain.Conn, 0, len(members))
	for _, conn := range members {
		conns = append(conns, conn)
	}
	return conns
}

// RoomMemberIDs returns the connection ids currently in a room.
func (r *Registry) RoomMemberIDs(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	if len(members) == 0 {
		return nil
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Connections returns every live connection.
func (r *Registry) Connections() []domain.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]domain.Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// UserConn returns the connection currently representing a user id.
func (r *Registry) UserConn(userID string) (domain.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.users[userID]
	if !ok {
		return nil, false
	}
	conn, ok := r.conns[connID]
	return conn, ok
}

// Stats reports connection counts and the active product rooms.
func (r *Registry) Stats() domain.ConnectionStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.ConnectionStats{
		TotalConnections:   len(r.conns),
		AuthenticatedUsers: len(r.users),
		AdminConnections:   len(r.admins),
		Rooms:              []domain.RoomStats{},
	}
	for room, members := range r.rooms {
		if !strings.HasPrefix(room, productRoomPrefix) {
			continue
		}
		stats.Rooms = append(stats.Rooms, domain.RoomStats{Room: room, Members: len(members)})
	}
	sort.Slice(stats.Rooms, func(i, j int) bool {
		return stats.Rooms[i].Room < stats.Rooms[j].Room
	})
	return stats
}
