package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faisal-Sha/eco-product-task/internal/domain"
	"github.com/Faisal-Sha/eco-product-task/pkg/logger"
)

type sentEvent struct {
	event string
	data  any
}

// fakeConn is an in-memory transport connection for hub tests.
type fakeConn struct {
	id       string
	identity domain.Identity

	mu      sync.Mutex
	events  []sentEvent
	sendErr error
	closed  bool
}

func newFakeConn(id string, identity domain.Identity) *fakeConn {
	return &fakeConn{id: id, identity: identity}
}

func (c *fakeConn) ID() string                { return c.id }
func (c *fakeConn) Identity() domain.Identity { return c.identity }

func (c *fakeConn) Send(event string, data any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.events = append(c.events, sentEvent{event: event, data: data})
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received(event string) []sentEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []sentEvent
	for _, e := range c.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func TestUnregisterRemovesAllIndexEntries(t *testing.T) {
	registry := NewRegistry(logger.NewNop())

	conn := newFakeConn("c1", domain.Identity{UserID: "u1", Role: domain.RoleAdmin})
	registry.Register(conn)
	registry.JoinRoom(conn, ProductRoom("p1"))
	registry.JoinRoom(conn, ProductRoom("p2"))
	registry.JoinRoom(conn, AdminRoom)

	registry.Unregister(conn)

	stats := registry.Stats()
	assert.Equal(t, 0, stats.TotalConnections)
	assert.Equal(t, 0, stats.AuthenticatedUsers)
	assert.Equal(t, 0, stats.AdminConnections)
	assert.Empty(t, stats.Rooms)

	assert.Nil(t, registry.RoomMembers(ProductRoom("p1")))
	assert.Nil(t, registry.RoomMembers(AdminRoom))

	_, ok := registry.UserConn("u1")
	assert.False(t, ok)

	// Cleanup is idempotent.
	assert.NotPanics(t, func() { registry.Unregister(conn) })
}

func TestUnregisterNeverRegistered(t *testing.T) {
	registry := NewRegistry(logger.NewNop())
	conn := newFakeConn("ghost", domain.Anonymous)

	assert.NotPanics(t, func() { registry.Unregister(conn) })
}

func TestLastConnectedWins(t *testing.T) {
	registry := NewRegistry(logger.NewNop())

	first := newFakeConn("c1", domain.Identity{UserID: "u1", Role: domain.RoleCustomer})
	second := newFakeConn("c2", domain.Identity{UserID: "u1", Role: domain.RoleCustomer})

	registry.Register(first)
	registry.Register(second)

	conn, ok := registry.UserConn("u1")
	require.True(t, ok)
	assert.Equal(t, "c2", conn.ID())

	// The stale connection disconnecting must not evict the newer one.
	registry.Unregister(first)

	conn, ok = registry.UserConn("u1")
	require.True(t, ok)
	assert.Equal(t, "c2", conn.ID())

	registry.Unregister(second)
	_, ok = registry.UserConn("u1")
	assert.False(t, ok)
}

func TestAdminGroupRequiresVerifiedRole(t *testing.T) {
	registry := NewRegistry(logger.NewNop())

	registry.Register(newFakeConn("c1", domain.Identity{UserID: "u1", Role: domain.RoleCustomer}))
	registry.Register(newFakeConn("c2", domain.Anonymous))

	assert.Equal(t, 0, registry.Stats().AdminConnections)

	registry.Register(newFakeConn("c3", domain.Identity{UserID: "u2", Role: domain.RoleAdmin}))
	assert.Equal(t, 1, registry.Stats().AdminConnections)
}

func TestJoinLeaveRooms(t *testing.T) {
	registry := NewRegistry(logger.NewNop())

	conn := newFakeConn("c1", domain.Anonymous)
	registry.Register(conn)

	registry.JoinRoom(conn, ProductRoom("a"))
	registry.JoinRoom(conn, ProductRoom("b"))
	registry.LeaveRoom(conn, ProductRoom("a"))

	assert.Nil(t, registry.RoomMembers(ProductRoom("a")))
	require.Len(t, registry.RoomMembers(ProductRoom("b")), 1)
	assert.Equal(t, "c1", registry.RoomMembers(ProductRoom("b"))[0].ID())

	// Leaving a room the connection never joined is fine.
	assert.NotPanics(t, func() { registry.LeaveRoom(conn, ProductRoom("missing")) })
}

func TestStatsListsOnlyProductRooms(t *testing.T) {
	registry := NewRegistry(logger.NewNop())

	admin := newFakeConn("c1", domain.Identity{UserID: "u1", Role: domain.RoleAdmin})
	viewer := newFakeConn("c2", domain.Anonymous)
	registry.Register(admin)
	registry.Register(viewer)

	registry.JoinRoom(admin, AdminRoom)
	registry.JoinRoom(admin, ProductRoom("p1"))
	registry.JoinRoom(viewer, ProductRoom("p1"))

	stats := registry.Stats()
	assert.Equal(t, 2, stats.TotalConnections)
	assert.Equal(t, 1, stats.AuthenticatedUsers)
	assert.Equal(t, 1, stats.AdminConnections)
	require.Len(t, stats.Rooms, 1)
	assert.Equal(t, domain.RoomStats{Room: "product-p1", Members: 2}, stats.Rooms[0])
}

func TestRoomMemberIDsSorted(t *testing.T) {
	registry := NewRegistry(logger.NewNop())

	for _, id := range []string{"c3", "c1", "c2"} {
		conn := newFakeConn(id, domain.Anonymous)
		registry.Register(conn)
		registry.JoinRoom(conn, ProductRoom("p1"))
	}

	assert.Equal(t, []string{"c1", "c2", "c3"}, registry.RoomMemberIDs(ProductRoom("p1")))
}
