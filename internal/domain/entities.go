package domain

import (
	"time"
)

// Role is the access level carried by a verified credential.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Identity is the result of resolving a connection credential. The zero
// value is an anonymous identity.
type Identity struct {
	UserID string
	Role   Role
}

// Anonymous is the identity attached to connections that present no
// credential, or a credential that fails verification.
var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductStats is the per-product snapshot returned on a stats request.
// ViewCount and ActiveViewers come from the product room, the rest from
// the product store.
type ProductStats struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Stock         int      `json:"stock"`
	Price         float64  `json:"price"`
	IsActive      bool     `json:"isActive"`
	ViewCount     int      `json:"viewCount"`
	ActiveViewers []string `json:"activeViewers"`
}

// ConnectionStats is the hub-wide diagnostic snapshot.
type ConnectionStats struct {
	TotalConnections   int         `json:"totalConnections"`
	AuthenticatedUsers int         `json:"authenticatedUsers"`
	AdminConnections   int         `json:"adminConnections"`
	Rooms              []RoomStats `json:"rooms"`
}

type RoomStats struct {
	Room    string `json:"room"`
	Members int    `json:"members"`
}
