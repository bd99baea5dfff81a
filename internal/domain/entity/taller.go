package entity

import "time"

// Roles de membresía en un taller.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Límites de negocio heredados del producto.
const (
	MaxTalleresPorUsuario = 3
	MaxAlmacenesPorTaller = 5
)

// Taller es la unidad organizacional multi-tenant que agrupa almacenes,
// inventario y miembros.
type Taller struct {
	ID            string
	OwnerID       string
	Nombre        string
	Activo        bool
	FechaCreacion time.Time
}

// Membership vincula un usuario a un taller con un rol. Única por (taller, usuario).
type Membership struct {
	TallerID string
	UserID   string
	Role     string // owner | member
	JoinedAt time.Time
}
