package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// TallerRepository define el puerto de persistencia para Taller y sus membresías.
type TallerRepository interface {
	// CreateWithOwner persiste el taller y la membresía owner del creador en
	// una sola transacción.
	CreateWithOwner(ctx context.Context, taller *entity.Taller, owner *entity.Membership) error
	GetByID(ctx context.Context, id string) (*entity.Taller, error)
	// ListByMember devuelve los talleres donde el usuario tiene cualquier
	// membresía, ordenados por fecha de creación.
	ListByMember(ctx context.Context, userID string) ([]*entity.Taller, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// GetMembership devuelve la membresía (taller, usuario) o nil si no existe.
	GetMembership(ctx context.Context, tallerID, userID string) (*entity.Membership, error)
	// ListMembers devuelve las membresías del taller ordenadas por fecha de ingreso.
	ListMembers(ctx context.Context, tallerID string) ([]*entity.Membership, error)
}
