package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// InvitationRepository define el puerto de persistencia para códigos de invitación.
type InvitationRepository interface {
	Create(ctx context.Context, inv *entity.Invitation) error
	GetByCodeHash(ctx context.Context, hash string) (*entity.Invitation, error)
	// RegistrarIntento incrementa el contador de intentos de forma atómica y
	// bloquea el código si supera max_attempts. Devuelve el estado resultante.
	RegistrarIntento(ctx context.Context, id string) (attempts int, blocked bool, err error)
	// Claim realiza la transición used=false→true y crea la membresía del
	// canjeador en una sola transacción. La transición es condicional (incluye
	// expiración): exactamente un llamador concurrente recibe true; el resto
	// recibe false sin efectos. La inserción de membresía es idempotente si el
	// usuario ya era miembro.
	Claim(ctx context.Context, id, userID string, membership *entity.Membership) (bool, error)
}
