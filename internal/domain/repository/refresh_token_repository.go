package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// RefreshTokenRepository define el puerto de persistencia para RefreshToken.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	GetByTokenHash(ctx context.Context, hash string) (*entity.RefreshToken, error)
	// Rotate revoca el token y crea su sucesor en una sola transacción,
	// dejando replaced_by apuntando al sucesor. La transición revocado=false→true
	// es condicional: devuelve false si el token ya no estaba activo (otra
	// rotación concurrente ganó) y en ese caso no persiste nada.
	Rotate(ctx context.Context, tokenID string, successor *entity.RefreshToken) (bool, error)
	// Revoke marca un token como revocado. Idempotente: revocar un token ya
	// revocado o inexistente no es error.
	Revoke(ctx context.Context, tokenID string) error
	// RevokeFamily revoca todos los tokens de un linaje (detección de reuso).
	RevokeFamily(ctx context.Context, familyID string) error
	// RevokeAllByUser revoca todos los tokens vigentes del usuario en todas sus familias.
	RevokeAllByUser(ctx context.Context, userID string) error
}
