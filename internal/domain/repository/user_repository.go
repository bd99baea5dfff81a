package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// La unicidad de username/email se garantiza en el store (constraint única),
// nunca con read-then-write: Create devuelve ErrEmailAlreadyExists o
// ErrUsernameAlreadyExists según la constraint violada.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByUsernameOrEmail resuelve el identificador de login (username o email).
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error)
	// GetByProvider busca por identidad OAuth (provider, subject).
	GetByProvider(ctx context.Context, provider, providerID string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}
