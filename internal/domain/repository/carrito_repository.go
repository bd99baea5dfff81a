package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// CarritoRepository define el puerto de persistencia para Carrito.
// Las variantes ForUpdate toman lock de fila cuando corren dentro de una
// transacción (fusión de carritos): la suma de cantidades se calcula sobre una
// lectura consistente de ambos carritos.
type CarritoRepository interface {
	Create(ctx context.Context, carrito *entity.Carrito) error
	GetByID(ctx context.Context, id string) (*entity.Carrito, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Carrito, error)
	GetByUsuarioForUpdate(ctx context.Context, usuarioID string) (*entity.Carrito, error)
	ListByUsuario(ctx context.Context, usuarioID string) ([]*entity.Carrito, error)
	// AsignarUsuario adjunta un carrito anónimo a un usuario.
	AsignarUsuario(ctx context.Context, carritoID, usuarioID string) error
	UpdateItems(ctx context.Context, carritoID string, items []entity.CarritoItem) error
	Delete(ctx context.Context, carritoID string) error
}
