package carrito

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// TxRunner ejecuta fn con un CarritoRepository atado a una transacción del
// store. La fusión de carritos corre completa dentro de una transacción: la
// lectura de ambos carritos es consistente y el descarte del carrito anónimo
// solo se hace efectivo con el commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.CarritoRepository) error) error
}
