package carrito

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// CarritoUseCase operaciones de carrito y continuidad anónimo→autenticado.
type CarritoUseCase struct {
	carritos repository.CarritoRepository
	tx       TxRunner
}

// NewCarritoUseCase construye el caso de uso de carritos.
func NewCarritoUseCase(carritos repository.CarritoRepository, tx TxRunner) *CarritoUseCase {
	return &CarritoUseCase{carritos: carritos, tx: tx}
}

// MergeOnLogin fusiona el carrito anónimo con el del usuario al momento del
// login. Si el usuario no tiene carrito, el anónimo se le adjunta; si ya tiene
// uno, se suman las cantidades por producto y el anónimo se elimina. La
// operación es idempotente: un segundo login con el mismo id de carrito
// anónimo es un no-op porque el carrito ya no existe.
func (uc *CarritoUseCase) MergeOnLogin(ctx context.Context, carritoID, userID string) error {
	if carritoID == "" {
		return nil
	}
	return uc.tx.Run(ctx, func(repo repository.CarritoRepository) error {
		anon, err := repo.GetByIDForUpdate(ctx, carritoID)
		if err != nil {
			return fmt.Errorf("buscar carrito anónimo: %w", err)
		}
		if anon == nil || anon.UsuarioID != "" {
			// Ya fusionado o nunca existió: no-op.
			return nil
		}
		mine, err := repo.GetByUsuarioForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("buscar carrito del usuario: %w", err)
		}
		if mine == nil {
			return repo.AsignarUsuario(ctx, anon.ID, userID)
		}
		merged := entity.MergeItems(mine.Items, anon.Items)
		if err := repo.UpdateItems(ctx, mine.ID, merged); err != nil {
			return fmt.Errorf("actualizar items: %w", err)
		}
		if err := repo.Delete(ctx, anon.ID); err != nil {
			return fmt.Errorf("descartar carrito anónimo: %w", err)
		}
		log.Debug().Str("carrito_id", anon.ID).Str("user_id", userID).Msg("carrito anónimo fusionado")
		return nil
	})
}

// Crear crea un carrito, anónimo si no trae usuario.
func (uc *CarritoUseCase) Crear(ctx context.Context, in dto.CreateCarritoRequest) (*dto.CarritoResponse, error) {
	items := make([]entity.CarritoItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductoID == "" || it.Cantidad < 0 {
			return nil, domain.ErrInvalidInput
		}
		items = append(items, entity.CarritoItem{ProductoID: it.ProductoID, Cantidad: it.Cantidad})
	}
	c := &entity.Carrito{
		ID:           uuid.New().String(),
		UsuarioID:    in.UsuarioID,
		Items:        items,
		RealizadoPor: in.RealizadoPor,
		CreadoEn:     time.Now(),
	}
	if err := uc.carritos.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("crear carrito: %w", err)
	}
	return toCarritoResponse(c), nil
}

// GetByID devuelve un carrito por id.
func (uc *CarritoUseCase) GetByID(ctx context.Context, id string) (*dto.CarritoResponse, error) {
	c, err := uc.carritos.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar carrito: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCarritoResponse(c), nil
}

// ListarPorUsuario devuelve los carritos del usuario.
func (uc *CarritoUseCase) ListarPorUsuario(ctx context.Context, usuarioID string) ([]dto.CarritoResponse, error) {
	list, err := uc.carritos.ListByUsuario(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("listar carritos: %w", err)
	}
	out := make([]dto.CarritoResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCarritoResponse(c))
	}
	return out, nil
}

// AddItem agrega cantidad de un producto al carrito, sumando si la línea existe.
func (uc *CarritoUseCase) AddItem(ctx context.Context, carritoID string, in dto.CarritoItemRequest) (*dto.CarritoResponse, error) {
	if in.ProductoID == "" {
		return nil, domain.ErrInvalidInput
	}
	cantidad := in.Cantidad
	if cantidad == 0 {
		cantidad = 1
	}
	c, err := uc.carritos.GetByID(ctx, carritoID)
	if err != nil {
		return nil, fmt.Errorf("buscar carrito: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c.Items = entity.MergeItems(c.Items, []entity.CarritoItem{{ProductoID: in.ProductoID, Cantidad: cantidad}})
	if err := uc.carritos.UpdateItems(ctx, c.ID, c.Items); err != nil {
		return nil, fmt.Errorf("actualizar items: %w", err)
	}
	return toCarritoResponse(c), nil
}

// RemoveItem elimina la línea de un producto del carrito.
func (uc *CarritoUseCase) RemoveItem(ctx context.Context, carritoID, productoID string) (*dto.CarritoResponse, error) {
	c, err := uc.carritos.GetByID(ctx, carritoID)
	if err != nil {
		return nil, fmt.Errorf("buscar carrito: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	items := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductoID != productoID {
			items = append(items, it)
		}
	}
	c.Items = items
	if err := uc.carritos.UpdateItems(ctx, c.ID, c.Items); err != nil {
		return nil, fmt.Errorf("actualizar items: %w", err)
	}
	return toCarritoResponse(c), nil
}

// Clear vacía el carrito.
func (uc *CarritoUseCase) Clear(ctx context.Context, carritoID string) (*dto.CarritoResponse, error) {
	c, err := uc.carritos.GetByID(ctx, carritoID)
	if err != nil {
		return nil, fmt.Errorf("buscar carrito: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c.Items = []entity.CarritoItem{}
	if err := uc.carritos.UpdateItems(ctx, c.ID, c.Items); err != nil {
		return nil, fmt.Errorf("actualizar items: %w", err)
	}
	return toCarritoResponse(c), nil
}

// Eliminar borra el carrito.
func (uc *CarritoUseCase) Eliminar(ctx context.Context, carritoID string) error {
	c, err := uc.carritos.GetByID(ctx, carritoID)
	if err != nil {
		return fmt.Errorf("buscar carrito: %w", err)
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return uc.carritos.Delete(ctx, carritoID)
}

func toCarritoResponse(c *entity.Carrito) *dto.CarritoResponse {
	items := make([]dto.CarritoItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, dto.CarritoItemResponse{ProductoID: it.ProductoID, Cantidad: it.Cantidad})
	}
	return &dto.CarritoResponse{
		ID:           c.ID,
		UsuarioID:    c.UsuarioID,
		Items:        items,
		RealizadoPor: c.RealizadoPor,
		CreadoEn:     c.CreadoEn,
	}
}
