package repository

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// AlmacenRepository define el puerto de persistencia para Almacen.
type AlmacenRepository interface {
	Create(ctx context.Context, almacen *entity.Almacen) error
	GetByID(ctx context.Context, id string) (*entity.Almacen, error)
	ListByTaller(ctx context.Context, tallerID string) ([]*entity.Almacen, error)
	CountByTaller(ctx context.Context, tallerID string) (int, error)
}
