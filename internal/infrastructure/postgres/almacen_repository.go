package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.AlmacenRepository = (*AlmacenRepo)(nil)

// AlmacenRepo implementación del puerto AlmacenRepository sobre PostgreSQL.
type AlmacenRepo struct {
	db Querier
}

// NewAlmacenRepository construye el adaptador de persistencia para almacenes.
func NewAlmacenRepository(db Querier) *AlmacenRepo {
	return &AlmacenRepo{db: db}
}

// Create persiste un almacén nuevo.
func (r *AlmacenRepo) Create(ctx context.Context, almacen *entity.Almacen) error {
	query := `
		INSERT INTO almacenes (id, taller_id, nombre, ubicacion, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query,
		almacen.ID, almacen.TallerID, almacen.Nombre, almacen.Ubicacion, almacen.FechaCreacion,
	)
	if err != nil {
		return fmt.Errorf("insert almacen: %w", err)
	}
	return nil
}

// GetByID obtiene un almacén por ID.
func (r *AlmacenRepo) GetByID(ctx context.Context, id string) (*entity.Almacen, error) {
	query := `SELECT id, taller_id, nombre, ubicacion, fecha_creacion FROM almacenes WHERE id = $1`
	var a entity.Almacen
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.TallerID, &a.Nombre, &a.Ubicacion, &a.FechaCreacion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get almacen: %w", err)
	}
	return &a, nil
}

// ListByTaller lista los almacenes de un taller ordenados por fecha de creación.
func (r *AlmacenRepo) ListByTaller(ctx context.Context, tallerID string) ([]*entity.Almacen, error) {
	query := `
		SELECT id, taller_id, nombre, ubicacion, fecha_creacion
		FROM almacenes WHERE taller_id = $1 ORDER BY fecha_creacion`
	rows, err := r.db.Query(ctx, query, tallerID)
	if err != nil {
		return nil, fmt.Errorf("list almacenes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Almacen
	for rows.Next() {
		var a entity.Almacen
		if err := rows.Scan(&a.ID, &a.TallerID, &a.Nombre, &a.Ubicacion, &a.FechaCreacion); err != nil {
			return nil, fmt.Errorf("scan almacen: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// CountByTaller cuenta los almacenes de un taller.
func (r *AlmacenRepo) CountByTaller(ctx context.Context, tallerID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM almacenes WHERE taller_id = $1`, tallerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count almacenes: %w", err)
	}
	return count, nil
}
