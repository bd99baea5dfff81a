package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.CarritoRepository = (*CarritoRepo)(nil)

const carritoColumns = `id, usuario_id, items, realizado_por, creado_en`

// CarritoRepo implementación del puerto CarritoRepository sobre PostgreSQL.
// Los items se guardan como JSONB. Recibe un Querier: el mismo repositorio
// funciona sobre el pool y atado a una transacción (ver TxRunner).
type CarritoRepo struct {
	db Querier
}

// NewCarritoRepository construye el adaptador de persistencia para carritos.
func NewCarritoRepository(db Querier) *CarritoRepo {
	return &CarritoRepo{db: db}
}

// Create persiste un carrito nuevo.
func (r *CarritoRepo) Create(ctx context.Context, carrito *entity.Carrito) error {
	items, err := json.Marshal(carrito.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	query := `
		INSERT INTO carritos (id, usuario_id, items, realizado_por, creado_en)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)`
	_, err = r.db.Exec(ctx, query,
		carrito.ID, carrito.UsuarioID, items, carrito.RealizadoPor, carrito.CreadoEn,
	)
	if err != nil {
		return fmt.Errorf("insert carrito: %w", err)
	}
	return nil
}

// GetByID obtiene un carrito por ID.
func (r *CarritoRepo) GetByID(ctx context.Context, id string) (*entity.Carrito, error) {
	return r.queryOne(ctx, `SELECT `+carritoColumns+` FROM carritos WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene un carrito por ID con lock de fila.
func (r *CarritoRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Carrito, error) {
	return r.queryOne(ctx, `SELECT `+carritoColumns+` FROM carritos WHERE id = $1 FOR UPDATE`, id)
}

// GetByUsuarioForUpdate obtiene el carrito del usuario con lock de fila.
func (r *CarritoRepo) GetByUsuarioForUpdate(ctx context.Context, usuarioID string) (*entity.Carrito, error) {
	return r.queryOne(ctx,
		`SELECT `+carritoColumns+` FROM carritos WHERE usuario_id = $1 ORDER BY creado_en LIMIT 1 FOR UPDATE`,
		usuarioID)
}

// ListByUsuario lista los carritos de un usuario.
func (r *CarritoRepo) ListByUsuario(ctx context.Context, usuarioID string) ([]*entity.Carrito, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+carritoColumns+` FROM carritos WHERE usuario_id = $1 ORDER BY creado_en`, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("list carritos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Carrito
	for rows.Next() {
		c, err := scanCarrito(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// AsignarUsuario adjunta un carrito anónimo a un usuario.
func (r *CarritoRepo) AsignarUsuario(ctx context.Context, carritoID, usuarioID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE carritos SET usuario_id = $2 WHERE id = $1`, carritoID, usuarioID)
	if err != nil {
		return fmt.Errorf("asignar usuario: %w", err)
	}
	return nil
}

// UpdateItems reemplaza las líneas del carrito.
func (r *CarritoRepo) UpdateItems(ctx context.Context, carritoID string, items []entity.CarritoItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`UPDATE carritos SET items = $2 WHERE id = $1`, carritoID, payload)
	if err != nil {
		return fmt.Errorf("update items: %w", err)
	}
	return nil
}

// Delete elimina un carrito.
func (r *CarritoRepo) Delete(ctx context.Context, carritoID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM carritos WHERE id = $1`, carritoID)
	if err != nil {
		return fmt.Errorf("delete carrito: %w", err)
	}
	return nil
}

func (r *CarritoRepo) queryOne(ctx context.Context, query string, args ...any) (*entity.Carrito, error) {
	row := r.db.QueryRow(ctx, query, args...)
	c, err := scanCarrito(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func scanCarrito(row pgx.Row) (*entity.Carrito, error) {
	var c entity.Carrito
	var usuarioID *string
	var items []byte
	if err := row.Scan(&c.ID, &usuarioID, &items, &c.RealizadoPor, &c.CreadoEn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan carrito: %w", err)
	}
	if usuarioID != nil {
		c.UsuarioID = *usuarioID
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &c.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	return &c, nil
}
