package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.TallerRepository = (*TallerRepo)(nil)

// TallerRepo implementación del puerto TallerRepository sobre PostgreSQL.
type TallerRepo struct {
	pool *pgxpool.Pool
}

// NewTallerRepository construye el adaptador de persistencia para talleres.
func NewTallerRepository(pool *pgxpool.Pool) *TallerRepo {
	return &TallerRepo{pool: pool}
}

// CreateWithOwner persiste el taller y la membresía owner en una transacción.
func (r *TallerRepo) CreateWithOwner(ctx context.Context, taller *entity.Taller, owner *entity.Membership) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO talleres (id, owner_id, nombre, activo, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5)`,
		taller.ID, taller.OwnerID, taller.Nombre, taller.Activo, taller.FechaCreacion,
	)
	if err != nil {
		return fmt.Errorf("insert taller: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO taller_members (taller_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)`,
		owner.TallerID, owner.UserID, owner.Role, owner.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("insert membership owner: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID obtiene un taller por ID.
func (r *TallerRepo) GetByID(ctx context.Context, id string) (*entity.Taller, error) {
	query := `SELECT id, owner_id, nombre, activo, fecha_creacion FROM talleres WHERE id = $1`
	var t entity.Taller
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.OwnerID, &t.Nombre, &t.Activo, &t.FechaCreacion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get taller: %w", err)
	}
	return &t, nil
}

// ListByMember lista los talleres donde el usuario tiene membresía, ordenados
// por fecha de creación.
func (r *TallerRepo) ListByMember(ctx context.Context, userID string) ([]*entity.Taller, error) {
	query := `
		SELECT t.id, t.owner_id, t.nombre, t.activo, t.fecha_creacion
		FROM talleres t
		JOIN taller_members m ON m.taller_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.fecha_creacion`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list talleres: %w", err)
	}
	defer rows.Close()
	var list []*entity.Taller
	for rows.Next() {
		var t entity.Taller
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Nombre, &t.Activo, &t.FechaCreacion); err != nil {
			return nil, fmt.Errorf("scan taller: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// CountByOwner cuenta los talleres cuyo owner es el usuario.
func (r *TallerRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM talleres WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count talleres: %w", err)
	}
	return count, nil
}

// ListMembers lista las membresías del taller ordenadas por fecha de ingreso.
func (r *TallerRepo) ListMembers(ctx context.Context, tallerID string) ([]*entity.Membership, error) {
	query := `
		SELECT taller_id, user_id, role, joined_at
		FROM taller_members WHERE taller_id = $1 ORDER BY joined_at`
	rows, err := r.pool.Query(ctx, query, tallerID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()
	var list []*entity.Membership
	for rows.Next() {
		var m entity.Membership
		if err := rows.Scan(&m.TallerID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// GetMembership obtiene la membresía (taller, usuario) o nil.
func (r *TallerRepo) GetMembership(ctx context.Context, tallerID, userID string) (*entity.Membership, error) {
	query := `SELECT taller_id, user_id, role, joined_at FROM taller_members WHERE taller_id = $1 AND user_id = $2`
	var m entity.Membership
	err := r.pool.QueryRow(ctx, query, tallerID, userID).Scan(&m.TallerID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}
