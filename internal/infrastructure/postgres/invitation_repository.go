package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

// InvitationRepo implementación del puerto InvitationRepository sobre PostgreSQL.
// Claim abre su propia transacción: el canje y la membresía se confirman juntos.
type InvitationRepo struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository construye el adaptador de persistencia para invitaciones.
func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepo {
	return &InvitationRepo{pool: pool}
}

// Create persiste una invitación nueva (solo el hash del código).
func (r *InvitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	query := `
		INSERT INTO invitations (id, taller_id, from_user_id, code_hash, used, used_by, attempts, max_attempts, blocked, expires_at, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NULL, 0, $5, FALSE, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.TallerID, inv.FromUserID, inv.CodeHash, inv.MaxAttempts, inv.ExpiresAt, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

// GetByCodeHash obtiene una invitación por el hash del código presentado.
func (r *InvitationRepo) GetByCodeHash(ctx context.Context, hash string) (*entity.Invitation, error) {
	query := `
		SELECT id, taller_id, from_user_id, code_hash, used, used_by, attempts, max_attempts, blocked, last_attempt_at, expires_at, created_at
		FROM invitations WHERE code_hash = $1`
	var inv entity.Invitation
	var usedBy *string
	var lastAttempt *time.Time
	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&inv.ID, &inv.TallerID, &inv.FromUserID, &inv.CodeHash, &inv.Used, &usedBy,
		&inv.Attempts, &inv.MaxAttempts, &inv.Blocked, &lastAttempt, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if usedBy != nil {
		inv.UsedBy = *usedBy
	}
	if lastAttempt != nil {
		inv.LastAttemptAt = *lastAttempt
	}
	return &inv, nil
}

// RegistrarIntento incrementa el contador de intentos y bloquea si excede
// max_attempts, todo en un solo UPDATE.
func (r *InvitationRepo) RegistrarIntento(ctx context.Context, id string) (int, bool, error) {
	query := `
		UPDATE invitations
		SET attempts = attempts + 1,
		    last_attempt_at = NOW(),
		    blocked = blocked OR (attempts + 1 > max_attempts)
		WHERE id = $1
		RETURNING attempts, blocked`
	var attempts int
	var blocked bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&attempts, &blocked); err != nil {
		return 0, false, fmt.Errorf("registrar intento: %w", err)
	}
	return attempts, blocked, nil
}

// Claim canjea la invitación y crea la membresía en una transacción. El
// UPDATE condicional (used=FALSE y no expirada) garantiza exactamente un
// ganador bajo concurrencia; la membresía usa ON CONFLICT DO NOTHING para ser
// idempotente si el usuario ya era miembro.
func (r *InvitationRepo) Claim(ctx context.Context, id, userID string, membership *entity.Membership) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE invitations SET used = TRUE, used_by = $2
		WHERE id = $1 AND used = FALSE AND blocked = FALSE AND expires_at > NOW()`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("canjear invitación: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO taller_members (taller_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (taller_id, user_id) DO NOTHING`,
		membership.TallerID, membership.UserID, membership.Role, membership.JoinedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert membership: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}
