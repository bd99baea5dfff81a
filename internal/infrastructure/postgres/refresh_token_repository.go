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

var _ repository.RefreshTokenRepository = (*RefreshTokenRepo)(nil)

const refreshTokenColumns = `id, user_id, family_id, token_hash, issued_at, expires_at, revoked, replaced_by, device_info`

// RefreshTokenRepo implementación del puerto RefreshTokenRepository sobre PostgreSQL.
// Necesita el pool (no un Querier) porque Rotate abre su propia transacción.
type RefreshTokenRepo struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository construye el adaptador de persistencia para refresh tokens.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepo {
	return &RefreshTokenRepo{pool: pool}
}

// Create persiste un refresh token nuevo.
func (r *RefreshTokenRepo) Create(ctx context.Context, token *entity.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, family_id, token_hash, issued_at, expires_at, revoked, replaced_by, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)`
	_, err := r.pool.Exec(ctx, query,
		token.ID, token.UserID, token.FamilyID, token.TokenHash,
		token.IssuedAt, token.ExpiresAt, token.Revoked, token.ReplacedBy, token.DeviceInfo,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetByTokenHash obtiene un token por el hash de su valor crudo.
func (r *RefreshTokenRepo) GetByTokenHash(ctx context.Context, hash string) (*entity.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`
	var t entity.RefreshToken
	var replacedBy *string
	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&t.ID, &t.UserID, &t.FamilyID, &t.TokenHash,
		&t.IssuedAt, &t.ExpiresAt, &t.Revoked, &replacedBy, &t.DeviceInfo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if replacedBy != nil {
		t.ReplacedBy = *replacedBy
	}
	return &t, nil
}

// Rotate revoca el token presentado y crea el sucesor en una transacción.
// La transición revoked=false→true es un UPDATE condicional: si no afecta
// filas, otra rotación concurrente ya ganó y no se persiste nada.
func (r *RefreshTokenRepo) Rotate(ctx context.Context, tokenID string, successor *entity.RefreshToken) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE, replaced_by = $2
		WHERE id = $1 AND revoked = FALSE`, tokenID, successor.ID)
	if err != nil {
		return false, fmt.Errorf("revocar token rotado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, family_id, token_hash, issued_at, expires_at, revoked, replaced_by, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NULL, $7)`,
		successor.ID, successor.UserID, successor.FamilyID, successor.TokenHash,
		successor.IssuedAt, successor.ExpiresAt, successor.DeviceInfo,
	)
	if err != nil {
		return false, fmt.Errorf("insert sucesor: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}

// Revoke marca un token como revocado. Idempotente.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, tokenID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`, tokenID)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeFamily revoca todos los tokens del linaje.
func (r *RefreshTokenRepo) RevokeFamily(ctx context.Context, familyID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE family_id = $1 AND revoked = FALSE`, familyID)
	if err != nil {
		return fmt.Errorf("revoke family: %w", err)
	}
	return nil
}

// RevokeAllByUser revoca todos los tokens vigentes del usuario.
func (r *RefreshTokenRepo) RevokeAllByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("revoke all by user: %w", err)
	}
	return nil
}
