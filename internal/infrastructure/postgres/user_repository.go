package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, username, email, password_hash, nombre, apellido, provider, provider_id, activo, fecha_creacion`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	db Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(db Querier) *UserRepo {
	return &UserRepo{db: db}
}

// Create persiste un nuevo usuario. La unicidad de username, email y
// (provider, provider_id) la garantizan constraints del schema; la violación
// se traduce al error de dominio correspondiente.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, nombre, apellido, provider, provider_id, activo, fecha_creacion)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Nombre, user.Apellido,
		user.Provider, user.ProviderID, user.Activo, user.FechaCreacion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			switch {
			case strings.Contains(uniqueConstraintName(err), "username"):
				return domain.ErrUsernameAlreadyExists
			case strings.Contains(uniqueConstraintName(err), "provider"):
				return domain.ErrConflict
			default:
				return domain.ErrEmailAlreadyExists
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

// GetByUsernameOrEmail resuelve el identificador de login.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error) {
	return r.queryOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1 LIMIT 1`, identifier)
}

// GetByProvider busca por identidad OAuth (provider, subject).
func (r *UserRepo) GetByProvider(ctx context.Context, provider, providerID string) (*entity.User, error) {
	return r.queryOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_id = $2`, provider, providerID)
}

// Update actualiza los campos mutables de un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET username = $2, email = $3, password_hash = NULLIF($4, ''), nombre = $5,
			apellido = $6, provider = NULLIF($7, ''), provider_id = NULLIF($8, ''), activo = $9
		WHERE id = $1`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Nombre, user.Apellido,
		user.Provider, user.ProviderID, user.Activo,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) queryOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var u entity.User
	var passwordHash, provider, providerID *string
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &passwordHash, &u.Nombre, &u.Apellido,
		&provider, &providerID, &u.Activo, &u.FechaCreacion,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if provider != nil {
		u.Provider = *provider
	}
	if providerID != nil {
		u.ProviderID = *providerID
	}
	return &u, nil
}
