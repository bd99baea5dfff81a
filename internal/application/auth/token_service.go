package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/pkg/jwt"
)

// JWTConfig configuración para emisión de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
	RefreshTTL time.Duration
}

// TokenPair par de tokens emitido al cliente: access JWT firmado y refresh
// token crudo (opaco). El refresh solo se entrega aquí; en adelante solo
// existe su hash.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService emite, rota y revoca refresh tokens, y firma access tokens.
//
// Cada login abre una familia nueva de refresh tokens; cada rotación revoca el
// token presentado y crea un sucesor dentro de la misma familia. Presentar un
// token ya rotado se trata como evidencia de robo y revoca la familia entera,
// acotando el daño de un refresh token filtrado a una sola rotación.
type TokenService struct {
	tokens repository.RefreshTokenRepository
	cfg    JWTConfig
}

// NewTokenService construye el servicio de tokens.
func NewTokenService(tokens repository.RefreshTokenRepository, cfg JWTConfig) *TokenService {
	return &TokenService{tokens: tokens, cfg: cfg}
}

// hashToken calcula el hash SHA-256 (base64) de un refresh token crudo.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// newRawToken genera un refresh token crudo opaco.
func newRawToken() string {
	return uuid.New().String() + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// Issue crea una familia nueva con un refresh token y firma un access token.
func (s *TokenService) Issue(ctx context.Context, userID, device string) (*TokenPair, error) {
	access, err := jwt.Generate(s.cfg.Secret, userID, s.cfg.Issuer, s.cfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("firmar access token: %w", err)
	}
	raw := newRawToken()
	now := time.Now()
	rt := &entity.RefreshToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		FamilyID:   uuid.New().String(),
		TokenHash:  hashToken(raw),
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.cfg.RefreshTTL),
		DeviceInfo: device,
	}
	if err := s.tokens.Create(ctx, rt); err != nil {
		return nil, fmt.Errorf("persistir refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: raw}, nil
}

// Rotate valida el refresh token presentado, lo revoca y emite el sucesor en
// la misma familia. Devuelve ErrUnauthorized si el token no existe, expiró o
// ya fue revocado. Si el token ya había sido rotado (tiene sucesor), se revoca
// la familia completa antes de fallar.
func (s *TokenService) Rotate(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	rt, err := s.tokens.GetByTokenHash(ctx, hashToken(rawRefresh))
	if err != nil {
		return nil, fmt.Errorf("buscar refresh token: %w", err)
	}
	if rt == nil {
		return nil, domain.ErrUnauthorized
	}
	if !rt.Activo(time.Now()) {
		if rt.Revoked && rt.ReplacedBy != "" {
			// Reuso de un token ya rotado: alguien más tiene el sucesor.
			log.Warn().Str("user_id", rt.UserID).Str("family_id", rt.FamilyID).
				Msg("reuso de refresh token detectado, revocando familia")
			if err := s.tokens.RevokeFamily(ctx, rt.FamilyID); err != nil {
				return nil, fmt.Errorf("revocar familia: %w", err)
			}
		}
		return nil, domain.ErrUnauthorized
	}

	access, err := jwt.Generate(s.cfg.Secret, rt.UserID, s.cfg.Issuer, s.cfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("firmar access token: %w", err)
	}
	raw := newRawToken()
	now := time.Now()
	successor := &entity.RefreshToken{
		ID:         uuid.New().String(),
		UserID:     rt.UserID,
		FamilyID:   rt.FamilyID,
		TokenHash:  hashToken(raw),
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.cfg.RefreshTTL),
		DeviceInfo: rt.DeviceInfo,
	}
	ok, err := s.tokens.Rotate(ctx, rt.ID, successor)
	if err != nil {
		return nil, fmt.Errorf("rotar refresh token: %w", err)
	}
	if !ok {
		// Otra rotación concurrente ganó la transición: mismo tratamiento que
		// el reuso, porque el mismo token fue presentado dos veces.
		log.Warn().Str("user_id", rt.UserID).Str("family_id", rt.FamilyID).
			Msg("rotación concurrente perdida, revocando familia")
		if err := s.tokens.RevokeFamily(ctx, rt.FamilyID); err != nil {
			return nil, fmt.Errorf("revocar familia: %w", err)
		}
		return nil, domain.ErrUnauthorized
	}
	return &TokenPair{AccessToken: access, RefreshToken: raw}, nil
}

// Revoke marca el refresh token presentado como revocado (logout). Idempotente:
// un token inexistente o ya revocado no produce error, para no revelar al
// llamador si el token era válido.
func (s *TokenService) Revoke(ctx context.Context, rawRefresh string) error {
	rt, err := s.tokens.GetByTokenHash(ctx, hashToken(rawRefresh))
	if err != nil {
		return fmt.Errorf("buscar refresh token: %w", err)
	}
	if rt == nil {
		return nil
	}
	if err := s.tokens.Revoke(ctx, rt.ID); err != nil {
		return fmt.Errorf("revocar refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revoca todos los refresh tokens vigentes del usuario en
// todas sus familias (cerrar todas las sesiones).
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("revocar tokens del usuario: %w", err)
	}
	return nil
}

// VerifyAccess valida firma y expiración del access token y devuelve el user id.
// No toca almacenamiento.
func (s *TokenService) VerifyAccess(accessToken string) (string, error) {
	userID, err := jwt.Parse(s.cfg.Secret, accessToken)
	if err != nil {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}
