package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// AuthUseCase fachada de sesión: registro, login, OAuth, refresh, logout,
// revocación total y perfil. No mantiene sesión ambiente: toda operación
// recibe el token o el user id explícitamente.
type AuthUseCase struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	oauth    OAuthVerifier
	talleres TallerJoiner
	carritos CartMerger
}

// NewAuthUseCase construye el caso de uso de auth. oauth, talleres y carritos
// pueden ser nil en contextos donde esas capacidades no aplican (tests).
func NewAuthUseCase(userRepo repository.UserRepository, tokens *TokenService, oauth OAuthVerifier, talleres TallerJoiner, carritos CartMerger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, tokens: tokens, oauth: oauth, talleres: talleres, carritos: carritos}
}

// Register crea un usuario local: hashea el password con bcrypt y persiste.
// La unicidad de username/email la garantiza el store; devuelve
// ErrEmailAlreadyExists o ErrUsernameAlreadyExists en conflicto. Con
// InviteCode válido, une al usuario al taller en el mismo registro.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.SessionResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashear password: %w", err)
	}
	user := &entity.User{
		ID:            uuid.New().String(),
		Username:      in.Username,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:  string(hash),
		Nombre:        in.Nombre,
		Apellido:      in.Apellido,
		Activo:        true,
		FechaCreacion: time.Now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	joined := uc.joinByInvite(ctx, user.ID, in.InviteCode)
	pair, err := uc.tokens.Issue(ctx, user.ID, in.Device)
	if err != nil {
		return nil, err
	}
	return sessionResponse(user, pair, joined), nil
}

// Login verifica identificador (username o email) y password, fusiona el
// carrito anónimo si se presentó uno y emite un par de tokens nuevo.
// El fallo es uniforme (ErrUnauthorized) tanto si el usuario no existe como si
// el password no coincide, para no distinguir ambos casos.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.SessionResponse, error) {
	user, err := uc.userRepo.GetByUsernameOrEmail(ctx, in.UsernameOrEmail)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		log.Warn().Str("identifier", in.UsernameOrEmail).Msg("login fallido: usuario no encontrado")
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		log.Warn().Str("identifier", in.UsernameOrEmail).Msg("login fallido: password inválido")
		return nil, domain.ErrUnauthorized
	}
	if !user.Activo {
		return nil, domain.ErrForbidden
	}
	if err := uc.mergeCart(ctx, in.CarritoID, user.ID); err != nil {
		return nil, err
	}
	pair, err := uc.tokens.Issue(ctx, user.ID, in.Device)
	if err != nil {
		return nil, err
	}
	return sessionResponse(user, pair, nil), nil
}

// LoginOAuth verifica la aserción contra el proveedor y resuelve el usuario:
// primero por (provider, subject), luego por email (vinculando el proveedor),
// y si no existe lo crea sin password (cuenta solo-OAuth).
func (uc *AuthUseCase) LoginOAuth(ctx context.Context, provider string, in dto.OAuthLoginRequest) (*dto.SessionResponse, error) {
	if uc.oauth == nil {
		return nil, domain.ErrUnauthorized
	}
	identity, err := uc.oauth.Verify(ctx, provider, in.Token)
	if err != nil {
		log.Warn().Str("provider", provider).Err(err).Msg("verificación OAuth fallida")
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.userRepo.GetByProvider(ctx, identity.Provider, identity.Subject)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario por proveedor: %w", err)
	}
	if user == nil && identity.Email != "" {
		user, err = uc.userRepo.GetByEmail(ctx, identity.Email)
		if err != nil {
			return nil, fmt.Errorf("buscar usuario por email: %w", err)
		}
		if user != nil && (user.Provider == "" || user.ProviderID == "") {
			// Vincular la identidad del proveedor a la cuenta existente.
			user.Provider = identity.Provider
			user.ProviderID = identity.Subject
			if err := uc.userRepo.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("vincular proveedor: %w", err)
			}
		}
	}
	if user == nil {
		user, err = uc.autoRegister(ctx, identity)
		if err != nil {
			return nil, err
		}
	}

	joined := uc.joinByInvite(ctx, user.ID, in.InviteCode)
	if err := uc.mergeCart(ctx, in.CarritoID, user.ID); err != nil {
		return nil, err
	}
	pair, err := uc.tokens.Issue(ctx, user.ID, in.Device)
	if err != nil {
		return nil, err
	}
	return sessionResponse(user, pair, joined), nil
}

// autoRegister crea una cuenta solo-OAuth: username generado desde el email y
// sin hash de password.
func (uc *AuthUseCase) autoRegister(ctx context.Context, identity *Identity) (*entity.User, error) {
	local := identity.Email
	if at := strings.IndexByte(local, '@'); at > 0 {
		local = local[:at]
	}
	user := &entity.User{
		ID:            uuid.New().String(),
		Username:      local + uuid.New().String()[:4],
		Email:         strings.ToLower(identity.Email),
		Nombre:        identity.Nombre,
		Apellido:      identity.Apellido,
		Provider:      identity.Provider,
		ProviderID:    identity.Subject,
		Activo:        true,
		FechaCreacion: time.Now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auto-registro oauth: %w", err)
	}
	return user, nil
}

// Refresh delega en la rotación del TokenService.
func (uc *AuthUseCase) Refresh(ctx context.Context, rawRefresh string) (*dto.TokenPairResponse, error) {
	pair, err := uc.tokens.Rotate(ctx, rawRefresh)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout revoca el refresh token presentado. Siempre tiene éxito aunque el
// token ya fuera inválido, para no filtrar su validez.
func (uc *AuthUseCase) Logout(ctx context.Context, rawRefresh string) error {
	return uc.tokens.Revoke(ctx, rawRefresh)
}

// RevokeAll cierra todas las sesiones del usuario.
func (uc *AuthUseCase) RevokeAll(ctx context.Context, userID string) error {
	return uc.tokens.RevokeAllForUser(ctx, userID)
}

// Me proyecta el usuario a su perfil público (sin hash de password).
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// joinByInvite canjea un código de invitación si se presentó uno. Un código
// inválido no aborta el registro/login: se ignora con un warning.
func (uc *AuthUseCase) joinByInvite(ctx context.Context, userID, code string) *dto.TallerResponse {
	if code == "" || uc.talleres == nil {
		return nil
	}
	taller, err := uc.talleres.AceptarInvitacion(ctx, userID, code)
	if err != nil {
		if !errors.Is(err, domain.ErrInvitacionInvalida) {
			log.Error().Err(err).Msg("canje de invitación en registro")
		}
		return nil
	}
	return &dto.TallerResponse{
		ID:            taller.ID,
		OwnerID:       taller.OwnerID,
		Nombre:        taller.Nombre,
		Activo:        taller.Activo,
		FechaCreacion: taller.FechaCreacion,
	}
}

// mergeCart dispara la continuidad de carrito antes de emitir tokens.
func (uc *AuthUseCase) mergeCart(ctx context.Context, carritoID, userID string) error {
	if carritoID == "" || uc.carritos == nil {
		return nil
	}
	if err := uc.carritos.MergeOnLogin(ctx, carritoID, userID); err != nil {
		return fmt.Errorf("fusionar carrito: %w", err)
	}
	return nil
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Nombre:        u.Nombre,
		Apellido:      u.Apellido,
		Provider:      u.Provider,
		Activo:        u.Activo,
		FechaCreacion: u.FechaCreacion,
	}
}

func sessionResponse(u *entity.User, pair *TokenPair, joined *dto.TallerResponse) *dto.SessionResponse {
	return &dto.SessionResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toUserResponse(u),
		Joined:       joined,
	}
}
