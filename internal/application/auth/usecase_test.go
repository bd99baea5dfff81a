package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Repuestos-api/internal/application/auth"
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// fakeUserRepo implementa repository.UserRepository en memoria con las mismas
// garantías de unicidad que el schema (username, email, provider+subject).
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameAlreadyExists
		}
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, identifier string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByProvider(_ context.Context, provider, providerID string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Provider == provider && u.ProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

// fakeVerifier devuelve una identidad fija para una aserción concreta.
type fakeVerifier struct {
	identity *auth.Identity
	token    string
}

func (f *fakeVerifier) Verify(_ context.Context, provider, assertion string) (*auth.Identity, error) {
	if f.identity == nil || assertion != f.token || provider != f.identity.Provider {
		return nil, domain.ErrUnauthorized
	}
	id := *f.identity
	return &id, nil
}

// fakeJoiner registra los canjes de invitación solicitados.
type fakeJoiner struct {
	taller *entity.Taller
	code   string
	calls  []string
}

func (f *fakeJoiner) AceptarInvitacion(_ context.Context, userID, rawCode string) (*entity.Taller, error) {
	f.calls = append(f.calls, userID+":"+rawCode)
	if f.taller == nil || rawCode != f.code {
		return nil, domain.ErrInvitacionInvalida
	}
	return f.taller, nil
}

// fakeMerger registra las fusiones de carrito solicitadas.
type fakeMerger struct {
	calls []string
}

func (f *fakeMerger) MergeOnLogin(_ context.Context, carritoID, userID string) error {
	f.calls = append(f.calls, carritoID+":"+userID)
	return nil
}

func newTestAuthUseCase(users *fakeUserRepo, verifier auth.OAuthVerifier, joiner auth.TallerJoiner, merger auth.CartMerger) *auth.AuthUseCase {
	tokens := newTestTokenService(newFakeTokenRepo())
	return auth.NewAuthUseCase(users, tokens, verifier, joiner, merger)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro y login local
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Registro seguido de login con las mismas credenciales.
func TestAuthUseCase_RegisterYLogin(t *testing.T) {
	users := newFakeUserRepo()
	uc := newTestAuthUseCase(users, nil, nil, nil)
	ctx := context.Background()

	sesion, err := uc.Register(ctx, dto.RegisterRequest{
		Username: "maria",
		Email:    "Maria@Taller.com",
		Password: "super-secreta",
		Nombre:   "María",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sesion.AccessToken)
	assert.NotEmpty(t, sesion.RefreshToken)
	// El email se normaliza a minúsculas.
	assert.Equal(t, "maria@taller.com", sesion.User.Email)
	assert.Nil(t, sesion.Joined)

	// Login por username y por email.
	porUsername, err := uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "maria", Password: "super-secreta"})
	require.NoError(t, err)
	assert.Equal(t, sesion.User.ID, porUsername.User.ID)

	porEmail, err := uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "maria@taller.com", Password: "super-secreta"})
	require.NoError(t, err)
	assert.Equal(t, sesion.User.ID, porEmail.User.ID)
}

// Caso 2: Registrar dos veces el mismo email o username produce conflicto.
func TestAuthUseCase_RegisterDuplicado(t *testing.T) {
	users := newFakeUserRepo()
	uc := newTestAuthUseCase(users, nil, nil, nil)
	ctx := context.Background()

	_, err := uc.Register(ctx, dto.RegisterRequest{Username: "maria", Email: "maria@taller.com", Password: "super-secreta"})
	require.NoError(t, err)

	_, err = uc.Register(ctx, dto.RegisterRequest{Username: "maria", Email: "otra@taller.com", Password: "super-secreta"})
	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)

	_, err = uc.Register(ctx, dto.RegisterRequest{Username: "otra", Email: "maria@taller.com", Password: "super-secreta"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

// Caso 3: El fallo de login es uniforme: usuario inexistente y password
// incorrecto devuelven exactamente el mismo error.
func TestAuthUseCase_LoginFalloUniforme(t *testing.T) {
	users := newFakeUserRepo()
	uc := newTestAuthUseCase(users, nil, nil, nil)
	ctx := context.Background()

	_, err := uc.Register(ctx, dto.RegisterRequest{Username: "maria", Email: "maria@taller.com", Password: "super-secreta"})
	require.NoError(t, err)

	_, errNoExiste := uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "fantasma", Password: "super-secreta"})
	_, errMalPass := uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "maria", Password: "incorrecta"})

	assert.ErrorIs(t, errNoExiste, domain.ErrUnauthorized)
	assert.ErrorIs(t, errMalPass, domain.ErrUnauthorized)
	assert.Equal(t, errNoExiste, errMalPass)
}

// Caso 4: Una cuenta inactiva no puede iniciar sesión aunque el password sea
// correcto.
func TestAuthUseCase_LoginCuentaInactiva(t *testing.T) {
	users := newFakeUserRepo()
	uc := newTestAuthUseCase(users, nil, nil, nil)
	ctx := context.Background()

	sesion, err := uc.Register(ctx, dto.RegisterRequest{Username: "maria", Email: "maria@taller.com", Password: "super-secreta"})
	require.NoError(t, err)

	u, err := users.GetByID(ctx, sesion.User.ID)
	require.NoError(t, err)
	u.Activo = false
	require.NoError(t, users.Update(ctx, u))

	_, err = uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "maria", Password: "super-secreta"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Caso 5: Un login con carritoId dispara la fusión de carritos antes de emitir
// los tokens.
func TestAuthUseCase_LoginFusionaCarrito(t *testing.T) {
	users := newFakeUserRepo()
	merger := &fakeMerger{}
	uc := newTestAuthUseCase(users, nil, nil, merger)
	ctx := context.Background()

	sesion, err := uc.Register(ctx, dto.RegisterRequest{Username: "maria", Email: "maria@taller.com", Password: "super-secreta"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "maria", Password: "super-secreta", CarritoID: "carrito-anon"})
	require.NoError(t, err)
	require.Len(t, merger.calls, 1)
	assert.Equal(t, "carrito-anon:"+sesion.User.ID, merger.calls[0])

	// Sin carritoId no se intenta fusionar.
	_, err = uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "maria", Password: "super-secreta"})
	require.NoError(t, err)
	assert.Len(t, merger.calls, 1)
}

// Caso 6: Registro con código de invitación válido une al usuario al taller;
// un código inválido se ignora sin abortar el registro.
func TestAuthUseCase_RegisterConInvitacion(t *testing.T) {
	users := newFakeUserRepo()
	joiner := &fakeJoiner{
		taller: &entity.Taller{ID: "taller-1", Nombre: "Taller Centro", Activo: true},
		code:   "ABC234",
	}
	uc := newTestAuthUseCase(users, nil, joiner, nil)
	ctx := context.Background()

	conCodigo, err := uc.Register(ctx, dto.RegisterRequest{
		Username: "maria", Email: "maria@taller.com", Password: "super-secreta", InviteCode: "ABC234",
	})
	require.NoError(t, err)
	require.NotNil(t, conCodigo.Joined)
	assert.Equal(t, "taller-1", conCodigo.Joined.ID)

	sinCodigo, err := uc.Register(ctx, dto.RegisterRequest{
		Username: "pedro", Email: "pedro@taller.com", Password: "super-secreta", InviteCode: "XXXXXX",
	})
	require.NoError(t, err)
	assert.Nil(t, sinCodigo.Joined)
}

// ──────────────────────────────────────────────────────────────────────────────
// OAuth
// ──────────────────────────────────────────────────────────────────────────────

// Caso 7: Primer login OAuth crea la cuenta (sin password); el segundo la
// reutiliza por (provider, subject).
func TestAuthUseCase_LoginOAuthAutoRegistro(t *testing.T) {
	users := newFakeUserRepo()
	verifier := &fakeVerifier{
		token: "id-token-google",
		identity: &auth.Identity{
			Provider: entity.ProviderGoogle,
			Subject:  "google-sub-1",
			Email:    "maria@gmail.com",
			Nombre:   "María",
		},
	}
	uc := newTestAuthUseCase(users, verifier, nil, nil)
	ctx := context.Background()

	primera, err := uc.LoginOAuth(ctx, entity.ProviderGoogle, dto.OAuthLoginRequest{Token: "id-token-google"})
	require.NoError(t, err)
	assert.Equal(t, "maria@gmail.com", primera.User.Email)
	assert.Equal(t, entity.ProviderGoogle, primera.User.Provider)

	// La cuenta creada por OAuth no tiene password: el login local no aplica.
	_, err = uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "maria@gmail.com", Password: "lo-que-sea"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	segunda, err := uc.LoginOAuth(ctx, entity.ProviderGoogle, dto.OAuthLoginRequest{Token: "id-token-google"})
	require.NoError(t, err)
	assert.Equal(t, primera.User.ID, segunda.User.ID)
}

// Caso 8: Si ya existe una cuenta local con el email del proveedor, el login
// OAuth la vincula en vez de crear otra.
func TestAuthUseCase_LoginOAuthVinculaCuentaExistente(t *testing.T) {
	users := newFakeUserRepo()
	verifier := &fakeVerifier{
		token: "id-token-google",
		identity: &auth.Identity{
			Provider: entity.ProviderGoogle,
			Subject:  "google-sub-1",
			Email:    "maria@taller.com",
		},
	}
	uc := newTestAuthUseCase(users, verifier, nil, nil)
	ctx := context.Background()

	local, err := uc.Register(ctx, dto.RegisterRequest{Username: "maria", Email: "maria@taller.com", Password: "super-secreta"})
	require.NoError(t, err)

	oauthSesion, err := uc.LoginOAuth(ctx, entity.ProviderGoogle, dto.OAuthLoginRequest{Token: "id-token-google"})
	require.NoError(t, err)
	assert.Equal(t, local.User.ID, oauthSesion.User.ID)

	// La vinculación persiste: la cuenta queda localizable por proveedor.
	u, err := users.GetByProvider(ctx, entity.ProviderGoogle, "google-sub-1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, local.User.ID, u.ID)

	// El password original sigue funcionando.
	_, err = uc.Login(ctx, dto.LoginRequest{UsernameOrEmail: "maria", Password: "super-secreta"})
	assert.NoError(t, err)
}

// Caso 9: Una aserción inválida es rechazada sin crear ninguna cuenta.
func TestAuthUseCase_LoginOAuthTokenInvalido(t *testing.T) {
	users := newFakeUserRepo()
	verifier := &fakeVerifier{token: "valido", identity: &auth.Identity{Provider: entity.ProviderGoogle, Subject: "s"}}
	uc := newTestAuthUseCase(users, verifier, nil, nil)

	_, err := uc.LoginOAuth(context.Background(), entity.ProviderGoogle, dto.OAuthLoginRequest{Token: "robado"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, users.users)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida de la sesión
// ──────────────────────────────────────────────────────────────────────────────

// Caso 10: Refresh rota el token; logout revoca y el refresh posterior falla.
func TestAuthUseCase_RefreshYLogout(t *testing.T) {
	users := newFakeUserRepo()
	uc := newTestAuthUseCase(users, nil, nil, nil)
	ctx := context.Background()

	sesion, err := uc.Register(ctx, dto.RegisterRequest{Username: "maria", Email: "maria@taller.com", Password: "super-secreta"})
	require.NoError(t, err)

	rotado, err := uc.Refresh(ctx, sesion.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sesion.RefreshToken, rotado.RefreshToken)

	require.NoError(t, uc.Logout(ctx, rotado.RefreshToken))
	_, err = uc.Refresh(ctx, rotado.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Logout repetido no falla.
	assert.NoError(t, uc.Logout(ctx, rotado.RefreshToken))
}

// Caso 11: Me devuelve el perfil sin exponer material sensible.
func TestAuthUseCase_Me(t *testing.T) {
	users := newFakeUserRepo()
	uc := newTestAuthUseCase(users, nil, nil, nil)
	ctx := context.Background()

	sesion, err := uc.Register(ctx, dto.RegisterRequest{Username: "maria", Email: "maria@taller.com", Password: "super-secreta", Nombre: "María"})
	require.NoError(t, err)

	perfil, err := uc.Me(ctx, sesion.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria", perfil.Username)
	assert.Equal(t, "María", perfil.Nombre)

	_, err = uc.Me(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
