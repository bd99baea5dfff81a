package taller_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/taller"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// fakeStore agrupa talleres, membresías, almacenes e invitaciones en memoria.
// Claim y RegistrarIntento respetan el mismo contrato de transiciones
// condicionales que el adaptador de PostgreSQL.
type fakeStore struct {
	mu           sync.Mutex
	talleres     map[string]*entity.Taller
	memberships  map[string]*entity.Membership // key tallerID+"/"+userID
	almacenes    map[string]*entity.Almacen
	invitaciones map[string]*entity.Invitation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		talleres:     make(map[string]*entity.Taller),
		memberships:  make(map[string]*entity.Membership),
		almacenes:    make(map[string]*entity.Almacen),
		invitaciones: make(map[string]*entity.Invitation),
	}
}

// --- repository.TallerRepository ---

func (f *fakeStore) CreateWithOwner(_ context.Context, t *entity.Taller, owner *entity.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ct, co := *t, *owner
	f.talleres[t.ID] = &ct
	f.memberships[owner.TallerID+"/"+owner.UserID] = &co
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*entity.Taller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.talleres[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) ListByMember(_ context.Context, userID string) ([]*entity.Taller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Taller
	for _, m := range f.memberships {
		if m.UserID == userID {
			if t, ok := f.talleres[m.TallerID]; ok {
				cp := *t
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) CountByOwner(_ context.Context, ownerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.talleres {
		if t.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListMembers(_ context.Context, tallerID string) ([]*entity.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Membership
	for _, m := range f.memberships {
		if m.TallerID == tallerID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMembership(_ context.Context, tallerID, userID string) (*entity.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.memberships[tallerID+"/"+userID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

// --- repository.AlmacenRepository ---

func (f *fakeStore) Create(_ context.Context, a *entity.Almacen) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.almacenes[a.ID] = &cp
	return nil
}

func (f *fakeStore) GetAlmacenByID(_ context.Context, id string) (*entity.Almacen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.almacenes[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) ListByTaller(_ context.Context, tallerID string) ([]*entity.Almacen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Almacen
	for _, a := range f.almacenes {
		if a.TallerID == tallerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) CountByTaller(_ context.Context, tallerID string) (int, error) {
	list, _ := f.ListByTaller(context.Background(), tallerID)
	return len(list), nil
}

// --- repository.InvitationRepository ---

func (f *fakeStore) CreateInvitation(_ context.Context, inv *entity.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *inv
	f.invitaciones[inv.ID] = &cp
	return nil
}

func (f *fakeStore) GetByCodeHash(_ context.Context, hash string) (*entity.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitaciones {
		if inv.CodeHash == hash {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) RegistrarIntento(_ context.Context, id string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.invitaciones[id]
	inv.Attempts++
	inv.LastAttemptAt = time.Now()
	if inv.Attempts > inv.MaxAttempts {
		inv.Blocked = true
	}
	return inv.Attempts, inv.Blocked, nil
}

func (f *fakeStore) Claim(_ context.Context, id, userID string, membership *entity.Membership) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.invitaciones[id]
	if inv == nil || inv.Used || inv.Blocked || !time.Now().Before(inv.ExpiresAt) {
		return false, nil
	}
	inv.Used = true
	inv.UsedBy = userID
	key := membership.TallerID + "/" + membership.UserID
	if _, ok := f.memberships[key]; !ok {
		cp := *membership
		f.memberships[key] = &cp
	}
	return true, nil
}

// almacenRepo y invitationRepo adaptan fakeStore a los puertos cuyos nombres de
// método chocan entre sí (Create, GetByID).
type almacenRepo struct{ *fakeStore }

func (r almacenRepo) GetByID(ctx context.Context, id string) (*entity.Almacen, error) {
	return r.GetAlmacenByID(ctx, id)
}

type invitationRepo struct{ *fakeStore }

func (r invitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	return r.CreateInvitation(ctx, inv)
}

func newTestUseCase() (*taller.TallerUseCase, *fakeStore) {
	store := newFakeStore()
	uc := taller.NewTallerUseCase(store, almacenRepo{store}, invitationRepo{store})
	return uc, store
}

// ──────────────────────────────────────────────────────────────────────────────
// Talleres y almacenes
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Crear un taller da al creador la membresía owner en la misma
// operación.
func TestTallerUseCase_CrearTallerConOwner(t *testing.T) {
	uc, store := newTestUseCase()
	ctx := context.Background()

	out, err := uc.CrearTaller(ctx, "user-1", "  Taller Centro  ")
	require.NoError(t, err)
	assert.Equal(t, "Taller Centro", out.Nombre)
	assert.Equal(t, "user-1", out.OwnerID)
	assert.True(t, out.Activo)

	m, err := store.GetMembership(ctx, out.ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, entity.RoleOwner, m.Role)
}

// Caso 2: Nombre vacío es rechazado.
func TestTallerUseCase_CrearTallerNombreVacio(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.CrearTaller(context.Background(), "user-1", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Caso 3: Un usuario no puede ser owner de más talleres que el límite.
func TestTallerUseCase_LimiteDeTalleresPorUsuario(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	for i := 0; i < entity.MaxTalleresPorUsuario; i++ {
		_, err := uc.CrearTaller(ctx, "user-1", "Taller "+string(rune('A'+i)))
		require.NoError(t, err)
	}
	_, err := uc.CrearTaller(ctx, "user-1", "Uno más")
	assert.ErrorIs(t, err, domain.ErrLimiteAlcanzado)
}

// Caso 4: Solo el owner puede crear almacenes, con tope por taller.
func TestTallerUseCase_CrearAlmacen(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	out, err := uc.CrearTaller(ctx, "owner", "Taller Centro")
	require.NoError(t, err)

	// Un extraño no puede crear almacenes.
	_, err = uc.CrearAlmacen(ctx, "extraño", out.ID, dto.CreateAlmacenRequest{Nombre: "Bodega"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Un taller inexistente devuelve not found.
	_, err = uc.CrearAlmacen(ctx, "owner", "no-existe", dto.CreateAlmacenRequest{Nombre: "Bodega"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for i := 0; i < entity.MaxAlmacenesPorTaller; i++ {
		_, err = uc.CrearAlmacen(ctx, "owner", out.ID, dto.CreateAlmacenRequest{Nombre: "Bodega " + string(rune('A'+i))})
		require.NoError(t, err)
	}
	_, err = uc.CrearAlmacen(ctx, "owner", out.ID, dto.CreateAlmacenRequest{Nombre: "Una más"})
	assert.ErrorIs(t, err, domain.ErrLimiteAlcanzado)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invitaciones
// ──────────────────────────────────────────────────────────────────────────────

// Caso 5: El flujo feliz: el owner genera un código y otro usuario lo canjea
// quedando como member. El código es de un solo uso.
func TestTallerUseCase_InvitacionFlujoCompleto(t *testing.T) {
	uc, store := newTestUseCase()
	ctx := context.Background()

	creado, err := uc.CrearTaller(ctx, "owner", "Taller Centro")
	require.NoError(t, err)

	inv, err := uc.CrearInvitacionCodigo(ctx, "owner", creado.ID, 0)
	require.NoError(t, err)
	assert.Len(t, inv.Code, 6)
	assert.True(t, time.Now().Before(inv.ExpiresAt))

	unido, err := uc.AceptarInvitacion(ctx, "invitado", inv.Code)
	require.NoError(t, err)
	assert.Equal(t, creado.ID, unido.ID)

	m, err := store.GetMembership(ctx, creado.ID, "invitado")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, entity.RoleMember, m.Role)

	// Segundo canje del mismo código: rechazado de forma uniforme.
	_, err = uc.AceptarInvitacion(ctx, "otro", inv.Code)
	assert.ErrorIs(t, err, domain.ErrInvitacionInvalida)
}

// Caso 6: El canje normaliza el código (minúsculas y espacios).
func TestTallerUseCase_InvitacionCodigoNormalizado(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	creado, err := uc.CrearTaller(ctx, "owner", "Taller Centro")
	require.NoError(t, err)
	inv, err := uc.CrearInvitacionCodigo(ctx, "owner", creado.ID, 7)
	require.NoError(t, err)

	_, err = uc.AceptarInvitacion(ctx, "invitado", "  "+strings.ToLower(inv.Code)+" ")
	assert.NoError(t, err)
}

// Caso 7: Solo el owner puede generar códigos; un member no.
func TestTallerUseCase_InvitacionSoloOwner(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	creado, err := uc.CrearTaller(ctx, "owner", "Taller Centro")
	require.NoError(t, err)
	inv, err := uc.CrearInvitacionCodigo(ctx, "owner", creado.ID, 7)
	require.NoError(t, err)
	_, err = uc.AceptarInvitacion(ctx, "member", inv.Code)
	require.NoError(t, err)

	_, err = uc.CrearInvitacionCodigo(ctx, "member", creado.ID, 7)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Caso 8: Un código inexistente falla igual que uno usado o expirado: no hay
// oráculo para distinguirlos.
func TestTallerUseCase_InvitacionFalloUniforme(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.AceptarInvitacion(context.Background(), "alguien", "ZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrInvitacionInvalida)
}

// Caso 9: Cada canje fallido cuenta como intento; al superar el máximo el
// código queda bloqueado incluso para quien lo tenga correcto.
func TestTallerUseCase_InvitacionBloqueoPorIntentos(t *testing.T) {
	uc, store := newTestUseCase()
	ctx := context.Background()

	creado, err := uc.CrearTaller(ctx, "owner", "Taller Centro")
	require.NoError(t, err)
	inv, err := uc.CrearInvitacionCodigo(ctx, "owner", creado.ID, 7)
	require.NoError(t, err)

	// Forzar el código al borde del bloqueo.
	for id := range store.invitaciones {
		store.invitaciones[id].Attempts = entity.MaxIntentosInvitacion
	}

	_, err = uc.AceptarInvitacion(ctx, "invitado", inv.Code)
	assert.ErrorIs(t, err, domain.ErrInvitacionInvalida)
}

// Caso 10: Una invitación expirada nunca se acepta, aunque sea válida en todo
// lo demás, y no crea membresía.
func TestTallerUseCase_InvitacionExpirada(t *testing.T) {
	uc, store := newTestUseCase()
	ctx := context.Background()

	creado, err := uc.CrearTaller(ctx, "owner", "Taller Centro")
	require.NoError(t, err)
	inv, err := uc.CrearInvitacionCodigo(ctx, "owner", creado.ID, 7)
	require.NoError(t, err)

	// Retroceder la expiración: el código sigue sin usar y sin bloquear.
	for id := range store.invitaciones {
		store.invitaciones[id].ExpiresAt = time.Now().Add(-time.Minute)
	}

	_, err = uc.AceptarInvitacion(ctx, "invitado", inv.Code)
	assert.ErrorIs(t, err, domain.ErrInvitacionInvalida)

	m, err := store.GetMembership(ctx, creado.ID, "invitado")
	require.NoError(t, err)
	assert.Nil(t, m, "una invitación expirada no debe crear membresía")
}

// Caso 11: Canjes concurrentes del mismo código: exactamente un ganador.
func TestTallerUseCase_InvitacionCanjeConcurrente(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	creado, err := uc.CrearTaller(ctx, "owner", "Taller Centro")
	require.NoError(t, err)
	inv, err := uc.CrearInvitacionCodigo(ctx, "owner", creado.ID, 7)
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		userID := "user-" + string(rune('a'+i))
		go func() {
			defer wg.Done()
			if _, err := uc.AceptarInvitacion(ctx, userID, inv.Code); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactamente un canje debe ganar")
}

// Caso 12: Listar miembros devuelve owner y members; un extraño no puede
// consultarlos.
func TestTallerUseCase_ListarMiembros(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	creado, err := uc.CrearTaller(ctx, "owner", "Taller Centro")
	require.NoError(t, err)
	inv, err := uc.CrearInvitacionCodigo(ctx, "owner", creado.ID, 7)
	require.NoError(t, err)
	_, err = uc.AceptarInvitacion(ctx, "invitado", inv.Code)
	require.NoError(t, err)

	miembros, err := uc.ListarMiembros(ctx, "invitado", creado.ID)
	require.NoError(t, err)
	require.Len(t, miembros, 2)
	roles := map[string]string{}
	for _, m := range miembros {
		roles[m.UserID] = m.Role
	}
	assert.Equal(t, entity.RoleOwner, roles["owner"])
	assert.Equal(t, entity.RoleMember, roles["invitado"])

	_, err = uc.ListarMiembros(ctx, "extraño", creado.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Caso 13: Listar talleres incluye los propios y aquellos donde se es member.
func TestTallerUseCase_ListarTalleres(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	propio, err := uc.CrearTaller(ctx, "maria", "Taller de María")
	require.NoError(t, err)
	ajeno, err := uc.CrearTaller(ctx, "pedro", "Taller de Pedro")
	require.NoError(t, err)
	inv, err := uc.CrearInvitacionCodigo(ctx, "pedro", ajeno.ID, 7)
	require.NoError(t, err)
	_, err = uc.AceptarInvitacion(ctx, "maria", inv.Code)
	require.NoError(t, err)

	list, err := uc.ListarTalleres(ctx, "maria")
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	assert.Contains(t, ids, propio.ID)
	assert.Contains(t, ids, ajeno.ID)
}
