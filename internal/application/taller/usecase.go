package taller

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// Longitud y alfabeto de los códigos de invitación. Sin 0/O/1/I para que el
// código se pueda dictar sin ambigüedad.
const (
	codeLen     = 6
	codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// DefaultDiasValidez vigencia por defecto de un código de invitación.
const DefaultDiasValidez = 7

// TallerUseCase autoridad de membresías: talleres, almacenes e invitaciones.
type TallerUseCase struct {
	talleres     repository.TallerRepository
	almacenes    repository.AlmacenRepository
	invitaciones repository.InvitationRepository
}

// NewTallerUseCase construye el caso de uso de talleres.
func NewTallerUseCase(talleres repository.TallerRepository, almacenes repository.AlmacenRepository, invitaciones repository.InvitationRepository) *TallerUseCase {
	return &TallerUseCase{talleres: talleres, almacenes: almacenes, invitaciones: invitaciones}
}

// CrearTaller crea un taller y la membresía owner del creador en una sola
// transacción. Máximo 3 talleres por usuario.
func (uc *TallerUseCase) CrearTaller(ctx context.Context, ownerID, nombre string) (*dto.TallerResponse, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, domain.ErrInvalidInput
	}
	count, err := uc.talleres.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("contar talleres: %w", err)
	}
	if count >= entity.MaxTalleresPorUsuario {
		return nil, domain.ErrLimiteAlcanzado
	}
	now := time.Now()
	t := &entity.Taller{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Nombre:        nombre,
		Activo:        true,
		FechaCreacion: now,
	}
	owner := &entity.Membership{
		TallerID: t.ID,
		UserID:   ownerID,
		Role:     entity.RoleOwner,
		JoinedAt: now,
	}
	if err := uc.talleres.CreateWithOwner(ctx, t, owner); err != nil {
		return nil, fmt.Errorf("crear taller: %w", err)
	}
	return toTallerResponse(t), nil
}

// ListarTalleres devuelve los talleres donde el usuario tiene cualquier
// membresía, ordenados por fecha de creación.
func (uc *TallerUseCase) ListarTalleres(ctx context.Context, userID string) ([]dto.TallerResponse, error) {
	list, err := uc.talleres.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listar talleres: %w", err)
	}
	out := make([]dto.TallerResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTallerResponse(t))
	}
	return out, nil
}

// ListarMiembros devuelve las membresías de un taller. Cualquier miembro puede
// consultarlas.
func (uc *TallerUseCase) ListarMiembros(ctx context.Context, callerID, tallerID string) ([]dto.MembershipResponse, error) {
	if err := uc.requireMember(ctx, callerID, tallerID); err != nil {
		return nil, err
	}
	list, err := uc.talleres.ListMembers(ctx, tallerID)
	if err != nil {
		return nil, fmt.Errorf("listar miembros: %w", err)
	}
	out := make([]dto.MembershipResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MembershipResponse{
			TallerID: m.TallerID,
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return out, nil
}

// CrearAlmacen crea un almacén dentro de un taller. Solo el owner puede
// crearlo; máximo 5 almacenes por taller.
func (uc *TallerUseCase) CrearAlmacen(ctx context.Context, callerID, tallerID string, in dto.CreateAlmacenRequest) (*dto.AlmacenResponse, error) {
	if strings.TrimSpace(in.Nombre) == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.requireOwner(ctx, callerID, tallerID); err != nil {
		return nil, err
	}
	count, err := uc.almacenes.CountByTaller(ctx, tallerID)
	if err != nil {
		return nil, fmt.Errorf("contar almacenes: %w", err)
	}
	if count >= entity.MaxAlmacenesPorTaller {
		return nil, domain.ErrLimiteAlcanzado
	}
	a := &entity.Almacen{
		ID:            uuid.New().String(),
		TallerID:      tallerID,
		Nombre:        strings.TrimSpace(in.Nombre),
		Ubicacion:     strings.TrimSpace(in.Ubicacion),
		FechaCreacion: time.Now(),
	}
	if err := uc.almacenes.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("crear almacén: %w", err)
	}
	return &dto.AlmacenResponse{
		ID:            a.ID,
		TallerID:      a.TallerID,
		Nombre:        a.Nombre,
		Ubicacion:     a.Ubicacion,
		FechaCreacion: a.FechaCreacion,
	}, nil
}

// ListarAlmacenes lista los almacenes de un taller. Cualquier miembro puede
// consultarlos.
func (uc *TallerUseCase) ListarAlmacenes(ctx context.Context, callerID, tallerID string) ([]dto.AlmacenResponse, error) {
	if err := uc.requireMember(ctx, callerID, tallerID); err != nil {
		return nil, err
	}
	list, err := uc.almacenes.ListByTaller(ctx, tallerID)
	if err != nil {
		return nil, fmt.Errorf("listar almacenes: %w", err)
	}
	out := make([]dto.AlmacenResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AlmacenResponse{
			ID:            a.ID,
			TallerID:      a.TallerID,
			Nombre:        a.Nombre,
			Ubicacion:     a.Ubicacion,
			FechaCreacion: a.FechaCreacion,
		})
	}
	return out, nil
}

// CrearInvitacionCodigo genera un código de invitación de un solo uso para el
// taller. Solo el owner puede invitar. Se persiste únicamente el hash del
// código; el valor crudo se devuelve aquí y nunca vuelve a ser recuperable.
func (uc *TallerUseCase) CrearInvitacionCodigo(ctx context.Context, callerID, tallerID string, diasValidez int) (*dto.InvitacionResponse, error) {
	if err := uc.requireOwner(ctx, callerID, tallerID); err != nil {
		return nil, err
	}
	if diasValidez <= 0 {
		diasValidez = DefaultDiasValidez
	}
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generar código: %w", err)
	}
	inv := &entity.Invitation{
		ID:          uuid.New().String(),
		TallerID:    tallerID,
		FromUserID:  callerID,
		CodeHash:    hashCode(code),
		MaxAttempts: entity.MaxIntentosInvitacion,
		ExpiresAt:   time.Now().Add(time.Duration(diasValidez) * 24 * time.Hour),
		CreatedAt:   time.Now(),
	}
	if err := uc.invitaciones.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("persistir invitación: %w", err)
	}
	return &dto.InvitacionResponse{Code: code, ExpiresAt: inv.ExpiresAt}, nil
}

// AceptarInvitacion canjea un código. El fallo es uniforme
// (ErrInvitacionInvalida) para código inexistente, bloqueado, expirado o ya
// usado: no hay oráculo para adivinar códigos. El canje used=false→true más la
// creación de la membresía son atómicos en el store: bajo intentos
// concurrentes exactamente uno gana.
func (uc *TallerUseCase) AceptarInvitacion(ctx context.Context, callerID, rawCode string) (*entity.Taller, error) {
	rawCode = strings.ToUpper(strings.TrimSpace(rawCode))
	inv, err := uc.invitaciones.GetByCodeHash(ctx, hashCode(rawCode))
	if err != nil {
		return nil, fmt.Errorf("buscar invitación: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrInvitacionInvalida
	}
	attempts, blocked, err := uc.invitaciones.RegistrarIntento(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("registrar intento: %w", err)
	}
	if blocked {
		log.Warn().Str("invitation_id", inv.ID).Int("attempts", attempts).
			Msg("invitación bloqueada por demasiados intentos")
		return nil, domain.ErrInvitacionInvalida
	}
	if !inv.Canjeable(time.Now()) {
		return nil, domain.ErrInvitacionInvalida
	}
	membership := &entity.Membership{
		TallerID: inv.TallerID,
		UserID:   callerID,
		Role:     entity.RoleMember,
		JoinedAt: time.Now(),
	}
	ok, err := uc.invitaciones.Claim(ctx, inv.ID, callerID, membership)
	if err != nil {
		return nil, fmt.Errorf("canjear invitación: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvitacionInvalida
	}
	taller, err := uc.talleres.GetByID(ctx, inv.TallerID)
	if err != nil {
		return nil, fmt.Errorf("buscar taller: %w", err)
	}
	if taller == nil {
		return nil, domain.ErrNotFound
	}
	return taller, nil
}

// requireOwner valida que el llamador tenga rol owner en el taller.
func (uc *TallerUseCase) requireOwner(ctx context.Context, callerID, tallerID string) error {
	t, err := uc.talleres.GetByID(ctx, tallerID)
	if err != nil {
		return fmt.Errorf("buscar taller: %w", err)
	}
	if t == nil {
		return domain.ErrNotFound
	}
	m, err := uc.talleres.GetMembership(ctx, tallerID, callerID)
	if err != nil {
		return fmt.Errorf("buscar membresía: %w", err)
	}
	if m == nil || m.Role != entity.RoleOwner {
		return domain.ErrForbidden
	}
	return nil
}

// requireMember valida que el llamador tenga cualquier membresía en el taller.
func (uc *TallerUseCase) requireMember(ctx context.Context, callerID, tallerID string) error {
	t, err := uc.talleres.GetByID(ctx, tallerID)
	if err != nil {
		return fmt.Errorf("buscar taller: %w", err)
	}
	if t == nil {
		return domain.ErrNotFound
	}
	m, err := uc.talleres.GetMembership(ctx, tallerID, callerID)
	if err != nil {
		return fmt.Errorf("buscar membresía: %w", err)
	}
	if m == nil {
		return domain.ErrForbidden
	}
	return nil
}

// generateCode produce un código aleatorio corto desde crypto/rand.
func generateCode() (string, error) {
	buf := make([]byte, codeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLen)
	for i, b := range buf {
		out[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(out), nil
}

// hashCode calcula el hash SHA-256 (base64) de un código crudo.
func hashCode(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func toTallerResponse(t *entity.Taller) *dto.TallerResponse {
	return &dto.TallerResponse{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		Nombre:        t.Nombre,
		Activo:        t.Activo,
		FechaCreacion: t.FechaCreacion,
	}
}
