package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/taller"
	"github.com/jhoicas/Repuestos-api/internal/domain"
)

// TallerHandler maneja talleres, almacenes e invitaciones.
type TallerHandler struct {
	uc *taller.TallerUseCase
}

// NewTallerHandler construye el handler de talleres.
func NewTallerHandler(uc *taller.TallerUseCase) *TallerHandler {
	return &TallerHandler{uc: uc}
}

// Create godoc
// @Summary      Crear taller
// @Tags         talleres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateTallerRequest  true  "nombre"
// @Success      201   {object}  dto.TallerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/talleres [post]
func (h *TallerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTallerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CrearTaller(c.Context(), GetUserID(c), in.Nombre)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "nombre es requerido"})
		}
		if errors.Is(err, domain.ErrLimiteAlcanzado) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LIMIT_REACHED", Message: "límite de talleres por usuario alcanzado"})
		}
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar talleres del usuario
// @Tags         talleres
// @Produce      json
// @Security     BearerAuth
// @Success      200   {array}  dto.TallerResponse
// @Router       /api/talleres [get]
func (h *TallerHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListarTalleres(c.Context(), GetUserID(c))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(out)
}

// ListMembers godoc
// @Summary      Listar miembros de un taller
// @Tags         talleres
// @Produce      json
// @Security     BearerAuth
// @Param        tallerId  path  string  true  "id del taller"
// @Success      200   {array}  dto.MembershipResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/talleres/{tallerId}/miembros [get]
func (h *TallerHandler) ListMembers(c *fiber.Ctx) error {
	out, err := h.uc.ListarMiembros(c.Context(), GetUserID(c), c.Params("tallerId"))
	if err != nil {
		return h.tallerError(c, err)
	}
	return c.JSON(out)
}

// CreateAlmacen godoc
// @Summary      Crear almacén en un taller
// @Tags         talleres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tallerId  path  string  true  "id del taller"
// @Param        body      body  dto.CreateAlmacenRequest  true  "nombre, ubicacion"
// @Success      201   {object}  dto.AlmacenResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/talleres/{tallerId}/almacenes [post]
func (h *TallerHandler) CreateAlmacen(c *fiber.Ctx) error {
	var in dto.CreateAlmacenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CrearAlmacen(c.Context(), GetUserID(c), c.Params("tallerId"), in)
	if err != nil {
		return h.tallerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListAlmacenes godoc
// @Summary      Listar almacenes de un taller
// @Tags         talleres
// @Produce      json
// @Security     BearerAuth
// @Param        tallerId  path  string  true  "id del taller"
// @Success      200   {array}  dto.AlmacenResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/talleres/{tallerId}/almacenes [get]
func (h *TallerHandler) ListAlmacenes(c *fiber.Ctx) error {
	out, err := h.uc.ListarAlmacenes(c.Context(), GetUserID(c), c.Params("tallerId"))
	if err != nil {
		return h.tallerError(c, err)
	}
	return c.JSON(out)
}

// CreateInvitacion godoc
// @Summary      Generar código de invitación
// @Tags         talleres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tallerId  path  string  true  "id del taller"
// @Param        body      body  dto.CreateInvitacionRequest  false  "diasValidez"
// @Success      201   {object}  dto.InvitacionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/talleres/{tallerId}/invitaciones/codigo [post]
func (h *TallerHandler) CreateInvitacion(c *fiber.Ctx) error {
	var in dto.CreateInvitacionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.CrearInvitacionCodigo(c.Context(), GetUserID(c), c.Params("tallerId"), in.DiasValidez)
	if err != nil {
		return h.tallerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AcceptInvitacion godoc
// @Summary      Canjear código de invitación
// @Tags         talleres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AcceptInvitacionRequest  true  "code"
// @Success      200   {object}  dto.TallerResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/talleres/invitaciones/accept [post]
func (h *TallerHandler) AcceptInvitacion(c *fiber.Ctx) error {
	var in dto.AcceptInvitacionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code es requerido"})
	}
	t, err := h.uc.AceptarInvitacion(c.Context(), GetUserID(c), in.Code)
	if err != nil {
		// Respuesta uniforme: ni el motivo del rechazo ni la existencia del
		// código se revelan al llamador.
		if errors.Is(err, domain.ErrInvitacionInvalida) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_CODE", Message: "código inválido o expirado"})
		}
		return internalError(c, err)
	}
	return c.JSON(dto.TallerResponse{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		Nombre:        t.Nombre,
		Activo:        t.Activo,
		FechaCreacion: t.FechaCreacion,
	})
}

func (h *TallerHandler) tallerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el taller no existe"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "requiere rol owner en el taller"})
	case errors.Is(err, domain.ErrLimiteAlcanzado):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LIMIT_REACHED", Message: "límite de almacenes por taller alcanzado"})
	default:
		return internalError(c, err)
	}
}
