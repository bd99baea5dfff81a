package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/carrito"
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain"
)

// CarritoHandler maneja carritos. La creación y la edición por id son públicas:
// un carrito anónimo existe antes de que haya sesión. El listado por usuario
// requiere Bearer Token.
type CarritoHandler struct {
	uc *carrito.CarritoUseCase
}

// NewCarritoHandler construye el handler de carritos.
func NewCarritoHandler(uc *carrito.CarritoUseCase) *CarritoHandler {
	return &CarritoHandler{uc: uc}
}

// Create godoc
// @Summary      Crear carrito (anónimo si no trae usuario)
// @Tags         carritos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCarritoRequest  false  "items iniciales"
// @Success      201   {object}  dto.CarritoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/carritos [post]
func (h *CarritoHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCarritoRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.Crear(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items inválidos"})
		}
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener carrito por id
// @Tags         carritos
// @Produce      json
// @Param        id  path  string  true  "id del carrito"
// @Success      200   {object}  dto.CarritoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/carritos/{id} [get]
func (h *CarritoHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return h.carritoError(c, err)
	}
	return c.JSON(out)
}

// ListMine godoc
// @Summary      Listar carritos del usuario autenticado
// @Tags         carritos
// @Produce      json
// @Security     BearerAuth
// @Success      200   {array}  dto.CarritoResponse
// @Router       /api/carritos [get]
func (h *CarritoHandler) ListMine(c *fiber.Ctx) error {
	out, err := h.uc.ListarPorUsuario(c.Context(), GetUserID(c))
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar producto al carrito
// @Tags         carritos
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id del carrito"
// @Param        body  body  dto.CarritoItemRequest  true  "productoId, cantidad"
// @Success      200   {object}  dto.CarritoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/carritos/{id}/items [post]
func (h *CarritoHandler) AddItem(c *fiber.Ctx) error {
	var in dto.CarritoItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.AddItem(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.carritoError(c, err)
	}
	return c.JSON(out)
}

// RemoveItem godoc
// @Summary      Quitar producto del carrito
// @Tags         carritos
// @Produce      json
// @Param        id          path  string  true  "id del carrito"
// @Param        productoId  path  string  true  "id del producto"
// @Success      200   {object}  dto.CarritoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/carritos/{id}/items/{productoId} [delete]
func (h *CarritoHandler) RemoveItem(c *fiber.Ctx) error {
	out, err := h.uc.RemoveItem(c.Context(), c.Params("id"), c.Params("productoId"))
	if err != nil {
		return h.carritoError(c, err)
	}
	return c.JSON(out)
}

// Clear godoc
// @Summary      Vaciar carrito
// @Tags         carritos
// @Produce      json
// @Param        id  path  string  true  "id del carrito"
// @Success      200   {object}  dto.CarritoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/carritos/{id}/items [delete]
func (h *CarritoHandler) Clear(c *fiber.Ctx) error {
	out, err := h.uc.Clear(c.Context(), c.Params("id"))
	if err != nil {
		return h.carritoError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar carrito
// @Tags         carritos
// @Produce      json
// @Param        id  path  string  true  "id del carrito"
// @Success      200   {object}  dto.MessageResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/carritos/{id} [delete]
func (h *CarritoHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Eliminar(c.Context(), c.Params("id")); err != nil {
		return h.carritoError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "carrito eliminado"})
}

func (h *CarritoHandler) carritoError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el carrito no existe"})
	default:
		return internalError(c, err)
	}
}
