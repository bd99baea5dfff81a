package dto

import "time"

// CarritoItemRequest línea de carrito en peticiones.
type CarritoItemRequest struct {
	ProductoID string `json:"productoId" validate:"required"`
	Cantidad   int    `json:"cantidad" validate:"min=0"`
}

// CreateCarritoRequest entrada para crear un carrito. UsuarioID vacío crea un
// carrito anónimo (sesión sin login).
type CreateCarritoRequest struct {
	UsuarioID    string               `json:"usuarioId" validate:"omitempty"`
	Items        []CarritoItemRequest `json:"items" validate:"omitempty,dive"`
	RealizadoPor string               `json:"realizadoPor" validate:"omitempty"`
}

// CarritoItemResponse línea de carrito en respuestas.
type CarritoItemResponse struct {
	ProductoID string `json:"productoId"`
	Cantidad   int    `json:"cantidad"`
}

// CarritoResponse salida de un carrito.
type CarritoResponse struct {
	ID           string                `json:"id"`
	UsuarioID    string                `json:"usuarioId,omitempty"`
	Items        []CarritoItemResponse `json:"items"`
	RealizadoPor string                `json:"realizadoPor,omitempty"`
	CreadoEn     time.Time             `json:"creadoEn"`
}
