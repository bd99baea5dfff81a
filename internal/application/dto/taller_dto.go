package dto

import "time"

// CreateTallerRequest entrada para crear un taller.
type CreateTallerRequest struct {
	Nombre string `json:"nombre" validate:"required,min=1,max=200"`
}

// TallerResponse salida de un taller.
type TallerResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Nombre        string    `json:"nombre"`
	Activo        bool      `json:"activo"`
	FechaCreacion time.Time `json:"fechaCreacion"`
}

// CreateAlmacenRequest entrada para crear un almacén dentro de un taller.
type CreateAlmacenRequest struct {
	Nombre    string `json:"nombre" validate:"required,min=1,max=200"`
	Ubicacion string `json:"ubicacion" validate:"omitempty,max=300"`
}

// AlmacenResponse salida de un almacén.
type AlmacenResponse struct {
	ID            string    `json:"id"`
	TallerID      string    `json:"tallerId"`
	Nombre        string    `json:"nombre"`
	Ubicacion     string    `json:"ubicacion,omitempty"`
	FechaCreacion time.Time `json:"fechaCreacion"`
}

// CreateInvitacionRequest entrada para generar un código de invitación.
type CreateInvitacionRequest struct {
	DiasValidez int `json:"diasValidez" validate:"omitempty,min=1,max=90"`
}

// InvitacionResponse salida de la creación de un código: el código crudo se
// devuelve aquí una única vez y no vuelve a ser recuperable.
type InvitacionResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AcceptInvitacionRequest entrada para canjear un código de invitación.
type AcceptInvitacionRequest struct {
	Code string `json:"code" validate:"required"`
}

// MembershipResponse salida de una membresía.
type MembershipResponse struct {
	TallerID string    `json:"tallerId"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}
