package dto

import "time"

// RegisterRequest entrada para registro (password en texto, se hashea en use case).
// InviteCode opcional une al usuario a un taller en el mismo registro.
type RegisterRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Nombre     string `json:"nombre" validate:"omitempty,max=200"`
	Apellido   string `json:"apellido" validate:"omitempty,max=200"`
	InviteCode string `json:"inviteCode" validate:"omitempty"`
	Device     string `json:"device" validate:"omitempty,max=200"`
}

// LoginRequest entrada para login. El identificador acepta username o email.
// CarritoID opcional: carrito anónimo a fusionar con el del usuario al entrar.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
	Device          string `json:"device" validate:"omitempty,max=200"`
	CarritoID       string `json:"carritoId" validate:"omitempty"`
}

// OAuthLoginRequest entrada para login con proveedor externo. El proveedor va
// en la ruta; Token es la aserción emitida por el proveedor (id_token de
// Google o access token de Facebook).
type OAuthLoginRequest struct {
	Token      string `json:"token" validate:"required"`
	InviteCode string `json:"inviteCode" validate:"omitempty"`
	Device     string `json:"device" validate:"omitempty,max=200"`
	CarritoID  string `json:"carritoId" validate:"omitempty"`
}

// RefreshRequest cuerpo para refresh y logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UserResponse salida de un usuario (sin hash de password ni tokens).
type UserResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Nombre        string    `json:"nombre,omitempty"`
	Apellido      string    `json:"apellido,omitempty"`
	Provider      string    `json:"provider,omitempty"`
	Activo        bool      `json:"activo"`
	FechaCreacion time.Time `json:"fechaCreacion"`
}

// SessionResponse salida de login/registro/oauth: par de tokens más el usuario.
// Joined se incluye solo cuando un inviteCode válido unió al usuario a un taller.
type SessionResponse struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         UserResponse    `json:"user"`
	Joined       *TallerResponse `json:"joined,omitempty"`
}

// TokenPairResponse salida de refresh: solo el nuevo par de tokens.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
