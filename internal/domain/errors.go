package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrUserNotFound          = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists    = errors.New("el email ya está registrado")
	ErrUsernameAlreadyExists = errors.New("el nombre de usuario ya está en uso")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrUnauthorized          = errors.New("no autorizado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrLimiteAlcanzado       = errors.New("límite máximo alcanzado")

	// ErrInvitacionInvalida cubre código inexistente, expirado, bloqueado o ya
	// usado. Un solo error para no revelar cuál fue el motivo.
	ErrInvitacionInvalida = errors.New("invitación inválida")
)
