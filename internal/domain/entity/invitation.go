package entity

import "time"

// MaxIntentosInvitacion es el número de intentos de canje fallidos tolerados
// antes de bloquear el código definitivamente.
const MaxIntentosInvitacion = 10

// Invitation es un código de invitación de un solo uso para unirse a un taller.
// Solo se persiste el hash SHA-256 del código; el valor crudo se muestra una
// única vez al creador.
type Invitation struct {
	ID            string
	TallerID      string
	FromUserID    string
	CodeHash      string
	Used          bool
	UsedBy        string // vacío hasta que alguien canjea el código
	Attempts      int
	MaxAttempts   int
	Blocked       bool
	LastAttemptAt time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Canjeable indica si la invitación todavía puede canjearse.
func (i *Invitation) Canjeable(now time.Time) bool {
	return !i.Used && !i.Blocked && now.Before(i.ExpiresAt)
}
