package entity

import "time"

// RefreshToken es un token de sesión persistido. Solo se guarda el hash SHA-256
// del valor crudo; el valor crudo se entrega una única vez al cliente.
//
// FamilyID agrupa el linaje completo de tokens producidos por rotaciones
// sucesivas a partir de un login. ReplacedBy apunta al sucesor inmediato tras
// una rotación (un solo salto, nunca cadenas hacia atrás).
type RefreshToken struct {
	ID         string
	UserID     string
	FamilyID   string
	TokenHash  string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy string // id del sucesor; vacío si nunca fue rotado
	DeviceInfo string
}

// Expirado indica si el token ya pasó su fecha de expiración.
func (t *RefreshToken) Expirado(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Activo indica si el token puede usarse para rotar (no revocado ni expirado).
func (t *RefreshToken) Activo(now time.Time) bool {
	return !t.Revoked && !t.Expirado(now)
}
