package entity

import "time"

// Proveedores OAuth soportados.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// User representa una identidad del sistema. Username y Email son únicos globales.
// PasswordHash queda vacío para cuentas creadas solo vía OAuth.
type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string // bcrypt hash, nunca plano en dominio después de persistir
	Nombre        string
	Apellido      string
	Provider      string // "google" | "facebook" | "" (cuenta local)
	ProviderID    string // subject estable del proveedor, único por (provider, provider_id)
	Activo        bool
	FechaCreacion time.Time
}
