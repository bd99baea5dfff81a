package auth

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// Identity es la identidad verificada que devuelve un proveedor OAuth: el
// subject es estable por proveedor y es la clave de vinculación con User.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Nombre   string
	Apellido string
}

// OAuthVerifier verifica una aserción externa (id_token de Google, access
// token de Facebook) y devuelve la identidad del usuario en el proveedor.
type OAuthVerifier interface {
	Verify(ctx context.Context, provider, assertion string) (*Identity, error)
}

// TallerJoiner permite canjear un código de invitación durante registro o
// login OAuth sin acoplar auth al paquete taller.
type TallerJoiner interface {
	AceptarInvitacion(ctx context.Context, userID, rawCode string) (*entity.Taller, error)
}

// CartMerger fusiona un carrito anónimo con el del usuario en el momento del
// login (continuidad de carrito).
type CartMerger interface {
	MergeOnLogin(ctx context.Context, carritoID, userID string) error
}
