package oauth

import (
	"context"
	"net/http"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/application/auth"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/pkg/config"
)

var _ auth.OAuthVerifier = (*Verifier)(nil)

// Verifier valida aserciones de proveedores externos contra sus endpoints de
// introspección (Google tokeninfo, Facebook debug_token). Cualquier fallo de
// verificación se colapsa en ErrUnauthorized: el cliente no distingue entre
// token inválido, expirado o de otra aplicación.
type Verifier struct {
	google   *googleVerifier
	facebook *facebookVerifier
}

// NewVerifier construye el verificador con las credenciales configuradas.
func NewVerifier(cfg config.OAuthConfig) *Verifier {
	client := &http.Client{Timeout: 10 * time.Second}
	return &Verifier{
		google:   &googleVerifier{client: client, clientID: cfg.GoogleClientID},
		facebook: &facebookVerifier{client: client, appID: cfg.FacebookAppID, appSecret: cfg.FacebookAppSecret},
	}
}

// Verify despacha la verificación según el proveedor.
func (v *Verifier) Verify(ctx context.Context, provider, assertion string) (*auth.Identity, error) {
	if assertion == "" {
		return nil, domain.ErrUnauthorized
	}
	switch provider {
	case entity.ProviderGoogle:
		return v.google.verify(ctx, assertion)
	case entity.ProviderFacebook:
		return v.facebook.verify(ctx, assertion)
	default:
		return nil, domain.ErrInvalidInput
	}
}
