package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Repuestos-api/internal/application/auth"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// googleVerifier valida un id_token de Google contra el endpoint tokeninfo.
// Google ya verifica la firma; aquí se comprueban audiencia, emisor y
// expiración.
type googleVerifier struct {
	client   *http.Client
	clientID string
}

type googleTokenInfo struct {
	Aud        string `json:"aud"`
	Sub        string `json:"sub"`
	Iss        string `json:"iss"`
	Email      string `json:"email"`
	Exp        string `json:"exp"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

func (g *googleVerifier) verify(ctx context.Context, idToken string) (*auth.Identity, error) {
	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("google tokeninfo rechazó el id_token")
		return nil, domain.ErrUnauthorized
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo: %w", err)
	}

	if g.clientID != "" && info.Aud != g.clientID {
		log.Warn().Str("aud", info.Aud).Msg("id_token de Google con audiencia ajena")
		return nil, domain.ErrUnauthorized
	}
	if info.Iss != "accounts.google.com" && info.Iss != "https://accounts.google.com" {
		return nil, domain.ErrUnauthorized
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err != nil || time.Now().Unix() >= exp {
		return nil, domain.ErrUnauthorized
	}
	if info.Sub == "" {
		return nil, domain.ErrUnauthorized
	}

	return &auth.Identity{
		Provider: entity.ProviderGoogle,
		Subject:  info.Sub,
		Email:    info.Email,
		Nombre:   info.GivenName,
		Apellido: info.FamilyName,
	}, nil
}
