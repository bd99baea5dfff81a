package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Repuestos-api/internal/application/auth"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

const facebookGraphURL = "https://graph.facebook.com"

// facebookVerifier valida un access token de Facebook en dos pasos: primero
// debug_token confirma que el token es válido y pertenece a esta aplicación,
// luego /me obtiene email y nombre.
type facebookVerifier struct {
	client    *http.Client
	appID     string
	appSecret string
}

type facebookDebugToken struct {
	Data struct {
		AppID   string `json:"app_id"`
		IsValid bool   `json:"is_valid"`
		UserID  string `json:"user_id"`
	} `json:"data"`
}

type facebookProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (f *facebookVerifier) verify(ctx context.Context, accessToken string) (*auth.Identity, error) {
	debug, err := f.debugToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if !debug.Data.IsValid || debug.Data.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if f.appID != "" && debug.Data.AppID != f.appID {
		log.Warn().Str("app_id", debug.Data.AppID).Msg("access token de Facebook de otra aplicación")
		return nil, domain.ErrUnauthorized
	}

	profile, err := f.fetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if profile.ID != debug.Data.UserID {
		return nil, domain.ErrUnauthorized
	}

	return &auth.Identity{
		Provider: entity.ProviderFacebook,
		Subject:  profile.ID,
		Email:    profile.Email,
		Nombre:   profile.FirstName,
		Apellido: profile.LastName,
	}, nil
}

func (f *facebookVerifier) debugToken(ctx context.Context, accessToken string) (*facebookDebugToken, error) {
	q := url.Values{}
	q.Set("input_token", accessToken)
	q.Set("access_token", f.appID+"|"+f.appSecret)
	endpoint := facebookGraphURL + "/debug_token?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build debug_token request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook debug_token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("facebook debug_token rechazó el token")
		return nil, domain.ErrUnauthorized
	}
	var debug facebookDebugToken
	if err := json.NewDecoder(resp.Body).Decode(&debug); err != nil {
		return nil, fmt.Errorf("decode debug_token: %w", err)
	}
	return &debug, nil
}

func (f *facebookVerifier) fetchProfile(ctx context.Context, accessToken string) (*facebookProfile, error) {
	q := url.Values{}
	q.Set("fields", "id,email,first_name,last_name")
	q.Set("access_token", accessToken)
	endpoint := facebookGraphURL + "/me?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrUnauthorized
	}
	var profile facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &profile, nil
}
