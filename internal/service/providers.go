package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"authkit/internal/config"
)

// Provider bundles a provider's oauth2 config with the endpoint its profile
// is fetched from after the exchange.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

// Profile is the normalized identity returned by a provider's userinfo
// endpoint. ID is the provider_account_id of the accounts table.
type Profile struct {
	ID    string
	Email string
	Name  string
	Image string
}

func NewProviders(cfg *config.Config) map[string]*Provider {
	return map[string]*Provider{
		"github": {
			Name: "github",
			Config: &oauth2.Config{
				ClientID:     cfg.GitHub.ClientID,
				ClientSecret: cfg.GitHub.ClientSecret,
				Endpoint:     github.Endpoint,
				RedirectURL:  cfg.OAuthRedirectBase + "/api/auth/oauth/github/callback",
				Scopes:       []string{"read:user", "user:email"},
			},
			UserInfoURL: "https://api.github.com/user",
		},
		"google": {
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  cfg.OAuthRedirectBase + "/api/auth/oauth/google/callback",
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}
}

// FetchProfile calls the provider's userinfo endpoint with the exchanged
// token and normalizes the payload.
func (p *Provider) FetchProfile(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	client := p.Config.Client(ctx, tok)

	resp, err := client.Get(p.UserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	switch p.Name {
	case "github":
		var payload struct {
			ID        int64  `json:"id"`
			Email     string `json:"email"`
			Name      string `json:"name"`
			Login     string `json:"login"`
			AvatarURL string `json:"avatar_url"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		name := payload.Name
		if name == "" {
			name = payload.Login
		}
		return &Profile{
			ID:    strconv.FormatInt(payload.ID, 10),
			Email: payload.Email,
			Name:  name,
			Image: payload.AvatarURL,
		}, nil
	case "google":
		var payload struct {
			ID      string `json:"id"`
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		return &Profile{
			ID:    payload.ID,
			Email: payload.Email,
			Name:  payload.Name,
			Image: payload.Picture,
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p.Name)
	}
}
