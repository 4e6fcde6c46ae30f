package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/config"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleClient drives the OAuth consent round trip against Google and turns
// the callback code into a GoogleProfile for the broker.
type GoogleClient struct {
	conf *oauth2.Config
}

func NewGoogleClient(cfg config.OAuthConfig) *GoogleClient {
	return &GoogleClient{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the provider consent URL carrying the signed state token.
func (g *GoogleClient) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

// FetchProfile exchanges the callback code and reads the userinfo endpoint.
func (g *GoogleClient) FetchProfile(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.conf.Client(ctx, token).Get(userinfoURL)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return GoogleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.ID == "" {
		return GoogleProfile{}, fmt.Errorf("userinfo missing subject id")
	}

	return GoogleProfile{
		ID:          info.ID,
		Email:       info.Email,
		DisplayName: info.Name,
	}, nil
}
