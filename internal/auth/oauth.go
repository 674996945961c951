package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// DiscordUser is the subset of https://discord.com/api/users/@me that the
// service cares about.
type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// DiscordOAuth wraps the OAuth2 config used to exchange an authorization
// code for a Discord identity, matching
// original_source/rickchurch/utils.py:get_oauth_user.
type DiscordOAuth struct {
	config *oauth2.Config
	client *http.Client
}

// NewDiscordOAuth builds the exchange client. redirectURL must equal the
// one registered with Discord, conventionally "<base_url>/oauth_callback".
func NewDiscordOAuth(clientID, clientSecret, redirectURL string) *DiscordOAuth {
	return &DiscordOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
		client: http.DefaultClient,
	}
}

// AuthCodeURL builds the URL the client should be redirected to in order to
// begin the Discord consent flow.
func (d *DiscordOAuth) AuthCodeURL(state string) string {
	return d.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the Discord user it belongs to.
func (d *DiscordOAuth) Exchange(ctx context.Context, code string) (DiscordUser, error) {
	token, err := d.config.Exchange(ctx, code)
	if err != nil {
		return DiscordUser{}, fmt.Errorf("auth: exchange discord code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://discord.com/api/users/@me", nil)
	if err != nil {
		return DiscordUser{}, fmt.Errorf("auth: build discord user request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return DiscordUser{}, fmt.Errorf("auth: fetch discord user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DiscordUser{}, fmt.Errorf("auth: discord user lookup returned status %d", resp.StatusCode)
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return DiscordUser{}, fmt.Errorf("auth: decode discord user: %w", err)
	}
	return user, nil
}
