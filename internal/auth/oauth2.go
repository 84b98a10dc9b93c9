package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// OAuth2Config holds configuration for the Client Credentials grant.
type OAuth2Config struct {
	ClientID  string   `mapstructure:"client_id"`
	ClientSec string   `mapstructure:"client_secret"`
	TokenURL  string   `mapstructure:"token_url"`
	Scopes    []string `mapstructure:"scopes"`
}

type oauth2Method struct {
	cfg OAuth2Config
}

func (m oauth2Method) Acquire(ctx context.Context) (string, error) {
	clientID := strings.TrimSpace(m.cfg.ClientID)
	clientSecret := strings.TrimSpace(m.cfg.ClientSec)
	tokenURL := strings.TrimSpace(m.cfg.TokenURL)
	if tokenURL == "" {
		return "", errors.New("oauth2: token_url is required")
	}
	if clientID == "" || clientSecret == "" {
		return "", errors.New("oauth2: client_id and client_secret are required")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       m.cfg.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", err
	}
	typ := tok.TokenType
	if typ == "" {
		typ = "Bearer"
	}
	return typ + " " + tok.AccessToken, nil
}

func newOAuth2(spec map[string]interface{}) (Method, error) {
	var cfg OAuth2Config
	if err := mapstructure.Decode(spec, &cfg); err != nil {
		return nil, err
	}
	return oauth2Method{cfg: cfg}, nil
}

func init() {
	Register("oauth2", newOAuth2)
}
