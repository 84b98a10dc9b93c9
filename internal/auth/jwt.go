package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig signs a short-lived HS256 token locally; useful against targets
// that accept a shared-secret JWT without a token endpoint.
type JWTConfig struct {
	Secret  string                 `mapstructure:"secret"`
	Subject string                 `mapstructure:"subject"`
	Issuer  string                 `mapstructure:"issuer"`
	TTL     string                 `mapstructure:"ttl"`
	Claims  map[string]interface{} `mapstructure:"claims"`
}

type jwtMethod struct {
	cfg JWTConfig
}

func (m jwtMethod) Acquire(_ context.Context) (string, error) {
	secret := strings.TrimSpace(m.cfg.Secret)
	if secret == "" {
		return "", errors.New("jwt: secret is required")
	}

	ttl := time.Hour
	if s := strings.TrimSpace(m.cfg.TTL); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return "", errors.New("jwt: invalid ttl: " + s)
		}
		ttl = d
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if m.cfg.Subject != "" {
		claims["sub"] = m.cfg.Subject
	}
	if m.cfg.Issuer != "" {
		claims["iss"] = m.cfg.Issuer
	}
	for k, v := range m.cfg.Claims {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return "Bearer " + signed, nil
}

func newJWT(spec map[string]interface{}) (Method, error) {
	var cfg JWTConfig
	if err := mapstructure.Decode(spec, &cfg); err != nil {
		return nil, err
	}
	return jwtMethod{cfg: cfg}, nil
}

func init() {
	Register("jwt", newJWT)
}
