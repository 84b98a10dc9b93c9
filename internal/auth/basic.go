package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// BasicConfig holds configuration for Basic authentication.
type BasicConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type basicMethod struct {
	cfg BasicConfig
}

func (m basicMethod) Acquire(_ context.Context) (string, error) {
	u := strings.TrimSpace(m.cfg.Username)
	p := strings.TrimSpace(m.cfg.Password)
	if u == "" || p == "" {
		return "", errors.New("basic: username and password are required")
	}
	cred := base64.StdEncoding.EncodeToString([]byte(u + ":" + p))
	return "Basic " + cred, nil
}

func newBasic(spec map[string]interface{}) (Method, error) {
	var cfg BasicConfig
	if err := mapstructure.Decode(spec, &cfg); err != nil {
		return nil, err
	}
	return basicMethod{cfg: cfg}, nil
}

func init() {
	Register("basic", newBasic)
}
