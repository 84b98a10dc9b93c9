package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loadsheet/loadsheet/internal/auth"
	"github.com/loadsheet/loadsheet/internal/common"
	"github.com/loadsheet/loadsheet/internal/mock"
	"github.com/loadsheet/loadsheet/internal/store"
	"github.com/loadsheet/loadsheet/internal/vars"
	"github.com/loadsheet/loadsheet/internal/wait"
	"gopkg.in/yaml.v3"
)

// AuthConfig configures one credential provider. The acquired value is
// exposed to scripts as the variable named Name.
type AuthConfig struct {
	Type   string                 `mapstructure:"type" yaml:"type"`
	Name   string                 `mapstructure:"name" yaml:"name"`
	Config map[string]interface{} `mapstructure:"config" yaml:"config"`
}

// EnvConfig is one static variable, either inline or read from the process
// environment.
type EnvConfig struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Value        string `mapstructure:"value" yaml:"value"`
	ValueFromEnv string `mapstructure:"valueFromEnv" yaml:"valueFromEnv"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // error, warn, info, debug
	Format string `mapstructure:"format" yaml:"format"` // text, json, color
}

// ClientConfig holds TLS options for the smoke/wait/auth HTTP client.
type ClientConfig struct {
	Insecure      bool   `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string `mapstructure:"max_tls_version" yaml:"max_tls_version"`
}

// StoreConfig wraps the history store settings with an off switch.
type StoreConfig struct {
	Disabled bool         `mapstructure:"disabled" yaml:"disabled"`
	store.Config `mapstructure:",squash" yaml:",inline"`
}

// ConfigDoc is the top-level config.yaml document.
type ConfigDoc struct {
	// Source is the test-case data file (.csv or .xlsx).
	Source string `mapstructure:"source" yaml:"source"`
	// Engine is the load-engine binary; defaults to "k6" on PATH.
	Engine string `mapstructure:"engine" yaml:"engine"`
	// WorkDir holds temporary scripts; defaults to the OS temp dir.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir"`
	// Template optionally overrides the built-in script template.
	Template      string `mapstructure:"template" yaml:"template"`
	SummaryExport bool   `mapstructure:"summary_export" yaml:"summary_export"`
	SummaryDir    string `mapstructure:"summary_dir" yaml:"summary_dir"`
	FailFast      bool   `mapstructure:"fail_fast" yaml:"fail_fast"`
	Smoke         bool   `mapstructure:"smoke" yaml:"smoke"`

	Env     []EnvConfig   `mapstructure:"env" yaml:"env"`
	Auth    []AuthConfig  `mapstructure:"auth" yaml:"auth"`
	Wait    wait.Config   `mapstructure:"wait" yaml:"wait"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Mock    mock.Config   `mapstructure:"mock" yaml:"mock"`
}

// Load reads and decodes a config.yaml.
func Load(path string) (*ConfigDoc, error) {
	clean := filepath.Clean(path)
	// #nosec G304 -- path is provided by the operator
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", clean, err)
	}
	var doc ConfigDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", clean, err)
	}
	return &doc, nil
}

// BuildLogger constructs the run logger from the logging section.
func (c *ConfigDoc) BuildLogger() *common.Logger {
	level := common.ParseLogLevel(strings.TrimSpace(c.Logging.Level))
	return common.NewLoggerForFormat(strings.TrimSpace(c.Logging.Format), level)
}

// InitialVars resolves static env entries and acquires every configured auth
// provider. Auth acquisition failures are fatal: a load run with a broken
// credential would fail every scenario anyway.
func (c *ConfigDoc) InitialVars(ctx context.Context) (vars.Map, error) {
	out := vars.Map{}
	for i, e := range c.Env {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("env[%d]: missing name", i)
		}
		if e.ValueFromEnv != "" {
			out[name] = os.Getenv(e.ValueFromEnv)
			continue
		}
		out[name] = e.Value
	}
	for i, a := range c.Auth {
		typ := strings.TrimSpace(a.Type)
		if typ == "" {
			return nil, fmt.Errorf("auth[%d]: missing type", i)
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return nil, fmt.Errorf("auth[%d] type=%s: missing name", i, typ)
		}
		value, err := auth.Acquire(ctx, typ, a.Config)
		if err != nil {
			return nil, fmt.Errorf("auth[%d] name=%s: %w", i, name, err)
		}
		out[name] = value
	}
	return out, nil
}

// TLSConfig builds the client TLS settings.
func (c *ConfigDoc) TLSConfig() *tls.Config {
	minV := parseTLSVersion(c.Client.MinTLSVersion)
	maxV := parseTLSVersion(c.Client.MaxTLSVersion)
	// #nosec G402 -- versions and verification are operator-configured
	cfg := &tls.Config{MinVersion: minV, MaxVersion: maxV}
	if c.Client.Insecure {
		cfg.InsecureSkipVerify = true
	}
	return cfg
}

// parseTLSVersion converts a TLS version string to the crypto/tls constant.
// Supports "1.2", "12", "tls1.2", "tls12". Returns 0 when unrecognized.
func parseTLSVersion(version string) uint16 {
	switch strings.TrimSpace(strings.ToLower(version)) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}
