// Package mock serves yaml-defined canned responses for local test-case
// development, so data sources can be exercised without a real target.
package mock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loadsheet/loadsheet/internal/common"
)

// Route is one canned endpoint.
type Route struct {
	Method  string            `mapstructure:"method" yaml:"method"`
	Path    string            `mapstructure:"path" yaml:"path"`
	Status  int               `mapstructure:"status" yaml:"status"`
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
	Body    string            `mapstructure:"body" yaml:"body"`
	// Delay is an optional duration string ("150ms") applied before replying.
	Delay string `mapstructure:"delay" yaml:"delay"`
}

// Config describes the mock server.
type Config struct {
	Addr   string  `mapstructure:"addr" yaml:"addr"`
	Routes []Route `mapstructure:"routes" yaml:"routes"`
}

// NewEngine builds a gin engine serving the configured routes.
func NewEngine(cfg Config, logger *common.Logger) (*gin.Engine, error) {
	if len(cfg.Routes) == 0 {
		return nil, errors.New("mock: no routes configured")
	}
	if logger == nil {
		logger = common.GetLogger()
	}
	log := logger.WithComponent("mock")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	for i, r := range cfg.Routes {
		method := strings.ToUpper(strings.TrimSpace(r.Method))
		if method == "" {
			method = http.MethodGet
		}
		path := strings.TrimSpace(r.Path)
		if path == "" {
			return nil, fmt.Errorf("mock: route %d: path is required", i)
		}

		var delay time.Duration
		if s := strings.TrimSpace(r.Delay); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("mock: route %d: invalid delay %q", i, s)
			}
			delay = d
		}

		status := r.Status
		if status == 0 {
			status = http.StatusOK
		}

		route := r
		engine.Handle(method, path, func(c *gin.Context) {
			if delay > 0 {
				time.Sleep(delay)
			}
			for k, v := range route.Headers {
				c.Header(k, v)
			}
			contentType := c.Writer.Header().Get("Content-Type")
			if contentType == "" {
				if looksLikeJSON(route.Body) {
					contentType = "application/json"
				} else {
					contentType = "text/plain; charset=utf-8"
				}
			}
			c.Data(status, contentType, []byte(route.Body))
		})
		log.Debug("route registered", "method", method, "path", path, "status", status)
	}
	return engine, nil
}

// Serve runs the mock server until ctx is cancelled.
func Serve(ctx context.Context, cfg Config, logger *common.Logger) error {
	engine, err := NewEngine(cfg, logger)
	if err != nil {
		return err
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = ":8090"
	}
	if logger == nil {
		logger = common.GetLogger()
	}
	log := logger.WithComponent("mock")

	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("mock server listening", "addr", addr, "routes", len(cfg.Routes))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func looksLikeJSON(s string) bool {
	t := strings.TrimSpace(s)
	return strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")
}
