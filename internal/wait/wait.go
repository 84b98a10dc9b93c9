// Package wait polls a target health endpoint before a load run starts, so
// scenarios do not burn iterations against a service that is still booting.
package wait

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loadsheet/loadsheet/internal/httpc"
)

const (
	DefaultTimeout  = 60 * time.Second
	DefaultInterval = 2 * time.Second
)

// Config describes the wait probe. An empty URL disables waiting.
type Config struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Method   string `mapstructure:"method" yaml:"method"`
	Status   int    `mapstructure:"status" yaml:"status"`
	Timeout  string `mapstructure:"timeout" yaml:"timeout"`
	Interval string `mapstructure:"interval" yaml:"interval"`
}

type params struct {
	url      string
	method   string
	expected int
	timeout  time.Duration
	interval time.Duration
}

func normalize(c Config) params {
	method := strings.ToUpper(strings.TrimSpace(c.Method))
	if method == "" {
		method = "GET"
	}
	expected := c.Status
	if expected == 0 {
		expected = 200
	}
	timeout := DefaultTimeout
	if s := strings.TrimSpace(c.Timeout); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		}
	}
	interval := DefaultInterval
	if s := strings.TrimSpace(c.Interval); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			interval = d
		}
	}
	return params{
		url:      strings.TrimSpace(c.URL),
		method:   method,
		expected: expected,
		timeout:  timeout,
		interval: interval,
	}
}

func probe(ctx context.Context, hcfg *httpc.Httpc, p params) (int, error) {
	req := hcfg.New().R().SetContext(ctx)
	switch p.method {
	case "HEAD":
		resp, err := req.Head(p.url)
		if resp != nil {
			return resp.StatusCode(), err
		}
		return 0, err
	default:
		resp, err := req.Get(p.url)
		if resp != nil {
			return resp.StatusCode(), err
		}
		return 0, err
	}
}

// Wait polls until the endpoint returns the expected status or the timeout
// elapses. A Config with no URL returns immediately.
func Wait(ctx context.Context, hcfg *httpc.Httpc, c Config) error {
	p := normalize(c)
	if p.url == "" {
		return nil
	}
	if hcfg == nil {
		hcfg = &httpc.Httpc{}
	}

	deadline := time.Now().Add(p.timeout)
	var lastStatus int
	for {
		status, err := probe(ctx, hcfg, p)
		if err == nil && status == p.expected {
			return nil
		}
		lastStatus = status

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("wait: timeout waiting for %s to return %d (last=%d)",
				p.url, p.expected, lastStatus)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
