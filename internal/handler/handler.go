// Package handler implements the page acquisition strategies used by the
// search layer. Every strategy satisfies RequestHandler; failures of the
// network or the origin never escape Get, they are reported as ok == false.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownConfig = errors.New("unknown handler config")

// RequestHandler fetches the text of a page.
type RequestHandler interface {
	Get(ctx context.Context, url string, headers map[string]string) (string, bool)
}

// RequestConfig is implemented by each strategy's configuration.
type RequestConfig interface {
	Strategy() string
}

const (
	StrategyDirect  = "direct"
	StrategyUnflare = "unflare"
	StrategyTLS     = "tls"
	StrategyBrowser = "browser"
)

// New builds the handler matching cfg.
func New(cfg RequestConfig) (RequestHandler, error) {
	switch c := cfg.(type) {
	case DirectConfig:
		return NewDirect(c), nil
	case UnflareConfig:
		return built(NewUnflare(c))
	case TLSConfig:
		return built(NewTLS(c))
	case BrowserConfig:
		return built(NewBrowser(c))
	case *DirectConfig:
		if c != nil {
			return New(*c)
		}
	case *UnflareConfig:
		if c != nil {
			return New(*c)
		}
	case *TLSConfig:
		if c != nil {
			return New(*c)
		}
	case *BrowserConfig:
		if c != nil {
			return New(*c)
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownConfig, cfg)
}

// built keeps a failed constructor from yielding a non-nil interface.
func built[H RequestHandler](h H, err error) (RequestHandler, error) {
	if err != nil {
		return nil, err
	}
	return h, nil
}

// mergeHeaders copies base and overlays extra on top of it. Header names are
// compared case-insensitively so a cached "User-Agent" replaces a caller's
// "user-agent" instead of sending both.
func mergeHeaders(base map[string]string, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range extra {
		for existing := range out {
			if existing != key && strings.EqualFold(existing, key) {
				delete(out, existing)
			}
		}
		out[key] = value
	}
	return out
}
