package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultUnflareURL       = "http://localhost:5002/scrape"
	DefaultUnflareTimeoutMS = 60000

	// The bypass service may spend the whole TimeoutMS driving a browser, so
	// the HTTP exchange with it gets extra room on top.
	bypassTimeoutMargin = 30 * time.Second
	refreshKey          = "refresh"
)

var (
	ErrBypassUnavailable = errors.New("bypass service unavailable")
	ErrBypassFailed      = errors.New("bypass service failed")
	ErrBypassMalformed   = errors.New("bypass service returned malformed response")
)

// UpstreamProxy is forwarded to the bypass service, which routes its own
// browser traffic through it.
type UpstreamProxy struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// UnflareConfig configures the caching bypass-proxy strategy.
type UnflareConfig struct {
	ProxyURL      string
	TimeoutMS     int
	UpstreamProxy *UpstreamProxy
	// RequestTimeout bounds each request sent straight to the origin.
	RequestTimeout time.Duration
}

func (UnflareConfig) Strategy() string { return StrategyUnflare }

func (c UnflareConfig) clone() UnflareConfig {
	if c.UpstreamProxy != nil {
		proxy := *c.UpstreamProxy
		c.UpstreamProxy = &proxy
	}
	return c
}

type unflareRequest struct {
	URL     string         `json:"url"`
	Timeout int            `json:"timeout"`
	Method  string         `json:"method"`
	Proxy   *UpstreamProxy `json:"proxy,omitempty"`
}

type unflareResponse struct {
	Code    any               `json:"code"`
	Message any               `json:"message"`
	Cookies []Cookie          `json:"cookies"`
	Headers map[string]string `json:"headers"`
}

// Unflare obtains challenge cookies and headers from a bypass service and
// replays them against the origin until the origin rejects them or they
// expire. Refreshes are coalesced: concurrent callers share one round-trip
// to the bypass service.
type Unflare struct {
	config UnflareConfig
	cache  *CredentialCache
	group  singleflight.Group
}

func NewUnflare(cfg UnflareConfig) (*Unflare, error) {
	cfg = cfg.clone()
	if cfg.ProxyURL == "" {
		cfg.ProxyURL = DefaultUnflareURL
	}
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = DefaultUnflareTimeoutMS
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}

	if cfg.TimeoutMS < 0 {
		return nil, fmt.Errorf("unflare: timeout must be positive, got %d", cfg.TimeoutMS)
	}
	parsed, err := url.Parse(cfg.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("unflare: invalid proxy url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unflare: proxy url must be http or https: %q", cfg.ProxyURL)
	}
	if cfg.UpstreamProxy != nil && cfg.UpstreamProxy.Host == "" {
		return nil, fmt.Errorf("unflare: upstream proxy requires a host")
	}

	return &Unflare{
		config: cfg,
		cache:  newCredentialCache(time.Now),
	}, nil
}

// Config returns a copy of the handler configuration.
func (u *Unflare) Config() UnflareConfig {
	return u.config.clone()
}

// Credentials exposes the handler's credential cache.
func (u *Unflare) Credentials() *CredentialCache {
	return u.cache
}

func (u *Unflare) Get(ctx context.Context, target string, headers map[string]string) (string, bool) {
	logger := zerolog.Ctx(ctx).With().Str("url", target).Logger()

	if cred, ok := u.cache.snapshot(); ok {
		logger.Debug().Str("path", "fast").Msg("using cached credentials")
		status, body, err := fetch(ctx, u.originClient(), target, cred.requestHeaders(headers))
		switch {
		case err != nil:
			logger.Debug().Err(err).Str("path", "fast").Msg("cached request failed")
			return "", false
		case status == http.StatusOK:
			return body, true
		case status == http.StatusForbidden:
			if u.cache.invalidate(cred.generation) {
				logger.Info().Msg("cached credentials rejected by origin, refreshing")
			}
		default:
			logger.Debug().Int("status", status).Str("path", "fast").Msg("cached request rejected")
			return "", false
		}
	}

	logger.Debug().Str("path", "slow").Msg("requesting fresh credentials")
	cred, err := u.refresh(ctx, target)
	if err != nil {
		logger.Warn().Err(err).Msg("credential refresh failed")
		return "", false
	}

	status, body, err := fetch(ctx, u.originClient(), target, cred.requestHeaders(headers))
	if err != nil {
		logger.Debug().Err(err).Str("path", "slow").Msg("request with fresh credentials failed")
		return "", false
	}
	if status != http.StatusOK {
		logger.Debug().Int("status", status).Str("path", "slow").Msg("request with fresh credentials rejected")
		return "", false
	}
	return body, true
}

// refresh returns a credential from the bypass service. A caller that finds
// the cache already refilled by a concurrent refresh reuses it.
func (u *Unflare) refresh(ctx context.Context, target string) (credential, error) {
	ch := u.group.DoChan(refreshKey, func() (any, error) {
		if cred, ok := u.cache.snapshot(); ok {
			return cred, nil
		}
		return u.solve(context.WithoutCancel(ctx), target)
	})

	select {
	case <-ctx.Done():
		return credential{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return credential{}, res.Err
		}
		return res.Val.(credential), nil
	}
}

func (u *Unflare) solve(ctx context.Context, target string) (credential, error) {
	payload := unflareRequest{
		URL:     target,
		Timeout: u.config.TimeoutMS,
		Method:  http.MethodGet,
		Proxy:   u.config.UpstreamProxy,
	}

	resp, err := u.bypassClient().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(u.config.ProxyURL)
	if err != nil {
		return credential{}, fmt.Errorf("%w: %v", ErrBypassUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return credential{}, fmt.Errorf("%w: status %d", ErrBypassFailed, resp.StatusCode())
	}

	var result unflareResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return credential{}, fmt.Errorf("%w: %v", ErrBypassMalformed, err)
	}
	if code, _ := result.Code.(string); code == "error" {
		message := "unknown error"
		if result.Message != nil {
			message = fmt.Sprint(result.Message)
		}
		return credential{}, fmt.Errorf("%w: %s", ErrBypassFailed, message)
	}

	headers := result.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	cred := u.cache.put(result.Cookies, headers)

	zerolog.Ctx(ctx).Debug().
		Int("cookies", len(result.Cookies)).
		Int("headers", len(headers)).
		Time("expires_at", cred.expiresAt).
		Msg("cached fresh credentials")
	return cred, nil
}

func (u *Unflare) originClient() *resty.Client {
	return newRestyClient(u.config.RequestTimeout, false)
}

func (u *Unflare) bypassClient() *resty.Client {
	timeout := time.Duration(u.config.TimeoutMS)*time.Millisecond + bypassTimeoutMargin
	return newRestyClient(timeout, false)
}
