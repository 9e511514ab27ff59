package handler

import (
	"context"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// DirectConfig configures the plain GET strategy.
type DirectConfig struct {
	Timeout time.Duration
	// CloudflareTransport swaps in a transport with browser-like TLS cipher
	// ordering and default headers.
	CloudflareTransport bool
}

func (DirectConfig) Strategy() string { return StrategyDirect }

// Direct issues a single unmodified GET per call. Nothing is shared between
// calls: every Get builds and discards its own client.
type Direct struct {
	config DirectConfig
}

func NewDirect(cfg DirectConfig) *Direct {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Direct{config: cfg}
}

func (d *Direct) Get(ctx context.Context, url string, headers map[string]string) (string, bool) {
	logger := zerolog.Ctx(ctx)

	status, body, err := fetch(ctx, newRestyClient(d.config.Timeout, d.config.CloudflareTransport), url, headers)
	if err != nil {
		logger.Debug().Err(err).Str("url", url).Msg("direct request failed")
		return "", false
	}
	if status != http.StatusOK {
		logger.Debug().Int("status", status).Str("url", url).Msg("direct request rejected")
		return "", false
	}
	return body, true
}

func newRestyClient(timeout time.Duration, cloudflare bool) *resty.Client {
	client := resty.New().SetTimeout(timeout)
	if cloudflare {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	return client
}

// fetch performs one GET and returns the status and raw body text.
func fetch(ctx context.Context, client *resty.Client, url string, headers map[string]string) (int, string, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode(), string(resp.Body()), nil
}
