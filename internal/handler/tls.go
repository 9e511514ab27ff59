package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/sportstx/internal/network"
)

const defaultBanDuration = 5 * time.Minute

// TLSConfig configures the browser-fingerprint strategy. When Profile is
// empty or unknown the first usable entry of network.PreferredProfiles is
// used instead; TLS.Profile reports the outcome.
type TLSConfig struct {
	Profile     string
	Timeout     time.Duration
	Proxies     []string
	BanDuration time.Duration
}

func (TLSConfig) Strategy() string { return StrategyTLS }

// TLS sends requests with a browser TLS handshake, optionally rotating
// through proxies. The underlying client keeps a cookie jar across calls.
type TLS struct {
	client *network.Client
}

func NewTLS(cfg TLSConfig) (*TLS, error) {
	if cfg.BanDuration <= 0 {
		cfg.BanDuration = defaultBanDuration
	}

	var rotator *network.Rotator
	if len(cfg.Proxies) > 0 {
		r, err := network.NewRotator(cfg.Proxies, cfg.BanDuration)
		if err != nil {
			return nil, fmt.Errorf("tls: %w", err)
		}
		rotator = r
	}

	candidates := network.PreferredProfiles
	if cfg.Profile != "" {
		candidates = append([]string{cfg.Profile}, network.PreferredProfiles...)
	}

	var lastErr error
	for _, profile := range candidates {
		client, err := network.NewClient(network.ClientOptions{
			Profile: profile,
			Timeout: cfg.Timeout,
			Rotator: rotator,
		})
		if err != nil {
			lastErr = err
			continue
		}
		return &TLS{client: client}, nil
	}
	return nil, fmt.Errorf("tls: %w", lastErr)
}

// Profile reports the browser fingerprint in use.
func (h *TLS) Profile() string {
	return h.client.Profile()
}

func (h *TLS) Get(ctx context.Context, url string, headers map[string]string) (string, bool) {
	logger := zerolog.Ctx(ctx).With().Str("url", url).Str("profile", h.client.Profile()).Logger()

	status, body, err := h.client.Get(ctx, url, headers)
	if err != nil {
		logger.Debug().Err(err).Msg("tls request failed")
		return "", false
	}
	if status != http.StatusOK {
		logger.Debug().Int("status", status).Msg("tls request rejected")
		return "", false
	}
	return body, true
}
