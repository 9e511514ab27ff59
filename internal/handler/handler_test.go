package handler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type customConfig struct{}

func (customConfig) Strategy() string { return "custom" }

func TestNewSelectsStrategy(t *testing.T) {
	tests := []struct {
		name string
		cfg  RequestConfig
		want string
	}{
		{name: "direct", cfg: DirectConfig{}, want: "*handler.Direct"},
		{name: "direct pointer", cfg: &DirectConfig{}, want: "*handler.Direct"},
		{name: "unflare", cfg: UnflareConfig{}, want: "*handler.Unflare"},
		{name: "unflare pointer", cfg: &UnflareConfig{ProxyURL: "http://solver:5002/scrape"}, want: "*handler.Unflare"},
		{name: "tls", cfg: TLSConfig{}, want: "*handler.TLS"},
		{name: "browser", cfg: BrowserConfig{}, want: "*handler.Browser"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.cfg)
			require.NoError(t, err)
			require.Equal(t, tt.want, fmt.Sprintf("%T", h))
		})
	}
}

func TestNewRejectsUnknownConfig(t *testing.T) {
	var nilDirect *DirectConfig
	for _, cfg := range []RequestConfig{nil, nilDirect, customConfig{}} {
		_, err := New(cfg)
		require.ErrorIs(t, err, ErrUnknownConfig, "config %#v", cfg)
	}
}

func TestNewPropagatesConstructionErrors(t *testing.T) {
	h, err := New(UnflareConfig{ProxyURL: "ftp://solver"})
	require.Error(t, err, "invalid proxy url")
	require.Nil(t, h)

	h, err = New(TLSConfig{Proxies: []string{"http://"}})
	require.Error(t, err, "proxy without host")
	require.Nil(t, h)
}

func TestMergeHeaders(t *testing.T) {
	base := map[string]string{"accept": "*/*", "User-Agent": "caller"}
	got := mergeHeaders(base, map[string]string{"Accept": "text/html", "X-Extra": "1"})

	require.Equal(t, map[string]string{"Accept": "text/html", "User-Agent": "caller", "X-Extra": "1"}, got)
	require.Equal(t, map[string]string{"accept": "*/*", "User-Agent": "caller"}, base, "base must be left untouched")
}

func TestChallengeTitle(t *testing.T) {
	require.True(t, isChallengeTitle("Just a moment..."))
	require.True(t, isChallengeTitle("Attention Required! | Cloudflare"))
	require.False(t, isChallengeTitle("Pro Sports Transactions - Search Results"))
}
