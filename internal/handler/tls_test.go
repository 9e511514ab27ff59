package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jimezsa/sportstx/internal/network"
)

func TestTLSReturnsBodyOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != "https://www.prosportstransactions.com/" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, "<html>OK</html>")
	}))
	defer server.Close()

	h, err := NewTLS(TLSConfig{})
	require.NoError(t, err)

	body, ok := h.Get(context.Background(), server.URL, map[string]string{"Referer": "https://www.prosportstransactions.com/"})
	require.True(t, ok)
	require.Equal(t, "<html>OK</html>", body)
}

func TestTLSRejectsNon200(t *testing.T) {
	h, err := NewTLS(TLSConfig{})
	require.NoError(t, err)

	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, "denied")
		}))

		body, ok := h.Get(context.Background(), server.URL, nil)
		server.Close()
		require.False(t, ok, "status %d", status)
		require.Empty(t, body, "status %d", status)
	}
}

func TestTLSNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	h, err := NewTLS(TLSConfig{})
	require.NoError(t, err)

	_, ok := h.Get(context.Background(), url, nil)
	require.False(t, ok)
}

func TestTLSProfileSelection(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		want    string
	}{
		{name: "default", profile: "", want: network.PreferredProfiles[0]},
		{name: "configured", profile: "firefox_117", want: "firefox_117"},
		{name: "case and space", profile: " Safari_16_0 ", want: "safari_16_0"},
		{name: "unknown falls back", profile: "netscape_4", want: network.PreferredProfiles[0]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewTLS(TLSConfig{Profile: tt.profile})
			require.NoError(t, err)
			require.Equal(t, tt.want, h.Profile())
		})
	}
}
