package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// tunnelProxy accepts CONNECT requests and answers the tunneled request
// itself with a fixed status, standing in for the origin behind the proxy.
type tunnelProxy struct {
	status int
	body   string
	hits   atomic.Int32
}

func (p *tunnelProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodConnect {
		http.Error(w, "connect only", http.StatusMethodNotAllowed)
		return
	}
	hijacker, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "hijack unsupported", http.StatusInternalServerError)
		return
	}
	conn, rw, err := hijacker.Hijack()
	if err != nil {
		return
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, "HTTP/1.1 200 Connection established\r\n\r\n"); err != nil {
		return
	}
	req, err := http.ReadRequest(rw.Reader)
	if err != nil {
		return
	}
	_ = req.Body.Close()
	p.hits.Add(1)

	resp := &http.Response{
		StatusCode:    p.status,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"text/html"}},
		ContentLength: int64(len(p.body)),
		Body:          io.NopCloser(strings.NewReader(p.body)),
		Close:         true,
	}
	_ = resp.Write(conn)
}

func TestClientGet(t *testing.T) {
	var gotUA, gotTeam string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotTeam = r.Header.Get("X-Team")
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, "<table></table>")
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{Profile: "firefox_117", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	status, body, err := client.Get(context.Background(), server.URL, map[string]string{"X-Team": "Lakers"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if status != http.StatusAccepted || body != "<table></table>" {
		t.Fatalf("expected 202 with body, got %d %q", status, body)
	}
	if gotTeam != "Lakers" {
		t.Fatalf("expected caller header to be forwarded, got %q", gotTeam)
	}
	if !strings.Contains(gotUA, "Firefox") {
		t.Fatalf("expected a firefox user agent, got %q", gotUA)
	}
}

func TestClientGetKeepsCallerUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, _, err := client.Get(context.Background(), server.URL, map[string]string{"User-Agent": "sportstx-test"}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if gotUA != "sportstx-test" {
		t.Fatalf("expected caller user agent, got %q", gotUA)
	}
}

func TestClientGetUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL
	server.Close()

	client, err := NewClient(ClientOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, _, err := client.Get(context.Background(), target, nil); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestClientBansProxyAnsweringForbidden(t *testing.T) {
	blocked := &tunnelProxy{status: http.StatusForbidden, body: "blocked"}
	healthy := &tunnelProxy{status: http.StatusOK, body: "<html>ok</html>"}
	blockedServer := httptest.NewServer(blocked)
	defer blockedServer.Close()
	healthyServer := httptest.NewServer(healthy)
	defer healthyServer.Close()
	origin := httptest.NewServer(http.NotFoundHandler())
	defer origin.Close()

	rotator, err := NewRotator([]string{blockedServer.URL, healthyServer.URL}, time.Hour)
	if err != nil {
		t.Fatalf("new rotator: %v", err)
	}
	client, err := NewClient(ClientOptions{Timeout: 5 * time.Second, Rotator: rotator})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	status, _, err := client.Get(context.Background(), origin.URL, nil)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 through the first proxy, got %d", status)
	}

	for i := 0; i < 2; i++ {
		status, body, err := client.Get(context.Background(), origin.URL, nil)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if status != http.StatusOK || body != "<html>ok</html>" {
			t.Fatalf("get %d: expected 200 through the healthy proxy, got %d %q", i, status, body)
		}
	}

	if got := blocked.hits.Load(); got != 1 {
		t.Fatalf("expected banned proxy to be skipped after one hit, got %d hits", got)
	}
	if got := healthy.hits.Load(); got != 2 {
		t.Fatalf("expected healthy proxy to serve 2 requests, got %d", got)
	}
}

func TestNewClientUnknownProfile(t *testing.T) {
	_, err := NewClient(ClientOptions{Profile: "netscape_4"})
	if !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
	if !strings.Contains(err.Error(), DefaultProfile) {
		t.Fatalf("expected error to list known profiles, got %v", err)
	}
}

func TestProfilesSorted(t *testing.T) {
	names := Profiles()
	for _, want := range PreferredProfiles {
		found := false
		for _, name := range names {
			if name == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected %s among profiles", want)
		}
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("expected sorted profiles, got %s before %s", names[i-1], names[i])
		}
	}
}
