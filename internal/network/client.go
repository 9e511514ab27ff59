package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

const (
	DefaultProfile = "chrome_120"
	defaultTimeout = 30 * time.Second
)

var (
	ErrRequestFailed  = errors.New("request failed")
	ErrUnknownProfile = errors.New("unknown tls profile")
)

// PreferredProfiles lists the browser fingerprints tried first when none is
// configured, most reliable first.
var PreferredProfiles = []string{"chrome_120", "chrome_117", "safari_16_0", "firefox_117"}

// ClientOptions tunes NewClient. The zero value impersonates Chrome 120 with
// a 30 second timeout and no proxies.
type ClientOptions struct {
	Profile string
	Timeout time.Duration
	Rotator *Rotator
}

// Client is a browser-impersonating HTTP client. Requests are serialized
// because rotating the proxy mutates the underlying client.
type Client struct {
	mu         sync.Mutex
	http       tls_client.HttpClient
	rotator    *Rotator
	profile    string
	userAgents []string
	rand       *rand.Rand
}

func NewClient(opts ClientOptions) (*Client, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Profile))
	if name == "" {
		name = DefaultProfile
	}
	profile, ok := profiles.MappedTLSClients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProfile, opts.Profile, strings.Join(Profiles(), ", "))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	jar, _ := fhttpcookiejar.New(nil)

	client, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profile),
		tls_client.WithTimeoutSeconds(int(timeout.Seconds())),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Client{
		http:       client,
		rotator:    opts.Rotator,
		profile:    name,
		userAgents: userAgentsFor(name),
		rand:       rng,
	}, nil
}

// Profiles returns the names accepted by ClientOptions.Profile.
func Profiles() []string {
	names := make([]string, 0, len(profiles.MappedTLSClients))
	for name := range profiles.MappedTLSClients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Client) Profile() string {
	return c.profile
}

func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	proxy, err := c.rotateProxy()
	if err != nil {
		return nil, err
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.randomUA())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if proxy != nil {
		c.rotator.Report(proxy, resp.StatusCode)
	}
	return resp, nil
}

// Get issues a GET and reads the whole body.
func (c *Client) Get(ctx context.Context, target string, headers map[string]string) (int, string, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return 0, "", err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("%w: reading body: %v", ErrRequestFailed, err)
	}
	return resp.StatusCode, string(body), nil
}

func (c *Client) rotateProxy() (*url.URL, error) {
	if c.rotator == nil || c.rotator.Len() == 0 {
		return nil, nil
	}
	proxy, err := c.rotator.Next()
	if err != nil {
		return nil, err
	}

	if err := c.http.SetProxy(proxy.String()); err != nil {
		return nil, fmt.Errorf("set proxy %s: %w", proxy.Redacted(), err)
	}
	return proxy, nil
}

func (c *Client) randomUA() string {
	if len(c.userAgents) == 0 {
		return ""
	}
	return c.userAgents[c.rand.Intn(len(c.userAgents))]
}
