package handler

import (
	"math"
	"strings"
	"sync"
	"time"
)

const (
	defaultCredentialTTL = time.Hour
	expiryBuffer         = 5 * time.Minute
)

// Cookie is a cookie record handed back by the bypass service. Expires is a
// unix timestamp in seconds and may carry a fractional part.
type Cookie struct {
	Name    string   `json:"name"`
	Value   string   `json:"value"`
	Expires *float64 `json:"expires,omitempty"`
}

type credential struct {
	cookieHeader string
	hasCookies   bool
	headers      map[string]string
	expiresAt    time.Time
	generation   uint64
}

// CredentialCache holds the bypass artifacts of one Unflare handler. All
// methods are safe for concurrent use.
type CredentialCache struct {
	mu         sync.Mutex
	current    *credential
	generation uint64
	nowFunc    func() time.Time
}

func newCredentialCache(now func() time.Time) *CredentialCache {
	if now == nil {
		now = time.Now
	}
	return &CredentialCache{nowFunc: now}
}

// Store replaces the cached artifacts. The credential expires five minutes
// before the earliest cookie expiry, or after 55 minutes when no cookie
// carries one. A credential that is already stale is kept but reports invalid.
func (c *CredentialCache) Store(cookies []Cookie, headers map[string]string) {
	c.put(cookies, headers)
}

func (c *CredentialCache) put(cookies []Cookie, headers map[string]string) credential {
	c.mu.Lock()
	defer c.mu.Unlock()

	minExpiry := c.nowFunc().Add(defaultCredentialTTL)
	for _, cookie := range cookies {
		if cookie.Expires == nil || math.IsNaN(*cookie.Expires) {
			continue
		}
		// Compare as seconds first: far-future values do not fit an int64.
		if *cookie.Expires >= float64(minExpiry.Unix()+1) {
			continue
		}
		if expiry := unixSeconds(math.Max(*cookie.Expires, 0)); expiry.Before(minExpiry) {
			minExpiry = expiry
		}
	}

	var copied map[string]string
	if headers != nil {
		copied = make(map[string]string, len(headers))
		for key, value := range headers {
			copied[key] = value
		}
	}

	c.generation++
	cred := &credential{
		cookieHeader: cookieHeader(cookies),
		hasCookies:   len(cookies) > 0,
		headers:      copied,
		expiresAt:    minExpiry.Add(-expiryBuffer),
		generation:   c.generation,
	}
	c.current = cred
	return *cred
}

// Clear drops the cached artifacts.
func (c *CredentialCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

// Valid reports whether a cookie header and extra headers are cached and
// have not expired yet.
func (c *CredentialCache) Valid() bool {
	_, ok := c.snapshot()
	return ok
}

// HasCachedCookies reports whether a cookie header is currently cached,
// regardless of expiry.
func (c *CredentialCache) HasCachedCookies() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.hasCookies
}

// ExpiryTime returns when the cached credential goes stale. The zero time
// means the cache is empty.
func (c *CredentialCache) ExpiryTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return time.Time{}
	}
	return c.current.expiresAt
}

func (c *CredentialCache) snapshot() (credential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cred := c.current
	if cred == nil || !cred.hasCookies || cred.headers == nil {
		return credential{}, false
	}
	if !c.nowFunc().Before(cred.expiresAt) {
		return credential{}, false
	}
	return *cred, true
}

// invalidate clears the cache only if it still holds the credential of the
// given generation, so a rejection of an old credential cannot wipe a newer one.
func (c *CredentialCache) invalidate(generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.generation != generation {
		return false
	}
	c.current = nil
	return true
}

// requestHeaders merges the credential into the caller's headers. Cached
// headers win on conflict.
func (cred credential) requestHeaders(headers map[string]string) map[string]string {
	merged := mergeHeaders(headers, cred.headers)
	if cred.hasCookies {
		merged = mergeHeaders(merged, map[string]string{"Cookie": cred.cookieHeader})
	}
	return merged
}

func cookieHeader(cookies []Cookie) string {
	pairs := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		pairs = append(pairs, cookie.Name+"="+cookie.Value)
	}
	return strings.Join(pairs, "; ")
}

func unixSeconds(value float64) time.Time {
	sec, frac := math.Modf(value)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}
