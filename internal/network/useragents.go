package network

import "strings"

var chromeUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

var firefoxUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:117.0) Gecko/20100101 Firefox/117.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:117.0) Gecko/20100101 Firefox/117.0",
}

var safariUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Safari/605.1.15",
}

// userAgentsFor keeps the User-Agent consistent with the TLS fingerprint;
// a Firefox handshake announcing Chrome is an easy tell.
func userAgentsFor(profile string) []string {
	var agents []string
	switch {
	case strings.HasPrefix(profile, "firefox"):
		agents = firefoxUserAgents
	case strings.HasPrefix(profile, "safari"):
		agents = safariUserAgents
	case strings.HasPrefix(profile, "chrome"):
		agents = chromeUserAgents
	default:
		return nil
	}
	return append([]string{}, agents...)
}
