package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	cdpnetwork "github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

const (
	defaultBrowserTimeout = 60 * time.Second
	defaultChallengeWait  = 30 * time.Second
	challengePoll         = time.Second
	browserUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var errChallengePersisted = errors.New("challenge page persisted")

// BrowserConfig configures the headless Chrome strategy.
type BrowserConfig struct {
	Timeout time.Duration
	// ChallengeWait is how long an interstitial may stay up before the
	// request is given up.
	ChallengeWait time.Duration
	// Headful shows the browser window.
	Headful  bool
	ExecPath string
}

func (BrowserConfig) Strategy() string { return StrategyBrowser }

// Browser renders each page in a fresh headless Chrome. Caller headers are
// sent as extra request headers.
type Browser struct {
	config BrowserConfig
}

func NewBrowser(cfg BrowserConfig) (*Browser, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBrowserTimeout
	}
	if cfg.ChallengeWait < 0 {
		cfg.ChallengeWait = 0
	} else if cfg.ChallengeWait == 0 {
		cfg.ChallengeWait = defaultChallengeWait
	}
	return &Browser{config: cfg}, nil
}

func (b *Browser) Get(ctx context.Context, url string, headers map[string]string) (string, bool) {
	logger := zerolog.Ctx(ctx).With().Str("url", url).Logger()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug().Msgf(format, args...)
		}),
	)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, b.config.Timeout)
	defer cancelTimeout()

	var html, title string
	err := chromedp.Run(timeoutCtx,
		extraHeaders(headers),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return waitOutChallenge(ctx, b.config.ChallengeWait, &title)
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		logger.Debug().Err(err).Str("title", title).Msg("browser request failed")
		return "", false
	}
	return html, true
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !b.config.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(browserUserAgent),
	)
	if b.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.config.ExecPath))
	}
	return opts
}

func extraHeaders(headers map[string]string) chromedp.Action {
	if len(headers) == 0 {
		return chromedp.Tasks{}
	}
	extra := cdpnetwork.Headers{}
	for key, value := range headers {
		extra[key] = value
	}
	return chromedp.Tasks{
		cdpnetwork.Enable(),
		cdpnetwork.SetExtraHTTPHeaders(extra),
	}
}

// waitOutChallenge polls the page title until the interstitial is gone or
// the wait budget is spent.
func waitOutChallenge(ctx context.Context, wait time.Duration, title *string) error {
	deadline := time.Now().Add(wait)
	for {
		if err := chromedp.Title(title).Do(ctx); err != nil {
			return err
		}
		if !isChallengeTitle(*title) {
			return nil
		}
		if !time.Now().Before(deadline) {
			return errChallengePersisted
		}
		if err := chromedp.Sleep(challengePoll).Do(ctx); err != nil {
			return err
		}
	}
}

func isChallengeTitle(title string) bool {
	lower := strings.ToLower(title)
	return strings.Contains(lower, "just a moment") || strings.Contains(lower, "attention required")
}
