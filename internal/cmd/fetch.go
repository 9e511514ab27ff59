package cmd

import (
	"fmt"
	"net/url"
	"os"

	"github.com/jimezsa/sportstx/internal/search"
)

type FetchCmd struct {
	URL string `arg:"" help:"Page URL."`
	HandlerOptions

	NoDefaultHeaders bool   `help:"Send no browser-like default headers."`
	Output           string `name:"output" short:"o" help:"Write the page to a file."`
}

func (f *FetchCmd) Run(ctx *Context) error {
	parsed, err := url.Parse(f.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("invalid url: %q", f.URL)
	}

	h, err := buildHandler(ctx, f.HandlerOptions)
	if err != nil {
		return err
	}

	headers := search.DefaultHeaders()
	if f.NoDefaultHeaders {
		headers = nil
	}

	reqCtx, cancel := ctx.requestContext()
	defer cancel()

	body, ok := h.Get(reqCtx, f.URL, headers)
	if !ok {
		return fmt.Errorf("no response for %s (rerun with --verbose for details)", f.URL)
	}

	if f.Output != "" {
		return os.WriteFile(f.Output, []byte(body), 0o644)
	}
	_, err = fmt.Fprint(ctx.Out, body)
	return err
}
