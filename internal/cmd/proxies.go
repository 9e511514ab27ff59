package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/sportstx/internal/config"
	"github.com/jimezsa/sportstx/internal/network"
	"github.com/jimezsa/sportstx/internal/search"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Validate proxies against a target URL."`
}

type ProxyCheckCmd struct {
	Target  string `help:"Target URL." default:"https://www.prosportstransactions.com/"`
	Timeout int    `help:"Timeout in seconds." default:"15"`
	Profile string `help:"Browser TLS fingerprint." default:"chrome_120"`
	Proxies string `help:"Comma-separated proxy URLs." env:"SPORTSTX_PROXIES"`
	Workers int    `help:"Proxies checked concurrently." default:"4"`
}

type ProxyCheckResult struct {
	Proxy     string `json:"proxy"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(p.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	reqCtx, cancel := ctx.requestContext()
	defer cancel()

	results := make([]ProxyCheckResult, len(proxies))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < max(1, p.Workers); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.check(reqCtx, proxies[idx])
			}
		}()
	}
	for idx := range proxies {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return writeProxyResults(ctx, results)
}

func (p *ProxyCheckCmd) check(ctx context.Context, proxy string) ProxyCheckResult {
	result := ProxyCheckResult{Proxy: proxy, Status: "error"}

	rotator, err := network.NewRotator([]string{proxy}, 5*time.Minute)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	timeout := time.Duration(p.Timeout) * time.Second
	client, err := network.NewClient(network.ClientOptions{
		Profile: p.Profile,
		Timeout: timeout,
		Rotator: rotator,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	status, _, err := client.Get(checkCtx, p.Target, search.DefaultHeaders())
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.LatencyMS = time.Since(start).Milliseconds()
	result.Status = strconv.Itoa(status)
	return result
}

func writeProxyResults(ctx *Context, results []ProxyCheckResult) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if ctx.PlainText {
		for _, res := range results {
			line := []string{res.Proxy, res.Status, strconv.FormatInt(res.LatencyMS, 10), res.Error}
			fmt.Fprintln(ctx.Out, strings.Join(line, "\t"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "proxy\tstatus\tlatency_ms\terror")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", res.Proxy, res.Status, res.LatencyMS, res.Error)
	}
	return tw.Flush()
}
