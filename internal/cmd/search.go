package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jimezsa/sportstx/internal/export"
	"github.com/jimezsa/sportstx/internal/models"
	"github.com/jimezsa/sportstx/internal/search"
	"github.com/jimezsa/sportstx/internal/seen"
)

const dateLayout = "2006-01-02"

// QueryOptions describe one search. They are shared by search and url.
type QueryOptions struct {
	League string `short:"l" help:"League: mlb, nba, nfl, nhl, mls (or baseball, basketball, ...)." env:"SPORTSTX_DEFAULT_LEAGUE"`
	Types  string `short:"t" help:"Comma-separated transaction types, or all: disciplinary, injured-list, injury, legal, minor-league, movement, personal." default:"all"`
	Start  string `help:"Begin date (YYYY-MM-DD). Defaults to today; 'any' leaves it open."`
	End    string `help:"End date (YYYY-MM-DD). Defaults to today; 'any' leaves it open."`
	Player string `help:"Player name filter."`
	Team   string `help:"Team name filter."`
	Row    int    `help:"Starting row (multiples of 25)."`
}

type SearchCmd struct {
	QueryOptions
	HandlerOptions

	Pages      int    `help:"Maximum result pages to read; 0 reads all." default:"1"`
	Format     string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Output     string `name:"output" short:"o" help:"Write output to a file."`
	Seen       string `help:"Path to seen transactions JSON file."`
	NewOnly    bool   `help:"Output only unseen transactions (requires --seen)."`
	NewOut     string `help:"Write unseen transactions JSON to a file (requires --seen)."`
	SeenUpdate bool   `help:"Merge unseen transactions into --seen after the search (requires --seen)."`
}

type URLCmd struct {
	QueryOptions
}

func (c *URLCmd) Run(ctx *Context) error {
	params, err := c.params(ctx, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.Out, search.BuildURL(params))
	return err
}

func (s *SearchCmd) Run(ctx *Context) error {
	if err := s.validateSeenFlags(); err != nil {
		return err
	}

	params, err := s.params(ctx, time.Now())
	if err != nil {
		return err
	}
	h, err := buildHandler(ctx, s.HandlerOptions)
	if err != nil {
		return err
	}

	reqCtx, cancel := ctx.requestContext()
	defer cancel()

	stopIndicator := startSearchIndicator(ctx)
	srch := search.New(params, h)
	result := srch.All(reqCtx, s.Pages)
	if stopIndicator != nil {
		stopIndicator()
	}

	reportResultErrors(ctx, result)

	var unseen []models.Transaction
	if strings.TrimSpace(s.Seen) != "" {
		history, err := seen.ReadAllowMissing(s.Seen)
		if err != nil {
			return fmt.Errorf("read --seen: %w", err)
		}
		unseen, _ = seen.Diff(result.Transactions, history)
	}

	output := result
	if s.NewOnly {
		output.Transactions = unseen
	}

	if strings.TrimSpace(s.NewOut) != "" {
		if err := seen.Write(s.NewOut, unseen); err != nil {
			return fmt.Errorf("write --new-out: %w", err)
		}
	}

	format, err := resolveFormat(ctx, s.Format, s.Output)
	if err != nil {
		return err
	}

	writer := ctx.Out
	if s.Output != "" {
		file, err := os.Create(s.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && s.Output == ""
	if err := export.WriteResult(writer, output, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   colorEnabled && ctx.UI.IsTerminal(),
		SourceURL:    srch.URL(),
	}); err != nil {
		return err
	}

	if s.SeenUpdate {
		if err := updateSeenHistory(s.Seen, unseen); err != nil {
			return err
		}
	}

	printSearchSummary(ctx, result, unseen, strings.TrimSpace(s.Seen) != "")
	return nil
}

func (s *SearchCmd) validateSeenFlags() error {
	hasSeen := strings.TrimSpace(s.Seen) != ""
	switch {
	case s.NewOnly && !hasSeen:
		return fmt.Errorf("--new-only requires --seen")
	case strings.TrimSpace(s.NewOut) != "" && !hasSeen:
		return fmt.Errorf("--new-out requires --seen")
	case s.SeenUpdate && !hasSeen:
		return fmt.Errorf("--seen-update requires --seen")
	case hasSeen && pathsEqual(s.Output, s.Seen):
		return fmt.Errorf("--output path must differ from --seen")
	case hasSeen && pathsEqual(s.NewOut, s.Seen):
		return fmt.Errorf("--new-out path must differ from --seen")
	case pathsEqual(s.NewOut, s.Output):
		return fmt.Errorf("--new-out path must differ from --output")
	}
	return nil
}

func (q QueryOptions) params(ctx *Context, now time.Time) (models.SearchParams, error) {
	league, err := models.ParseLeague(firstNonEmpty(q.League, ctx.Config.DefaultLeague, "nba"))
	if err != nil {
		return models.SearchParams{}, err
	}
	types, err := models.ParseTransactionTypes(q.Types)
	if err != nil {
		return models.SearchParams{}, err
	}
	start, err := parseDate(q.Start, now)
	if err != nil {
		return models.SearchParams{}, fmt.Errorf("--start: %w", err)
	}
	end, err := parseDate(q.End, now)
	if err != nil {
		return models.SearchParams{}, fmt.Errorf("--end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return models.SearchParams{}, fmt.Errorf("--end %s is before --start %s", end.Format(dateLayout), start.Format(dateLayout))
	}
	if q.Row < 0 {
		return models.SearchParams{}, fmt.Errorf("--row must not be negative")
	}

	return models.SearchParams{
		League:      league,
		Types:       types,
		Start:       start,
		End:         end,
		Player:      strings.TrimSpace(q.Player),
		Team:        strings.TrimSpace(q.Team),
		StartingRow: q.Row,
	}, nil
}

func parseDate(value string, now time.Time) (time.Time, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "", "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case "any":
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}

func updateSeenHistory(seenPath string, input []models.Transaction) error {
	history, err := seen.ReadAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	merged, _ := seen.Merge(history, input)
	if err := seen.Write(seenPath, merged); err != nil {
		return fmt.Errorf("write --seen: %w", err)
	}
	return nil
}

func reportResultErrors(ctx *Context, result models.Result) {
	if ctx == nil || ctx.UI == nil || len(result.Errors) == 0 {
		return
	}
	if len(result.Transactions) > 0 && !ctx.Verbose {
		return
	}
	for _, msg := range result.Errors {
		ctx.UI.Warnf("search: %s", msg)
	}
}

func printSearchSummary(ctx *Context, result models.Result, unseen []models.Transaction, withSeen bool) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintln(ctx.Err, formatSearchSummary(result, unseen, withSeen))
}

func formatSearchSummary(result models.Result, unseen []models.Transaction, withSeen bool) string {
	summary := fmt.Sprintf("summary: transactions=%d pages=%d", len(result.Transactions), result.Pages)
	if withSeen {
		summary += fmt.Sprintf(" unseen=%d", len(unseen))
	}
	if len(result.Errors) > 0 {
		summary += fmt.Sprintf(" errors=%d", len(result.Errors))
	}
	return summary
}

func resolveFormat(ctx *Context, value string, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if value != "" {
		return parseFormat(value)
	}
	if outputPath != "" {
		switch strings.ToLower(filepath.Ext(outputPath)) {
		case ".json":
			return export.FormatJSON, nil
		case ".md":
			return export.FormatMarkdown, nil
		case ".tsv":
			return export.FormatTSV, nil
		}
		return export.FormatCSV, nil
	}
	if ctx.UI != nil && ctx.UI.IsTerminal() {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv", "json", "md", "markdown", "tsv", "table", "":
		return export.ParseFormat(value), nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func startSearchIndicator(ctx *Context) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return nil
	}
	if ctx.Verbose || !ctx.UI.ErrIsTerminal() {
		return nil
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2KFetching transactions... %ds %s", seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
