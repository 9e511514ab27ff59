package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"

	"github.com/jimezsa/sportstx/internal/models"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

// ParseFormat maps user input to a Format. Unknown values fall back to table.
func ParseFormat(value string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV
	case FormatJSON:
		return FormatJSON
	case FormatMarkdown, "markdown":
		return FormatMarkdown
	case FormatTSV:
		return FormatTSV
	default:
		return FormatTable
	}
}

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	// SourceURL is the search page the result came from; table and
	// markdown output link back to it.
	SourceURL string
}

const (
	acquiredColor     = "2"
	relinquishedColor = "1"
	linkColor         = "#87CEEB"
)

// WriteResult renders a search result in the given format.
func WriteResult(w io.Writer, result models.Result, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatCSV:
		return writeCSV(w, result.Transactions, ',')
	case FormatTSV:
		return writeCSV(w, result.Transactions, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, result, opts)
	default:
		return writeTable(w, result, opts)
	}
}

func writeJSON(w io.Writer, result models.Result) error {
	if result.Transactions == nil {
		result.Transactions = []models.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}

func writeCSV(w io.Writer, txs []models.Transaction, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(header()); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := writer.Write(row(tx)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, result models.Result, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToLower(strings.Join(header(), "\t")))
	output := termenv.NewOutput(w)
	for _, tx := range result.Transactions {
		cells := row(tx)
		for i, cell := range cells {
			if cell == "" {
				cells[i] = "-"
			}
		}
		if opts.ColorEnabled {
			cells[2] = colorize(output, cells[2], acquiredColor)
			cells[3] = colorize(output, cells[3], relinquishedColor)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	footer := fmt.Sprintf("%d transactions, %d pages", len(result.Transactions), result.Pages)
	if source := safe(opts.SourceURL); source != "" {
		label := source
		if opts.ColorEnabled {
			label = colorize(output, label, linkColor)
		}
		if opts.Hyperlinks {
			label = hyperlink(source, label)
		}
		footer += " from " + label
	}
	if _, err := fmt.Fprintln(w, footer); err != nil {
		return err
	}
	for _, msg := range result.Errors {
		if _, err := fmt.Fprintf(w, "error: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdown(w io.Writer, result models.Result, opts WriteOptions) error {
	if len(result.Transactions) == 0 {
		_, err := fmt.Fprintln(w, "No transactions.")
		return err
	}

	lines := []string{
		"| " + strings.Join(header(), " | ") + " |",
		"|" + strings.Repeat(" --- |", len(header())),
	}
	for _, tx := range result.Transactions {
		cells := row(tx)
		for i, cell := range cells {
			cells[i] = markdownCell(cell)
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	if source := safe(opts.SourceURL); source != "" {
		lines = append(lines, "", fmt.Sprintf("Source: [prosportstransactions.com](<%s>)", source))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func header() []string {
	return []string{"Date", "Team", "Acquired", "Relinquished", "Notes"}
}

func row(tx models.Transaction) []string {
	return []string{
		safe(tx.Date),
		safe(tx.Team),
		safe(tx.Acquired),
		safe(tx.Relinquished),
		safe(tx.Notes),
	}
}

func markdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", `\|`)
	return strings.Join(strings.Fields(value), " ")
}

func colorize(output *termenv.Output, text, color string) string {
	return output.String(text).Foreground(output.Color(color)).String()
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}
