package search

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jimezsa/sportstx/internal/models"
)

const (
	BaseURL    = "https://www.prosportstransactions.com"
	resultPath = "Search/SearchResults.php"
	dateLayout = "2006-01-02"

	// PageSize is the number of rows the site returns per results page.
	PageSize = 25
)

// DefaultHeaders are the browser-like headers sent with every search
// request. Accept-Encoding is left to the HTTP client so bodies are
// decompressed transparently.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.9",
		"Content-Type":    "text/html; charset=utf-8",
		"Referer":         BaseURL + "/",
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Safari/537.36 Edg/112.0.1722.48",
	}
}

// BuildURL returns the results page URL for params. Query parameters keep
// the order of the site's own search form.
func BuildURL(params models.SearchParams) string {
	league := params.League
	if league == "" {
		league = models.LeagueNBA
	}

	var query queryBuilder
	query.add("BeginDate", formatDate(params.Start))
	query.add("EndDate", formatDate(params.End))
	if player := strings.TrimSpace(params.Player); player != "" {
		query.add("Player", player)
	}
	if team := strings.TrimSpace(params.Team); team != "" {
		query.add("Team", team)
	}
	query.add("start", strconv.Itoa(params.StartingRow))
	query.add("Submit", "Search")
	for _, typ := range params.Types {
		if field := typ.FormField(league); field != "" {
			query.add(field, "yes")
		}
	}

	return BaseURL + "/" + string(league) + "/" + resultPath + "?" + query.String()
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(dateLayout)
}

type queryBuilder struct {
	pairs []string
}

func (q *queryBuilder) add(key, value string) {
	q.pairs = append(q.pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q *queryBuilder) String() string {
	return strings.Join(q.pairs, "&")
}
