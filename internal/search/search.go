// Package search builds prosportstransactions.com queries, fetches them
// through a handler.RequestHandler and parses the results tables.
package search

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jimezsa/sportstx/internal/handler"
	"github.com/jimezsa/sportstx/internal/models"
)

var ErrNoResponse = errors.New("no response from request handler")

type Search struct {
	params  models.SearchParams
	handler handler.RequestHandler
	headers map[string]string
}

// New prepares a search. A nil handler falls back to a direct request.
func New(params models.SearchParams, h handler.RequestHandler) *Search {
	if params.League == "" {
		params.League = models.LeagueNBA
	}
	if params.StartingRow < 0 {
		params.StartingRow = 0
	}
	if h == nil {
		h = handler.NewDirect(handler.DirectConfig{})
	}
	return &Search{
		params:  params,
		handler: h,
		headers: DefaultHeaders(),
	}
}

func (s *Search) URL() string {
	return BuildURL(s.params)
}

// Result fetches and parses the page at the configured starting row.
func (s *Search) Result(ctx context.Context) models.Result {
	return s.fetch(ctx, s.params)
}

// All walks result pages from the configured starting row until the last
// page or maxPages pages have been read. maxPages <= 0 means no limit.
func (s *Search) All(ctx context.Context, maxPages int) models.Result {
	logger := zerolog.Ctx(ctx)

	params := s.params
	combined := models.Result{Transactions: []models.Transaction{}}
	for read := 0; maxPages <= 0 || read < maxPages; read++ {
		if err := ctx.Err(); err != nil {
			combined.Errors = append(combined.Errors, err.Error())
			break
		}

		page := s.fetch(ctx, params)
		combined.Transactions = append(combined.Transactions, page.Transactions...)
		combined.Errors = append(combined.Errors, page.Errors...)
		if page.Pages > combined.Pages {
			combined.Pages = page.Pages
		}

		current := params.StartingRow/PageSize + 1
		logger.Debug().
			Int("page", current).
			Int("pages", page.Pages).
			Int("rows", len(page.Transactions)).
			Msg("search page read")

		if len(page.Transactions) == 0 || current >= page.Pages {
			break
		}
		params.StartingRow += PageSize
	}
	return combined
}

func (s *Search) fetch(ctx context.Context, params models.SearchParams) models.Result {
	target := BuildURL(params)
	body, ok := s.handler.Get(ctx, target, s.headers)
	if !ok {
		zerolog.Ctx(ctx).Warn().Str("url", target).Msg("search page unavailable")
		return models.Result{
			Transactions: []models.Transaction{},
			Errors:       []string{ErrNoResponse.Error()},
		}
	}
	return ParseResults(body)
}
