package search

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jimezsa/sportstx/internal/models"
)

var (
	ErrNoTables     = errors.New("no tables found")
	ErrNoPagination = errors.New("no pagination found")
)

var pageOfPattern = regexp.MustCompile(`(?i)page\s+\d+\s+of\s+(\d+)`)

// ParseResults extracts transactions and the page count from a results
// page. It never fails; problems are reported in Result.Errors.
func ParseResults(html string) models.Result {
	result := models.Result{Transactions: []models.Transaction{}}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		result.Errors = append(result.Errors, ErrNoTables.Error())
		return result
	}

	tables.First().Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td, th")
		if cells.Length() < 5 {
			return
		}
		text := func(idx int) string {
			return cleanText(cells.Eq(idx).Text())
		}
		result.Transactions = append(result.Transactions, models.Transaction{
			Date:         text(0),
			Team:         text(1),
			Acquired:     text(2),
			Relinquished: text(3),
			Notes:        text(4),
		})
	})

	if tables.Length() < 2 {
		result.Errors = append(result.Errors, ErrNoPagination.Error())
		return result
	}
	pages, err := pageCount(tables.Eq(1))
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Pages = pages
	return result
}

// pageCount reads the total from the pagination table. The third header
// cell ends with the page total; "Page x of N" anywhere in the table is
// accepted as well.
func pageCount(table *goquery.Selection) (int, error) {
	cells := table.Find("tr").First().Find("td, th")
	if cells.Length() >= 3 {
		fields := strings.Fields(cells.Eq(2).Text())
		if len(fields) > 0 {
			if pages, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
				return pages, nil
			}
		}
	}

	if match := pageOfPattern.FindStringSubmatch(table.Text()); match != nil {
		pages, err := strconv.Atoi(match[1])
		if err == nil {
			return pages, nil
		}
	}
	return 0, fmt.Errorf("%w in second table", ErrNoPagination)
}

func cleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
