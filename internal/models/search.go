package models

import "time"

// SearchParams captures the filters of one transaction search.
type SearchParams struct {
	League      League
	Types       []TransactionType
	Start       time.Time
	End         time.Time
	Player      string
	Team        string
	StartingRow int
}
