package models

// Transaction is one row of the search results table.
type Transaction struct {
	Date         string `json:"Date"`
	Team         string `json:"Team"`
	Acquired     string `json:"Acquired"`
	Relinquished string `json:"Relinquished"`
	Notes        string `json:"Notes"`
}

// Result is a parsed search results page.
type Result struct {
	Transactions []Transaction `json:"transactions"`
	Pages        int           `json:"pages"`
	Errors       []string      `json:"errors,omitempty"`
}
