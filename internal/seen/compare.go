package seen

import (
	"strings"

	"github.com/jimezsa/sportstx/internal/models"
)

const keySeparator = "::"

// DiffStats captures stats for A-B unseen filtering.
type DiffStats struct {
	TotalNew    int
	TotalSeen   int
	InvalidNew  int
	InvalidSeen int
	Unseen      int
}

func (s DiffStats) InvalidSkipped() int {
	return s.InvalidNew + s.InvalidSeen
}

// MergeStats captures stats for seen history updates.
type MergeStats struct {
	TotalSeen    int
	TotalInput   int
	InvalidSeen  int
	InvalidInput int
	Added        int
	TotalOut     int
}

func (s MergeStats) InvalidSkipped() int {
	return s.InvalidSeen + s.InvalidInput
}

// Normalize lowercases, trims and collapses whitespace. The bullet the site
// puts in front of player names is dropped so "• LeBron James" and
// "LeBron James" compare equal.
func Normalize(value string) string {
	value = strings.ReplaceAll(value, "•", " ")
	fields := strings.Fields(strings.ToLower(value))
	return strings.Join(fields, " ")
}

// Key identifies a transaction by date, team and the players moved. Rows
// without a date or team, or without any player, have no key.
func Key(tx models.Transaction) (string, bool) {
	date := Normalize(tx.Date)
	team := Normalize(tx.Team)
	acquired := Normalize(tx.Acquired)
	relinquished := Normalize(tx.Relinquished)
	if date == "" || team == "" || (acquired == "" && relinquished == "") {
		return "", false
	}
	return strings.Join([]string{date, team, acquired, relinquished}, keySeparator), true
}

// Diff returns the transactions of incoming whose keys are absent from seen.
func Diff(incoming []models.Transaction, seen []models.Transaction) ([]models.Transaction, DiffStats) {
	stats := DiffStats{
		TotalNew:  len(incoming),
		TotalSeen: len(seen),
	}

	seenKeys := make(map[string]struct{}, len(seen))
	for _, tx := range seen {
		key, ok := Key(tx)
		if !ok {
			stats.InvalidSeen++
			continue
		}
		seenKeys[key] = struct{}{}
	}

	newKeys := make(map[string]struct{}, len(incoming))
	unseen := make([]models.Transaction, 0, len(incoming))
	for _, tx := range incoming {
		key, ok := Key(tx)
		if !ok {
			stats.InvalidNew++
			continue
		}
		if _, exists := newKeys[key]; exists {
			continue
		}
		newKeys[key] = struct{}{}
		if _, exists := seenKeys[key]; exists {
			continue
		}
		unseen = append(unseen, tx)
	}

	stats.Unseen = len(unseen)
	return unseen, stats
}

// Merge appends unique transactions from input to the history. Entries
// already in the history win collisions; keyless history rows are kept.
func Merge(history []models.Transaction, input []models.Transaction) ([]models.Transaction, MergeStats) {
	stats := MergeStats{
		TotalSeen:  len(history),
		TotalInput: len(input),
	}

	keys := make(map[string]struct{}, len(history)+len(input))
	out := make([]models.Transaction, 0, len(history)+len(input))

	for _, tx := range history {
		key, ok := Key(tx)
		if !ok {
			stats.InvalidSeen++
			out = append(out, tx)
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, tx)
	}

	for _, tx := range input {
		key, ok := Key(tx)
		if !ok {
			stats.InvalidInput++
			continue
		}
		if _, exists := keys[key]; exists {
			continue
		}
		keys[key] = struct{}{}
		out = append(out, tx)
		stats.Added++
	}

	stats.TotalOut = len(out)
	return out, stats
}
