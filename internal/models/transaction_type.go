package models

import (
	"fmt"
	"strings"
)

// TransactionType selects one of the search form's category checkboxes.
type TransactionType string

const (
	Disciplinary      TransactionType = "disciplinary"
	InjuredList       TransactionType = "injured-list"
	Injury            TransactionType = "injury"
	LegalIncident     TransactionType = "legal"
	MinorLeagueToFrom TransactionType = "minor-league"
	Movement          TransactionType = "movement"
	PersonalReason    TransactionType = "personal"
)

type checkbox struct {
	fallback string
	byLeague map[League]string
}

var checkboxes = map[TransactionType]checkbox{
	Disciplinary:      {fallback: "DisciplinaryChkBx"},
	InjuredList:       {fallback: "ILChkBx", byLeague: map[League]string{LeagueMLB: "DLChkBx"}},
	Injury:            {fallback: "InjuriesChkBx"},
	LegalIncident:     {fallback: "LegalChkBx"},
	MinorLeagueToFrom: {fallback: "NBADLChkBx", byLeague: map[League]string{LeagueMLB: "MinorsChkBx"}},
	Movement:          {fallback: "PlayerMovementChkBx"},
	PersonalReason:    {fallback: "PersonalChkBx"},
}

// TransactionTypes lists every transaction type.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		Disciplinary,
		InjuredList,
		Injury,
		LegalIncident,
		MinorLeagueToFrom,
		Movement,
		PersonalReason,
	}
}

// FormField returns the checkbox name the site expects for this type in league.
func (t TransactionType) FormField(league League) string {
	box, ok := checkboxes[t]
	if !ok {
		return ""
	}
	if name, ok := box.byLeague[league]; ok {
		return name
	}
	return box.fallback
}

// ParseTransactionTypes parses a comma-separated list. "all" selects every type.
func ParseTransactionTypes(raw string) ([]TransactionType, error) {
	var out []TransactionType
	seen := map[TransactionType]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if part == "all" {
			return TransactionTypes(), nil
		}
		typ := TransactionType(part)
		if _, ok := checkboxes[typ]; !ok {
			return nil, fmt.Errorf("unknown transaction type: %q", part)
		}
		if _, dup := seen[typ]; dup {
			continue
		}
		seen[typ] = struct{}{}
		out = append(out, typ)
	}
	return out, nil
}
