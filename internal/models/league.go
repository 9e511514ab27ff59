package models

import (
	"fmt"
	"strings"
)

// League is the path segment the site uses for a league's search pages.
type League string

const (
	LeagueMLB League = "baseball"
	LeagueNBA League = "basketball"
	LeagueNFL League = "football"
	LeagueNHL League = "hockey"
	LeagueMLS League = "soccer"
)

var leagueCodes = map[League]string{
	LeagueMLB: "MLB",
	LeagueNBA: "NBA",
	LeagueNFL: "NFL",
	LeagueNHL: "NHL",
	LeagueMLS: "MLS",
}

// Leagues lists every supported league in a stable order.
func Leagues() []League {
	return []League{LeagueMLB, LeagueNBA, LeagueNFL, LeagueNHL, LeagueMLS}
}

// Code returns the short league name, e.g. "NBA".
func (l League) Code() string {
	return leagueCodes[l]
}

// ParseLeague accepts either the league code ("nba") or the sport ("basketball").
func ParseLeague(value string) (League, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, league := range Leagues() {
		if value == string(league) || value == strings.ToLower(league.Code()) {
			return league, nil
		}
	}
	return "", fmt.Errorf("unknown league: %q", value)
}
