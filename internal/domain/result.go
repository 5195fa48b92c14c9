package domain

import (
	"strconv"
	"strings"
)

// SetScore is one parsed "games-games" token, home side first.
type SetScore struct {
	Home int
	Away int
}

func (s SetScore) Winner() string {
	switch {
	case s.Home > s.Away:
		return "home"
	case s.Away > s.Home:
		return "away"
	default:
		return ""
	}
}

// ParseResult tokenizes a whitespace-separated result string such as
// "6-4 6-3". Malformed tokens are skipped rather than failing the whole
// parse; validation of set counts is the caller's concern.
func ParseResult(result string) []SetScore {
	var sets []SetScore
	for _, token := range strings.Fields(result) {
		parts := strings.SplitN(token, "-", 2)
		if len(parts) != 2 {
			continue
		}
		home, err := strconv.Atoi(parts[0])
		if err != nil || home < 0 {
			continue
		}
		away, err := strconv.Atoi(parts[1])
		if err != nil || away < 0 {
			continue
		}
		sets = append(sets, SetScore{Home: home, Away: away})
	}
	return sets
}

// CountSets tallies sets won per side, ignoring drawn tokens.
func CountSets(sets []SetScore) (home, away int) {
	for _, s := range sets {
		switch s.Winner() {
		case "home":
			home++
		case "away":
			away++
		}
	}
	return home, away
}

// GameDifferential is the total games margin from the home side's view.
func GameDifferential(sets []SetScore) int {
	diff := 0
	for _, s := range sets {
		diff += s.Home - s.Away
	}
	return diff
}
