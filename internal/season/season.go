package season

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window pairs the active fantasy season with the season statistics are
// drawn from. Both use the league's "YYYY-YY" identifier format.
type Window struct {
	CurrentSeason string `json:"current_season,omitempty"`
	StatsSeason   string `json:"stats_season"`
	Description   string `json:"description"`
}

// Current resolves the season window from the wall clock.
func Current() Window {
	return At(time.Now())
}

// At derives the season window for a given date. NBA seasons run October
// through June: from October onward the season starting this year is active,
// January through June the season started last year, and during the July to
// September offseason the most recently completed season serves as the stats
// source since no games are in progress.
func At(now time.Time) Window {
	startYear := now.Year()
	if now.Month() < time.October {
		startYear--
	}

	id := Label(startYear)
	return Window{
		CurrentSeason: id,
		StatsSeason:   id,
		Description:   fmt.Sprintf("Fantasy rankings for %s season", id),
	}
}

// Prior resolves the window for the season before the active one.
func Prior() Window {
	return PriorAt(time.Now())
}

// PriorAt derives the prior season window by decrementing the active
// season's start year.
func PriorAt(now time.Time) Window {
	id := Label(StartYear(At(now).StatsSeason) - 1)
	return Window{
		StatsSeason: id,
		Description: fmt.Sprintf("Historical fantasy rankings for %s season", id),
	}
}

// Historical builds a window for a caller-supplied season identifier.
func Historical(seasonID string) Window {
	return Window{
		StatsSeason: seasonID,
		Description: fmt.Sprintf("Historical fantasy rankings for %s season", seasonID),
	}
}

// Label formats a season identifier like "2024-25" from its start year.
func Label(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// StartYear parses the start year out of a "YYYY-YY" identifier.
func StartYear(seasonID string) int {
	y, _ := strconv.Atoi(strings.SplitN(seasonID, "-", 2)[0])
	return y
}
