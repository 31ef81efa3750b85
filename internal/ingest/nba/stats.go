package nba

import (
	"fmt"
	"strconv"

	"github.com/fortuna/courtside/internal/ingest"
)

// Stat column headers in the leaguedashplayerstats result set. Rows are
// positional; the header list maps labels to indices so column reordering
// between API revisions does not break parsing.
const (
	headerPlayerID    = "PLAYER_ID"
	headerPlayerName  = "PLAYER_NAME"
	headerTeam        = "TEAM_ABBREVIATION"
	headerGamesPlayed = "GP"
	headerMinutes     = "MIN"
	headerPoints      = "PTS"
	headerRebounds    = "REB"
	headerAssists     = "AST"
	headerSteals      = "STL"
	headerBlocks      = "BLK"
	headerFGM         = "FGM"
	headerFG3M        = "FG3M"
	headerFTM         = "FTM"
	headerFGPct       = "FG_PCT"
	headerFG3Pct      = "FG3_PCT"
	headerFTPct       = "FT_PCT"
	headerTurnovers   = "TOV"
)

// PlayerLine is one player's raw per-game statistical line for a season.
type PlayerLine struct {
	PlayerID          int
	Name              string
	Team              string
	GamesPlayed       int
	Minutes           float64
	Points            float64
	Rebounds          float64
	Assists           float64
	Steals            float64
	Blocks            float64
	FieldGoalsMade    float64
	ThreePointersMade float64
	FreeThrowsMade    float64
	FieldGoalPct      float64
	ThreePointPct     float64
	FreeThrowPct      float64
	Turnovers         float64
}

// statsResponse mirrors the stats API envelope: named result sets holding
// a header list and positional row values.
type statsResponse struct {
	ResultSets []struct {
		Name    string          `json:"name"`
		Headers []string        `json:"headers"`
		RowSet  [][]interface{} `json:"rowSet"`
	} `json:"resultSets"`
}

// parseStatLines converts the first result set into typed lines. A row
// that cannot be parsed is skipped and counted, not fatal to the batch.
func parseStatLines(payload *statsResponse) ([]PlayerLine, *ingest.Diagnostics, error) {
	if len(payload.ResultSets) == 0 {
		return nil, nil, fmt.Errorf("no result sets in stats response")
	}

	set := payload.ResultSets[0]
	index := make(map[string]int, len(set.Headers))
	for i, header := range set.Headers {
		index[header] = i
	}
	for _, required := range []string{headerPlayerID, headerPlayerName, headerGamesPlayed} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("stats response missing %s column", required)
		}
	}

	diag := &ingest.Diagnostics{}
	lines := make([]PlayerLine, 0, len(set.RowSet))
	for _, row := range set.RowSet {
		cell := func(header string) interface{} {
			if idx, ok := index[header]; ok && idx < len(row) {
				return row[idx]
			}
			return nil
		}

		name := cellString(cell(headerPlayerName))
		if name == "" {
			diag.Skip("missing player name")
			continue
		}
		playerID := cellInt(cell(headerPlayerID))
		if playerID == 0 {
			diag.Skip("missing player id")
			continue
		}

		lines = append(lines, PlayerLine{
			PlayerID:          playerID,
			Name:              name,
			Team:              cellString(cell(headerTeam)),
			GamesPlayed:       cellInt(cell(headerGamesPlayed)),
			Minutes:           cellFloat(cell(headerMinutes)),
			Points:            cellFloat(cell(headerPoints)),
			Rebounds:          cellFloat(cell(headerRebounds)),
			Assists:           cellFloat(cell(headerAssists)),
			Steals:            cellFloat(cell(headerSteals)),
			Blocks:            cellFloat(cell(headerBlocks)),
			FieldGoalsMade:    cellFloat(cell(headerFGM)),
			ThreePointersMade: cellFloat(cell(headerFG3M)),
			FreeThrowsMade:    cellFloat(cell(headerFTM)),
			FieldGoalPct:      cellFloat(cell(headerFGPct)),
			ThreePointPct:     cellFloat(cell(headerFG3Pct)),
			FreeThrowPct:      cellFloat(cell(headerFTPct)),
			Turnovers:         cellFloat(cell(headerTurnovers)),
		})
	}

	return lines, diag, nil
}

func cellString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func cellInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case string:
		i, _ := strconv.Atoi(val)
		return i
	case int:
		return val
	default:
		return 0
	}
}

func cellFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	case int:
		return float64(val)
	default:
		return 0
	}
}
