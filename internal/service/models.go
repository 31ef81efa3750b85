package service

// Player is the unified per-player record served to the front end: the raw
// per-game stat line unioned with matched injury and bio attributes. Field
// names match the payload the ranking UI consumes.
type Player struct {
	PlayerID          int     `json:"player_id"`
	Name              string  `json:"name"`
	Team              string  `json:"team"`
	GamesPlayed       int     `json:"games_played"`
	Minutes           float64 `json:"minutes"`
	Points            float64 `json:"points"`
	Rebounds          float64 `json:"rebounds"`
	Assists           float64 `json:"assists"`
	Steals            float64 `json:"steals"`
	Blocks            float64 `json:"blocks"`
	FieldGoalsMade    float64 `json:"fgm"`
	ThreePointersMade float64 `json:"fg3m"`
	FreeThrowsMade    float64 `json:"ftm"`
	FieldGoalPct      float64 `json:"fg_pct"`
	ThreePointPct     float64 `json:"fg3_pct"`
	FreeThrowPct      float64 `json:"ft_pct"`
	Turnovers         float64 `json:"turnovers"`

	// Injury fields default to a healthy player; type and timeline stay
	// null when no injury is known.
	InjuryStatus   string  `json:"injury_status"`
	InjuryType     *string `json:"injury_type"`
	InjuryTimeline *string `json:"injury_timeline"`

	// Bio fields default to empty strings when no roster entry matched.
	Position   string `json:"position"`
	Height     string `json:"height"`
	Weight     string `json:"weight"`
	Jersey     string `json:"jersey"`
	Age        string `json:"age"`
	BirthDate  string `json:"birthdate"`
	BirthPlace string `json:"birthplace"`
	College    string `json:"college"`
}

// PlayersResult is the complete merged player collection for one season.
// It is built in memory as a whole; there is no streaming or pagination.
type PlayersResult struct {
	Players       []Player `json:"players"`
	TotalCount    int      `json:"total_count"`
	StatsSeason   string   `json:"stats_season"`
	CurrentSeason string   `json:"current_season,omitempty"`
	Description   string   `json:"description"`
}
