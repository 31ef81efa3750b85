package espn

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/fortuna/courtside/internal/names"
)

// TeamIDs maps the 30 NBA franchise abbreviations to ESPN team identifiers.
// Compiled-in: franchises change slower than this codebase.
var TeamIDs = map[string]int{
	"ATL": 1, "BOS": 2, "BKN": 17, "CHA": 30, "CHI": 4, "CLE": 5,
	"DAL": 6, "DEN": 7, "DET": 8, "GSW": 9, "HOU": 10, "IND": 11,
	"LAC": 12, "LAL": 13, "MEM": 29, "MIA": 14, "MIL": 15, "MIN": 16,
	"NOP": 3, "NYK": 18, "OKC": 25, "ORL": 19, "PHI": 20, "PHX": 21,
	"POR": 22, "SAC": 23, "SAS": 24, "TOR": 28, "UTA": 26, "WAS": 27,
}

// rosterConcurrency bounds in-flight roster requests so the fan-out does
// not trip ESPN's rate limits.
const rosterConcurrency = 10

// PlayerBio holds one player's biographical attributes from a team roster.
type PlayerBio struct {
	Position     string `json:"position"`
	Height       string `json:"height"`
	Weight       string `json:"weight"`
	Jersey       string `json:"jersey"`
	Age          string `json:"age"`
	BirthDate    string `json:"birthdate"`
	BirthPlace   string `json:"birthplace"`
	College      string `json:"college"`
	Team         string `json:"team"`
	OriginalName string `json:"original_name"`
}

// BioDirectory indexes player bios by exact display name and by normalized
// name. Two separate maps keep a raw name from colliding with another
// player's normalized form.
type BioDirectory struct {
	ByName       map[string]PlayerBio `json:"by_name"`
	ByNormalized map[string]PlayerBio `json:"by_normalized"`
}

// Lookup finds a bio by exact name, falling back to the normalized index.
func (d BioDirectory) Lookup(name string) (PlayerBio, bool) {
	if bio, ok := d.ByName[name]; ok {
		return bio, true
	}
	bio, ok := d.ByNormalized[names.Normalize(name)]
	return bio, ok
}

// Size returns the number of distinct players indexed.
func (d BioDirectory) Size() int {
	return len(d.ByName)
}

// FetchBios retrieves every franchise roster concurrently, at most
// rosterConcurrency requests in flight. A single team's failure degrades to
// an empty contribution for that team and never aborts the other requests.
// Bios are a supplementary source, so the directory may be partial or empty.
func (c *Client) FetchBios(ctx context.Context) (BioDirectory, error) {
	start := time.Now()

	dir := BioDirectory{
		ByName:       make(map[string]PlayerBio),
		ByNormalized: make(map[string]PlayerBio),
	}

	sem := semaphore.NewWeighted(rosterConcurrency)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for abbr, teamID := range TeamIDs {
		wg.Add(1)
		go func(abbr string, teamID int) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			bios, err := c.fetchTeamRoster(ctx, abbr, teamID)
			if err != nil {
				log.Printf("[espn-roster] %s roster failed, skipping team: %v", abbr, err)
				return
			}

			mu.Lock()
			for _, bio := range bios {
				dir.ByName[bio.OriginalName] = bio
				dir.ByNormalized[names.Normalize(bio.OriginalName)] = bio
			}
			mu.Unlock()
		}(abbr, teamID)
	}
	wg.Wait()

	log.Printf("[espn-roster] fetched %d player bios in %.2fs", dir.Size(), time.Since(start).Seconds())
	return dir, nil
}

func (c *Client) fetchTeamRoster(ctx context.Context, abbr string, teamID int) ([]PlayerBio, error) {
	url := fmt.Sprintf("%s/%s/teams/%d/roster", c.baseURL, basketballNBA, teamID)
	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var bios []PlayerBio
	for _, athleteVal := range extractArray(data, "athletes") {
		athlete, ok := athleteVal.(map[string]interface{})
		if !ok {
			continue
		}
		name := extractString(athlete, "displayName")
		if name == "" {
			continue
		}
		bios = append(bios, parseAthleteBio(athlete, abbr, name))
	}
	return bios, nil
}

// parseAthleteBio extracts bio fields from a roster entry. Position,
// birthplace, and college arrive as either a nested object or a bare
// scalar depending on the entry.
func parseAthleteBio(athlete map[string]interface{}, teamAbbr, name string) PlayerBio {
	bio := PlayerBio{
		Team:         teamAbbr,
		OriginalName: name,
		Height:       strings.ReplaceAll(extractString(athlete, "displayHeight"), "' ", "'"),
		Weight:       extractString(athlete, "displayWeight"),
		Jersey:       stringify(athlete["jersey"]),
		Age:          stringify(athlete["age"]),
		BirthDate:    extractString(athlete, "birthDate"),
	}

	switch pos := athlete["position"].(type) {
	case map[string]interface{}:
		bio.Position = extractString(pos, "abbreviation")
	case string:
		bio.Position = pos
	}

	switch place := athlete["birthPlace"].(type) {
	case map[string]interface{}:
		var parts []string
		for _, key := range []string{"city", "state", "country"} {
			if v := extractString(place, key); v != "" {
				parts = append(parts, v)
			}
		}
		bio.BirthPlace = strings.Join(parts, ", ")
	case string:
		bio.BirthPlace = place
	}

	switch college := athlete["college"].(type) {
	case map[string]interface{}:
		bio.College = extractString(college, "name")
	case string:
		bio.College = college
	}

	return bio
}
