package espn

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/ingest"
)

// InjuryReport describes one player's current injury designation. Absence
// of a player from the injury map means "no known injury", not an error.
type InjuryReport struct {
	Status     string `json:"status"`
	Injury     string `json:"injury"`
	Timeline   string `json:"timeline"`
	ReturnDate string `json:"return_date,omitempty"`
	Team       string `json:"team"`
}

// FetchInjuries pulls the league-wide injury feed, keyed by raw display
// name. Injuries are a supplementary source: any transport or parse failure
// degrades to an empty map, and callers must treat empty as "no injury data
// available" rather than "no players are injured".
func (c *Client) FetchInjuries(ctx context.Context) (map[string]InjuryReport, error) {
	start := time.Now()

	url := fmt.Sprintf("%s/%s/injuries", c.baseURL, basketballNBA)
	data, err := c.get(ctx, url)
	if err != nil {
		log.Printf("[espn-injuries] fetch failed, continuing without injury data: %v", err)
		return map[string]InjuryReport{}, nil
	}

	reports, diag := parseInjuries(data, time.Now())
	log.Printf("[espn-injuries] fetched %d injuries in %.2fs (%s)", len(reports), time.Since(start).Seconds(), diag)
	return reports, nil
}

// parseInjuries walks the feed's nested structure: a list of team groups,
// each holding a list of injuries, each referencing an athlete.
func parseInjuries(data map[string]interface{}, now time.Time) (map[string]InjuryReport, *ingest.Diagnostics) {
	reports := make(map[string]InjuryReport)
	diag := &ingest.Diagnostics{}

	for _, groupVal := range extractArray(data, "injuries") {
		group, ok := groupVal.(map[string]interface{})
		if !ok {
			diag.Skip("malformed team group")
			continue
		}

		for _, entryVal := range extractArray(group, "injuries") {
			entry, ok := entryVal.(map[string]interface{})
			if !ok {
				diag.Skip("malformed injury entry")
				continue
			}

			athlete := extractMap(entry, "athlete")
			name := extractString(athlete, "displayName")
			status := extractString(entry, "status")
			if name == "" || status == "" {
				diag.Skip("missing name or status")
				continue
			}

			// Absence implies health, so healthy designations are dropped.
			if strings.EqualFold(status, "healthy") {
				diag.Skip("healthy")
				continue
			}

			details := extractMap(entry, "details")
			returnDate := extractString(details, "returnDate")

			team := "Unknown"
			if abbr := extractString(extractMap(athlete, "team"), "abbreviation"); abbr != "" {
				team = abbr
			}

			reports[name] = InjuryReport{
				Status:     status,
				Injury:     injuryDescription(details),
				Timeline:   returnTimeline(returnDate, now),
				ReturnDate: returnDate,
				Team:       team,
			}
		}
	}

	return reports, diag
}

// injuryDescription concatenates the injury type, an optional detail
// qualifier when it differs from the type, and the body side unless the
// feed marks it unspecified.
func injuryDescription(details map[string]interface{}) string {
	injuryType := extractString(details, "type")
	if injuryType == "" {
		injuryType = "Unknown"
	}

	desc := injuryType
	if detail := extractString(details, "detail"); detail != "" && detail != injuryType {
		desc += fmt.Sprintf(" (%s)", detail)
	}
	if side := extractString(details, "side"); side != "" && side != "Not Specified" {
		desc += " - " + side
	}
	return desc
}

// returnTimeline buckets a provider return date into a coarse estimate:
// under 30 days in days, under a year in whole months, otherwise long-term.
// A date already in the past reports the player as expected back.
func returnTimeline(returnDate string, now time.Time) string {
	if returnDate == "" {
		return ""
	}

	ret, err := parseReturnDate(returnDate)
	if err != nil {
		return ""
	}

	if !ret.After(now) {
		return "Expected back"
	}

	days := int(ret.Sub(now).Hours() / 24)
	switch {
	case days < 30:
		return fmt.Sprintf("%d days", days)
	case days < 365:
		months := days / 30
		if months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	default:
		return "Long-term"
	}
}

// parseReturnDate accepts the timestamp shapes the feed has been seen to
// use, including dates without a time component.
func parseReturnDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized return date %q", s)
}
