// Package ingest holds shared plumbing for the upstream data fetchers.
package ingest

import (
	"fmt"
	"sort"
	"strings"
)

// Diagnostics counts records skipped during a parse pass, keyed by reason.
// Parsers skip malformed records instead of failing the batch; the counts
// make that visible to logs and tests instead of silent swallowing.
type Diagnostics struct {
	skipped map[string]int
}

// Skip records one skipped record for a reason.
func (d *Diagnostics) Skip(reason string) {
	if d.skipped == nil {
		d.skipped = make(map[string]int)
	}
	d.skipped[reason]++
}

// Skipped returns how many records were skipped for a reason.
func (d *Diagnostics) Skipped(reason string) int {
	return d.skipped[reason]
}

// Total returns the number of skipped records across all reasons.
func (d *Diagnostics) Total() int {
	total := 0
	for _, n := range d.skipped {
		total += n
	}
	return total
}

func (d *Diagnostics) String() string {
	if d.Total() == 0 {
		return "no records skipped"
	}

	reasons := make([]string, 0, len(d.skipped))
	for reason := range d.skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", reason, d.skipped[reason]))
	}
	return fmt.Sprintf("%d skipped: %s", d.Total(), strings.Join(parts, ", "))
}
