package activity

import (
	"sort"

	"daysheet/internal/model"
)

// Complete fills every calendar date of p that has no record with an empty
// one and returns the merged set sorted by date. Existing records are kept
// as-is, and a date already present is never inserted twice, so running
// Complete on its own output returns an equal sequence.
func Complete(records []model.DayRecord, p model.Period) []model.DayRecord {
	seen := make(map[model.Date]bool, len(records))
	out := make([]model.DayRecord, 0, len(records)+p.Days())
	for _, r := range records {
		if seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		out = append(out, r)
	}

	last := p.LastDate()
	for d := p.FirstDate(); !last.Before(d); d = d.Next() {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, model.DayRecord{Date: d, Summary: []string{}})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
