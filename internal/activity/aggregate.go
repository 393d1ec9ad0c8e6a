package activity

import (
	"sort"
	"strings"
	"unicode"

	"daysheet/internal/model"
)

// kindLabels are the prefixes used in summary lines.
var kindLabels = map[model.Kind]string{
	model.KindMail:    "Mail",
	model.KindMeeting: "Réunion",
	model.KindIssue:   "issue",
	model.KindCommit:  "commits",
}

// Aggregator groups timed events by anchor date.
type Aggregator struct {
	opts Options
	est  *Estimator
}

// NewAggregator builds an aggregator drawing jitter anchors from est.
func NewAggregator(opts Options, est *Estimator) *Aggregator {
	if est == nil {
		est = NewEstimator(nil)
	}
	return &Aggregator{opts: opts, est: est}
}

// Aggregate returns one record per date that has at least one event, sorted
// by date. Jitter anchors are drawn in date order, start anchor first, so a
// recorded Rand gives reproducible output.
func (a *Aggregator) Aggregate(events []model.TimedEvent) []model.DayRecord {
	byDate := make(map[model.Date][]model.TimedEvent)
	for _, ev := range events {
		byDate[ev.Date] = append(byDate[ev.Date], ev)
	}

	dates := make([]model.Date, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]model.DayRecord, 0, len(dates))
	for _, d := range dates {
		out = append(out, a.day(d, byDate[d]))
	}
	return out
}

func (a *Aggregator) day(d model.Date, events []model.TimedEvent) model.DayRecord {
	rec := model.DayRecord{Date: d, Summary: make([]string, 0, len(events))}

	times := make([]model.Clock, 0, 2*len(events)+2)
	for _, ev := range events {
		rec.Summary = append(rec.Summary, SummaryLine(ev))
		if ev.AllDay() {
			continue
		}
		times = append(times, ev.Start, ev.End)
	}
	sort.Strings(rec.Summary)

	if len(times) == 0 {
		return rec
	}
	times = append(times,
		a.est.Around(a.opts.WorkdayStart, a.opts.Jitter),
		a.est.Around(a.opts.WorkdayEnd, a.opts.Jitter),
	)

	b := model.Bounds{Start: times[0], End: times[0]}
	for _, t := range times[1:] {
		if t < b.Start {
			b.Start = t
		}
		if t > b.End {
			b.End = t
		}
	}
	rec.Bounds = &b
	return rec
}

// SummaryLine renders one event as it appears in the Résumé column.
func SummaryLine(ev model.TimedEvent) string {
	label := StripControl(ev.Label)
	if ev.Kind == model.KindMeeting {
		return ev.Start.String() + "-" + ev.End.String() + " " + kindLabels[ev.Kind] + ": " + label
	}
	return ev.End.String() + " " + kindLabelOf(ev.Kind) + ": " + label
}

func kindLabelOf(k model.Kind) string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// StripControl removes control characters such as newlines and tabs.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
