package model

import (
	"fmt"
	"time"
)

// Kind tags the source stream an event came from.
type Kind string

const (
	KindMail    Kind = "mail"
	KindMeeting Kind = "meeting"
	KindIssue   Kind = "issue"
	KindCommit  Kind = "commit"
)

// Kinds lists every kind in a stable order (used for metrics and logs).
var Kinds = []Kind{KindMail, KindMeeting, KindIssue, KindCommit}

// RawEvent is what an adapter hands to the core. All instants are already
// expressed in the reporting timezone.
//
// For mail/issue/commit, At is the occurrence instant and End is zero.
// For meetings, At is the explicit start and End the explicit end.
type RawEvent struct {
	Kind  Kind
	Label string
	At    time.Time
	End   time.Time
}

// Anchor returns the instant used both for the period filter and for
// deriving the anchor date. It is the occurrence instant for every kind, and
// the start instant for meetings.
func (e RawEvent) Anchor() time.Time {
	return e.At
}

// Batch is the output of one adapter pass.
type Batch struct {
	Source string
	Events []RawEvent
	// Skipped counts malformed input rows that were dropped with a diagnostic.
	Skipped int
	// Stale names inputs served from a cache the origin did not confirm.
	Stale []string
}

// TimedEvent is a RawEvent turned into a window on a single anchor date.
// Start and End are times of day paired with Date; Start may be numerically
// greater than End when the inferred start fell on the previous day.
type TimedEvent struct {
	Kind  Kind
	Date  Date
	Start Clock
	End   Clock
	Label string
}

// AllDay reports whether the event is a meeting carrying the all-day marker.
func (e TimedEvent) AllDay() bool {
	return e.Kind == KindMeeting && e.Start == e.End
}

// Bounds is a day's first/last activity estimate.
type Bounds struct {
	Start Clock
	End   Clock
}

// DayRecord is the per-date aggregate. Bounds is nil when the day had no
// qualifying activity.
type DayRecord struct {
	Date    Date
	Summary []string
	Bounds  *Bounds
}

// Year returns the calendar year of the record's date.
func (r DayRecord) Year() int { return r.Date.Year }

// ISOWeek returns the ISO 8601 week number of the record's date.
func (r DayRecord) ISOWeek() int {
	_, w := r.Date.Time(time.UTC).ISOWeek()
	return w
}

// Weekday returns the 3-letter English weekday abbreviation.
func (r DayRecord) Weekday() string {
	return r.Date.Time(time.UTC).Format("Mon")
}

// Period is the immutable reporting window. Start and End carry Zone.
type Period struct {
	Start time.Time
	End   time.Time
	Zone  *time.Location
}

// NewPeriod builds a Period, converting both bounds into zone.
func NewPeriod(start, end time.Time, zone *time.Location) (Period, error) {
	if zone == nil {
		return Period{}, fmt.Errorf("period: zone is nil")
	}
	start, end = start.In(zone), end.In(zone)
	if end.Before(start) {
		return Period{}, fmt.Errorf("period: end %s is before start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Period{Start: start, End: end, Zone: zone}, nil
}

// Contains reports whether t lies within [Start, End] inclusive.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// FirstDate and LastDate are the calendar dates of the bounds in Zone.
func (p Period) FirstDate() Date { return DateOf(p.Start.In(p.Zone)) }
func (p Period) LastDate() Date  { return DateOf(p.End.In(p.Zone)) }

// Days returns the number of calendar days covered by the period.
func (p Period) Days() int {
	n := 0
	for d := p.FirstDate(); !p.LastDate().Before(d); d = d.Next() {
		n++
	}
	return n
}
