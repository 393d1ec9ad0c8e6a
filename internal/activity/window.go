// Package activity turns normalized events into one record per calendar day.
//
// The pipeline is Filter → Window → Aggregate → Complete → Rows. Every step
// is a pure function of its inputs and the immutable Options, except for the
// jitter anchors drawn through Rand during aggregation.
package activity

import (
	"time"

	"daysheet/internal/model"
)

// Options carries every tunable of the core. It is built once from config
// and never mutated during a run.
type Options struct {
	MailDraft      time.Duration
	IssueAuthoring time.Duration
	CommitWork     time.Duration

	WorkdayStart model.Clock
	WorkdayEnd   model.Clock
	Jitter       time.Duration

	// Zone is the report zone in which dates and times of day are read.
	// Nil keeps each event's own location.
	Zone *time.Location
}

// DefaultOptions mirrors the defaults of the configuration file.
func DefaultOptions() Options {
	return Options{
		MailDraft:      15 * time.Minute,
		IssueAuthoring: 30 * time.Minute,
		CommitWork:     120 * time.Minute,
		WorkdayStart:   model.NewClock(9, 0),
		WorkdayEnd:     model.NewClock(20, 0),
		Jitter:         15 * time.Minute,
	}
}

// FilterResult separates retained events from out-of-period ones.
type FilterResult struct {
	Kept    []model.RawEvent
	Dropped map[model.Kind]int
}

// Filter keeps events whose anchor instant lies in the period, inclusive.
// Dropped events are only counted.
func Filter(events []model.RawEvent, p model.Period) FilterResult {
	res := FilterResult{
		Kept:    make([]model.RawEvent, 0, len(events)),
		Dropped: make(map[model.Kind]int),
	}
	for _, ev := range events {
		if !p.Contains(ev.Anchor()) {
			res.Dropped[ev.Kind]++
			continue
		}
		res.Kept = append(res.Kept, ev)
	}
	return res
}

// Windower derives event windows using the configured offsets.
type Windower struct {
	opts Options
}

func NewWindower(opts Options) *Windower {
	return &Windower{opts: opts}
}

// Window converts one raw event. The anchor date is always taken from the
// observed instant (start for meetings), never from the inferred start, so
// an inferred start before midnight keeps the event on the end's date.
func (w *Windower) Window(ev model.RawEvent) model.TimedEvent {
	out := model.TimedEvent{Kind: ev.Kind, Label: ev.Label}
	if z := w.opts.Zone; z != nil {
		ev.At = ev.At.In(z)
		ev.End = ev.End.In(z)
	}

	if ev.Kind == model.KindMeeting {
		out.Date = model.DateOf(ev.At)
		out.Start = model.ClockOf(ev.At)
		out.End = model.ClockOf(ev.End)
		return out
	}

	out.Date = model.DateOf(ev.At)
	out.End = model.ClockOf(ev.At)
	out.Start = model.ClockOf(ev.At.Add(-w.offset(ev.Kind)))
	return out
}

// WindowAll converts a batch, preserving order.
func (w *Windower) WindowAll(events []model.RawEvent) []model.TimedEvent {
	out := make([]model.TimedEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, w.Window(ev))
	}
	return out
}

func (w *Windower) offset(k model.Kind) time.Duration {
	switch k {
	case model.KindMail:
		return w.opts.MailDraft
	case model.KindIssue:
		return w.opts.IssueAuthoring
	case model.KindCommit:
		return w.opts.CommitWork
	default:
		return 0
	}
}
