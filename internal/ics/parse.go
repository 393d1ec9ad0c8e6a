package ics

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "daysheet/internal/log"
)

const dateLayout = "20060102"

// ParsedEvent is a VEVENT before recurrence expansion.
type ParsedEvent struct {
	Feed Feed

	UID string
	Seq int

	Summary string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID
	IsOverride bool
}

// Parse reads every VEVENT of a payload. Dates without a TZID and all-day
// dates are interpreted in zone. The second result counts skipped VEVENTs.
func Parse(feed Feed, body []byte, zone *time.Location) ([]ParsedEvent, int, error) {
	if len(body) == 0 {
		return nil, 0, errors.New("empty ICS body")
	}
	if zone == nil {
		zone = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}

	var (
		events  []ParsedEvent
		skipped int
	)
	for _, comp := range cal.Events() {
		ev, err := parseVEvent(feed, comp, zone)
		if err != nil {
			skipped++
			appLog.Error("ics vevent skipped", err, "id", feed.ID)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "id", feed.ID, "events", len(events), "skipped", skipped)
	return events, skipped, nil
}

func parseVEvent(feed Feed, ve *ical.VEvent, zone *time.Location) (ParsedEvent, error) {
	out := ParsedEvent{Feed: feed}

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySequence); p != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(p.Value)); err == nil {
			out.Seq = n
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtStart)

	if out.AllDay {
		start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(dtStart.Value), zone)
		if err != nil {
			return out, err
		}
		out.Start = start
		out.End = start.AddDate(0, 0, 1)
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			if end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(p.Value), zone); err == nil && end.After(start) {
				out.End = end
			}
		}
	} else {
		start, err := propTime(dtStart, zone)
		if err != nil {
			return out, err
		}
		out.Start = start
		out.End = start
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			end, err := propTime(p, zone)
			if err != nil {
				return out, err
			}
			out.End = end
		} else if p := ve.GetProperty("DURATION"); p != nil {
			d, err := parseDuration(p.Value)
			if err != nil {
				return out, err
			}
			out.End = start.Add(d)
		}
		if out.End.Before(out.Start) {
			return out, errors.New("DTEND before DTSTART")
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, paramTZ(p, zone)); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseICSTime(p.Value, paramTZ(p, zone)); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// paramTZ resolves a TZID parameter, falling back to zone.
func paramTZ(p *ical.IANAProperty, zone *time.Location) *time.Location {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		if loc, err := time.LoadLocation(strings.Trim(tzs[0], `"`)); err == nil {
			return loc
		}
	}
	return zone
}

func propTime(p *ical.IANAProperty, zone *time.Location) (time.Time, error) {
	return parseICSTime(p.Value, paramTZ(p, zone))
}

// parseICSTime accepts UTC, floating and date-only forms.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation(dateLayout, v, loc)
	}
}

// parseDuration handles the RFC 5545 dur-value subset used by calendar
// clients: [+-]P[nW][nD][T[nH][nM][nS]].
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	sign := time.Duration(1)
	if strings.HasPrefix(v, "-") {
		sign = -1
	}
	v = strings.TrimLeft(v, "+-")
	if !strings.HasPrefix(v, "P") {
		return 0, errors.New("invalid duration " + strconv.Quote(v))
	}
	v = v[1:]
	if v == "" || v == "T" {
		return 0, errors.New("empty duration")
	}

	var (
		total  time.Duration
		inTime bool
		num    int
		digits bool
	)
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			digits = true
			continue
		case r == 'T':
			inTime = true
			continue
		}
		if !digits {
			return 0, errors.New("invalid duration " + strconv.Quote(v))
		}
		n := time.Duration(num)
		switch {
		case r == 'W' && !inTime:
			total += n * 7 * 24 * time.Hour
		case r == 'D' && !inTime:
			total += n * 24 * time.Hour
		case r == 'H' && inTime:
			total += n * time.Hour
		case r == 'M' && inTime:
			total += n * time.Minute
		case r == 'S' && inTime:
			total += n * time.Second
		default:
			return 0, errors.New("invalid duration " + strconv.Quote(v))
		}
		num, digits = 0, false
	}
	if digits {
		return 0, errors.New("invalid duration " + strconv.Quote(v))
	}
	return sign * total, nil
}
