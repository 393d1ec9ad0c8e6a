// Package outlook reads meetings from an Outlook calendar CSV export.
package outlook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	appLog "daysheet/internal/log"
	"daysheet/internal/model"
	"daysheet/internal/source"
)

const sourceName = "outlook"

const (
	colSubject   = "Subject"
	colStartDate = "Start Date"
	colEndDate   = "End Date"
	colStartTime = "Start Time"
	colEndTime   = "End Time"

	// Outlook writes M/D/YYYY and h:mm:ss AM/PM.
	layout = "1/2/2006 3:04:05 PM"
)

// Meeting is one calendar entry.
type Meeting struct {
	Subject string
	Start   time.Time
	End     time.Time
}

// Source reads a CSV export file.
type Source struct {
	Path string
	Zone *time.Location
}

func (s *Source) Name() string { return sourceName }

func (s *Source) Collect(_ context.Context, _ model.Period) (model.Batch, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return model.Batch{}, fmt.Errorf("outlook: %w", err)
	}
	defer f.Close()

	meetings, skipped, err := Parse(f, s.Zone)
	if err != nil {
		return model.Batch{}, fmt.Errorf("outlook: %s: %w", s.Path, err)
	}

	batch := model.Batch{Source: sourceName, Skipped: skipped, Events: make([]model.RawEvent, 0, len(meetings))}
	for _, m := range meetings {
		batch.Events = append(batch.Events, model.RawEvent{
			Kind:  model.KindMeeting,
			Label: m.Subject,
			At:    m.Start,
			End:   m.End,
		})
	}
	appLog.Info("outlook calendar read", "path", s.Path, "meetings", len(meetings), "skipped", skipped)
	return batch, nil
}

// Parse reads every meeting row. Rows with unparseable dates are logged and
// counted as skipped.
func Parse(in io.Reader, zone *time.Location) ([]Meeting, int, error) {
	if zone == nil {
		zone = time.Local
	}
	r, err := source.NewCSVReader(in, colSubject, colStartDate, colEndDate, colStartTime, colEndTime)
	if err != nil {
		return nil, 0, err
	}

	var (
		out     []Meeting
		skipped int
	)
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			appLog.Error("outlook row skipped", err, "line", rec.Line)
			continue
		}

		m, err := parseRow(rec, zone)
		if err != nil {
			skipped++
			appLog.Error("outlook row skipped", err, "line", rec.Line)
			continue
		}
		out = append(out, m)
	}
	return out, skipped, nil
}

func parseRow(rec source.Record, zone *time.Location) (Meeting, error) {
	start, err := time.ParseInLocation(layout, rec.Get(colStartDate)+" "+rec.Get(colStartTime), zone)
	if err != nil {
		return Meeting{}, fmt.Errorf("start: %w", err)
	}
	end, err := time.ParseInLocation(layout, rec.Get(colEndDate)+" "+rec.Get(colEndTime), zone)
	if err != nil {
		return Meeting{}, fmt.Errorf("end: %w", err)
	}
	return Meeting{Subject: rec.Get(colSubject), Start: start, End: end}, nil
}
