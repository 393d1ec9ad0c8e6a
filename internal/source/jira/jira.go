// Package jira reads created issues from a Jira CSV export.
package jira

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	appLog "daysheet/internal/log"
	"daysheet/internal/model"
	"daysheet/internal/source"
)

const sourceName = "jira"

const (
	colKey     = "Issue key"
	colSummary = "Summary"
	colCreated = "Created"
)

// Jira exports "05/Mar/24 2:30 PM"; the day may lack its leading zero.
var createdLayouts = []string{
	"2/Jan/06 3:04 PM",
	"2006-01-02 15:04",
}

// Issue is one created issue.
type Issue struct {
	Key       string
	Summary   string
	CreatedAt time.Time
}

// Label is the text shown in the day summary.
func (i Issue) Label() string {
	return strings.TrimSpace(i.Key + " " + i.Summary)
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
		return model.Batch{}, fmt.Errorf("jira: %w", err)
	}
	defer f.Close()

	issues, skipped, err := Parse(f, s.Zone)
	if err != nil {
		return model.Batch{}, fmt.Errorf("jira: %s: %w", s.Path, err)
	}

	batch := model.Batch{Source: sourceName, Skipped: skipped, Events: make([]model.RawEvent, 0, len(issues))}
	for _, is := range issues {
		batch.Events = append(batch.Events, model.RawEvent{
			Kind:  model.KindIssue,
			Label: is.Label(),
			At:    is.CreatedAt,
		})
	}
	appLog.Info("jira export read", "path", s.Path, "issues", len(issues), "skipped", skipped)
	return batch, nil
}

// Parse reads every issue row. Rows with an unparseable creation date are
// logged and counted as skipped.
func Parse(in io.Reader, zone *time.Location) ([]Issue, int, error) {
	if zone == nil {
		zone = time.Local
	}
	r, err := source.NewCSVReader(in, colKey, colSummary, colCreated)
	if err != nil {
		return nil, 0, err
	}

	var (
		out     []Issue
		skipped int
	)
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			var created time.Time
			created, err = parseCreated(rec.Get(colCreated), zone)
			if err == nil {
				out = append(out, Issue{Key: rec.Get(colKey), Summary: rec.Get(colSummary), CreatedAt: created})
				continue
			}
		}
		skipped++
		appLog.Error("jira row skipped", err, "line", rec.Line)
	}
	return out, skipped, nil
}

func parseCreated(v string, zone *time.Location) (time.Time, error) {
	for _, l := range createdLayouts {
		if t, err := time.ParseInLocation(l, v, zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable Created %q", v)
}
