// Package ics reads meetings from iCalendar files and subscriptions.
package ics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	appLog "daysheet/internal/log"
	"daysheet/internal/model"
)

const sourceName = "ics"

// Source collects meeting occurrences from a set of feeds.
type Source struct {
	Feeds    []Feed
	CacheDir string
	Zone     *time.Location
	// Client overrides the HTTP client used for remote feeds.
	Client *http.Client
	// AllowStale lets a failed remote fetch fall back to the cached body.
	AllowStale bool
}

func (s *Source) Name() string { return sourceName }

// Collect fetches, parses and expands every feed. A feed that cannot be
// fetched or parsed fails the source.
func (s *Source) Collect(ctx context.Context, p model.Period) (model.Batch, error) {
	zone := s.Zone
	if zone == nil {
		zone = p.Zone
	}
	fetcher := NewFetcher(s.CacheDir, s.Client)
	fetcher.AllowStale = s.AllowStale
	batch := model.Batch{Source: sourceName}

	for _, feed := range s.Feeds {
		res, err := fetcher.Fetch(ctx, feed)
		if err != nil {
			return model.Batch{}, fmt.Errorf("ics: fetch %s: %w", feed.ID, err)
		}
		events, skipped, err := Parse(feed, res.Body, zone)
		if err != nil {
			return model.Batch{}, fmt.Errorf("ics: parse %s: %w", feed.ID, err)
		}
		occs, err := Expand(events, ExpandConfig{Zone: zone, RangeStart: p.Start, RangeEnd: p.End})
		if err != nil {
			return model.Batch{}, fmt.Errorf("ics: expand %s: %w", feed.ID, err)
		}

		batch.Skipped += skipped
		if res.Stale {
			batch.Stale = append(batch.Stale, feed.ID)
		}
		for _, o := range occs {
			batch.Events = append(batch.Events, model.RawEvent{
				Kind:  model.KindMeeting,
				Label: o.Summary,
				At:    o.Start,
				End:   o.End,
			})
		}
		appLog.Info("ics feed read", "id", feed.ID, "from_cache", res.FromCache, "stale", res.Stale, "occurrences", len(occs), "skipped", skipped)
	}
	return batch, nil
}
