package report

import (
	"time"

	"daysheet/internal/config"
	"daysheet/internal/ics"
	appLog "daysheet/internal/log"
	"daysheet/internal/source"
	"daysheet/internal/source/gitlog"
	"daysheet/internal/source/jira"
	"daysheet/internal/source/mailbox"
	"daysheet/internal/source/outlook"
)

// Sources builds an adapter for every configured input. Unconfigured inputs
// are skipped. A nil exec uses the git binary.
func Sources(cfg *config.Config, zone *time.Location, exec gitlog.Executor) []source.Source {
	var out []source.Source
	s := cfg.Sources

	if s.Mail.Archive != "" {
		out = append(out, &mailbox.Source{Root: s.Mail.Archive, SentFolders: s.Mail.SentFolders, Zone: zone})
	} else {
		appLog.Info("source not configured, skipping", "source", "mail")
	}

	if s.Calendar.CSV != "" {
		out = append(out, &outlook.Source{Path: s.Calendar.CSV, Zone: zone})
	} else {
		appLog.Info("source not configured, skipping", "source", "outlook")
	}

	if len(s.Calendar.ICS) > 0 {
		feeds := make([]ics.Feed, 0, len(s.Calendar.ICS))
		for _, c := range s.Calendar.ICS {
			feeds = append(feeds, ics.Feed{ID: c.ID, URL: c.URL})
		}
		out = append(out, &ics.Source{
			Feeds:      feeds,
			CacheDir:   cfg.CacheDir,
			Zone:       zone,
			AllowStale: s.Calendar.ICSStaleFallback,
		})
	} else {
		appLog.Info("source not configured, skipping", "source", "ics")
	}

	if s.Issues.CSV != "" {
		out = append(out, &jira.Source{Path: s.Issues.CSV, Zone: zone})
	} else {
		appLog.Info("source not configured, skipping", "source", "jira")
	}

	if len(s.Git.Repositories) > 0 {
		out = append(out, &gitlog.Source{Repositories: s.Git.Repositories, Author: s.Git.Author, Zone: zone, Exec: exec})
	} else {
		appLog.Info("source not configured, skipping", "source", "git")
	}

	return out
}
