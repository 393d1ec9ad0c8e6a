// Package gitlog reads commit history from local repositories.
package gitlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	appLog "daysheet/internal/log"
	"daysheet/internal/model"
)

const (
	sourceName   = "git"
	shortHashLen = 8
	fieldSep     = "|"
	logFormat    = "--pretty=format:%H|%an|%ae|%aI|%s"
	// boundLayout is RFC3339 with a numeric offset even in UTC.
	boundLayout = "2006-01-02T15:04:05-07:00"
	// maxParallel bounds concurrent git processes.
	maxParallel = 4
)

// ErrNotRepository is returned for a path without a .git entry.
var ErrNotRepository = errors.New("not a git repository")

// Commit is one parsed history line.
type Commit struct {
	Repository  string
	Hash        string
	ShortHash   string
	Author      string
	Email       string
	CommittedAt time.Time
	Message     string
}

// Label is the text shown in the day summary.
func (c Commit) Label() string {
	return c.Repository + " " + c.ShortHash + " " + c.Message
}

// Source reads the history of several repositories.
type Source struct {
	Repositories []string
	Author       string
	Zone         *time.Location
	Exec         Executor
}

func (s *Source) Name() string { return sourceName }

// Collect reads every repository concurrently. Any repository failure fails
// the whole source.
func (s *Source) Collect(ctx context.Context, p model.Period) (model.Batch, error) {
	exec := s.Exec
	if exec == nil {
		exec = NewExecutor()
	}

	type result struct {
		commits []Commit
		skipped int
	}
	results := make([]result, len(s.Repositories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, repo := range s.Repositories {
		i, repo := i, repo
		g.Go(func() error {
			commits, skipped, err := s.commits(gctx, exec, repo, p)
			if err != nil {
				return err
			}
			results[i] = result{commits: commits, skipped: skipped}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Batch{}, err
	}

	batch := model.Batch{Source: sourceName}
	for _, r := range results {
		batch.Skipped += r.skipped
		for _, c := range r.commits {
			batch.Events = append(batch.Events, model.RawEvent{
				Kind:  model.KindCommit,
				Label: c.Label(),
				At:    c.CommittedAt,
			})
		}
	}
	appLog.Info("git history read", "repositories", len(s.Repositories), "commits", len(batch.Events), "skipped", batch.Skipped)
	return batch, nil
}

func (s *Source) commits(ctx context.Context, exec Executor, repo string, p model.Period) ([]Commit, int, error) {
	if _, err := os.Stat(filepath.Join(repo, ".git")); err != nil {
		return nil, 0, fmt.Errorf("gitlog: %s: %w", repo, ErrNotRepository)
	}

	out, err := exec.RunInDir(ctx, repo, LogArgs(p, s.Author)...)
	if err != nil {
		var ee *ExecError
		if errors.As(err, &ee) && strings.Contains(ee.Stderr, "does not have any commits") {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("gitlog: %s: %w", repo, err)
	}

	zone := s.Zone
	if zone == nil {
		zone = time.Local
	}
	commits, skipped := ParseLog(out, repoName(repo), zone)
	return commits, skipped, nil
}

// LogArgs builds the git log invocation for a period. Both bounds are full
// instants with their offset: a bare date makes git substitute the current
// wall-clock time.
func LogArgs(p model.Period, author string) []string {
	args := []string{
		"log",
		"HEAD",
		logFormat,
		"--since=" + p.Start.Format(boundLayout),
		"--until=" + p.End.Format(boundLayout),
	}
	if author != "" {
		args = append(args, "--author="+author)
	}
	return args
}

// ParseLog parses the output of LogArgs. Malformed lines are logged and
// counted as skipped.
func ParseLog(out, repository string, zone *time.Location) ([]Commit, int) {
	var (
		commits []Commit
		skipped int
	)
	for n, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := parseLine(line, repository, zone)
		if err != nil {
			skipped++
			appLog.Error("git log line skipped", err, "repository", repository, "line", n+1)
			continue
		}
		commits = append(commits, c)
	}
	return commits, skipped
}

func parseLine(line, repository string, zone *time.Location) (Commit, error) {
	parts := strings.SplitN(line, fieldSep, 5)
	if len(parts) != 5 {
		return Commit{}, fmt.Errorf("expected 5 fields, got %d", len(parts))
	}
	hash, author, email, date, message := parts[0], parts[1], parts[2], parts[3], parts[4]

	at, err := time.Parse(time.RFC3339, strings.TrimSpace(date))
	if err != nil {
		return Commit{}, fmt.Errorf("commit date: %w", err)
	}

	short := hash
	if len(short) > shortHashLen {
		short = short[:shortHashLen]
	}
	return Commit{
		Repository:  repository,
		Hash:        hash,
		ShortHash:   short,
		Author:      author,
		Email:       email,
		CommittedAt: at.In(zone),
		Message:     strings.TrimSpace(message),
	}, nil
}

// repoName is the directory base name of the repository path.
func repoName(repo string) string {
	abs, err := filepath.Abs(repo)
	if err != nil {
		abs = repo
	}
	return filepath.Base(filepath.Clean(abs))
}
