// Package report runs the whole pipeline: collect every source, build the
// daily records and write them out.
package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"daysheet/internal/activity"
	"daysheet/internal/capture"
	"daysheet/internal/config"
	appLog "daysheet/internal/log"
	"daysheet/internal/metrics"
	"daysheet/internal/model"
	"daysheet/internal/sheet"
	"daysheet/internal/source"
	"daysheet/internal/source/gitlog"
)

// Result summarises one run.
type Result struct {
	RunID      string
	Days       int
	ActiveDays int
	Events     int // events kept inside the period
	Skipped    int // malformed input rows over all sources
	// Stale lists "<source>/<input>" entries served from an unconfirmed cache.
	Stale  []string
	Output string
}

// CaptureFunc renders the preview PNG.
type CaptureFunc func(ctx context.Context, opts capture.Options) error

// Generator turns a configuration into a written report.
type Generator struct {
	cfg     *config.Config
	sources []source.Source
	rand    activity.Rand
	output  string
	gitExec gitlog.Executor
	capture CaptureFunc
	now     func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand injects the jitter generator.
func WithRand(r activity.Rand) Option {
	return func(g *Generator) { g.rand = r }
}

// WithOutput overrides output.path.
func WithOutput(path string) Option {
	return func(g *Generator) { g.output = path }
}

// WithSources replaces the adapters built from the configuration.
func WithSources(srcs ...source.Source) Option {
	return func(g *Generator) { g.sources = srcs }
}

// WithGitExecutor replaces the git binary.
func WithGitExecutor(e gitlog.Executor) Option {
	return func(g *Generator) { g.gitExec = e }
}

// WithCapture replaces the headless browser capture.
func WithCapture(fn CaptureFunc) Option {
	return func(g *Generator) { g.capture = fn }
}

func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, errors.New("report: config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:     cfg,
		output:  cfg.Output.Path,
		capture: capture.SheetPNG,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rand == nil {
		g.rand = activity.NewRand()
	}
	if g.sources == nil {
		zone, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		g.sources = Sources(cfg, zone, g.gitExec)
	}
	return g, nil
}

// Run executes one full batch. The first source failure cancels the others
// and is returned.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	res := Result{RunID: runID, Output: g.output}

	p, err := g.cfg.ReportPeriod()
	if err != nil {
		return res, err
	}
	appLog.Info("run started", "run_id", runID, "from", p.FirstDate().String(), "to", p.LastDate().String(), "sources", len(g.sources))

	rec := metrics.NewRecorder()

	batches, err := g.collect(ctx, p)
	if err != nil {
		appLog.Error("run failed", err, "run_id", runID)
		return res, err
	}

	var events []model.RawEvent
	for _, b := range batches {
		events = append(events, b.Events...)
		res.Skipped += b.Skipped
		rec.Skipped(b.Source, b.Skipped)
		for _, id := range b.Stale {
			res.Stale = append(res.Stale, b.Source+"/"+id)
		}
	}
	rec.Collected(events)

	filtered := activity.Filter(events, p)
	rec.Dropped(filtered.Dropped)
	res.Events = len(filtered.Kept)

	opts := g.cfg.Options()
	opts.Zone = p.Zone
	timed := activity.NewWindower(opts).WindowAll(filtered.Kept)
	records := activity.NewAggregator(opts, activity.NewEstimator(g.rand)).Aggregate(timed)
	records = activity.Complete(records, p)

	res.Days = len(records)
	for _, r := range records {
		if len(r.Summary) > 0 {
			res.ActiveDays++
		}
	}
	rec.Days(records)

	rows := activity.Rows(records)
	if err := sheet.Write(g.output, rows); err != nil {
		appLog.Error("run failed", err, "run_id", runID)
		return res, err
	}
	appLog.Info("report written", "run_id", runID, "path", g.output, "days", res.Days, "active_days", res.ActiveDays)

	if png := g.cfg.Output.PreviewPNG; png != "" {
		g.preview(ctx, runID, png, rows)
	}

	rec.Finished(g.now())
	if path := g.cfg.Output.MetricsTextfile; path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			appLog.Error("metrics textfile write failed", err, "run_id", runID, "path", path)
		}
	}

	appLog.Info("run completed", "run_id", runID, "events", res.Events, "skipped", res.Skipped, "stale", len(res.Stale))
	return res, nil
}

func (g *Generator) collect(ctx context.Context, p model.Period) ([]model.Batch, error) {
	batches := make([]model.Batch, len(g.sources))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range g.sources {
		i, src := i, src
		eg.Go(func() error {
			b, err := src.Collect(egCtx, p)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			if b.Source == "" {
				b.Source = src.Name()
			}
			batches[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// preview renders the HTML sheet next to the PNG and screenshots it. Failures
// are logged only.
func (g *Generator) preview(ctx context.Context, runID, png string, rows []activity.Row) {
	htmlPath := g.output
	if ext := strings.ToLower(filepath.Ext(htmlPath)); ext != ".html" && ext != ".htm" {
		htmlPath = strings.TrimSuffix(png, filepath.Ext(png)) + ".html"
		if err := sheet.Write(htmlPath, rows); err != nil {
			appLog.Error("preview html write failed", err, "run_id", runID, "path", htmlPath)
			return
		}
	}
	if err := g.capture(ctx, capture.Options{HTMLPath: htmlPath, OutputPath: png}); err != nil {
		appLog.Error("preview capture failed", err, "run_id", runID, "path", png)
		return
	}
	appLog.Info("preview captured", "run_id", runID, "path", png)
}
