package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"daysheet/internal/activity"
	"daysheet/internal/model"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "daysheet.yaml"

// DefaultSentFolders matches sent-mail folders of French and English clients.
var DefaultSentFolders = []string{"Sent Items", "Éléments envoyés", "Envoyés"}

// PeriodConfig bounds the report. Values are "YYYY-MM-DD" or
// "YYYY-MM-DD HH:MM[:SS]" in the reporting timezone.
type PeriodConfig struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// WorkdayConfig describes the nominal day used for jitter anchors.
type WorkdayConfig struct {
	Start         model.Clock `yaml:"start" json:"start"`
	End           model.Clock `yaml:"end" json:"end"`
	JitterMinutes int         `yaml:"jitter_minutes" json:"jitter_minutes"`
}

// OffsetsConfig holds the effort assumed before each observed event.
type OffsetsConfig struct {
	MailDraftMinutes      int `yaml:"mail_draft_minutes" json:"mail_draft_minutes"`
	IssueAuthoringMinutes int `yaml:"issue_authoring_minutes" json:"issue_authoring_minutes"`
	CommitWorkMinutes     int `yaml:"commit_work_minutes" json:"commit_work_minutes"`
}

// MailConfig points at a mail archive folder tree.
type MailConfig struct {
	Archive     string   `yaml:"archive" json:"archive"`
	SentFolders []string `yaml:"sent_folders" json:"sent_folders"`
}

// ICSConfig describes a single iCalendar source.
type ICSConfig struct {
	// ID is an internal identifier used for logging.
	ID string `yaml:"id" json:"id"`
	// URL is a local path, a file:// URL or an http(s):// subscription.
	URL string `yaml:"url" json:"url"`
}

// CalendarConfig lists meeting sources.
type CalendarConfig struct {
	CSV string      `yaml:"csv" json:"csv"`
	ICS []ICSConfig `yaml:"ics" json:"ics"`
	// ICSStaleFallback reuses the last cached body of a subscription that
	// cannot be fetched instead of failing the run.
	ICSStaleFallback bool `yaml:"ics_stale_fallback" json:"ics_stale_fallback"`
}

// IssuesConfig points at an issue tracker export.
type IssuesConfig struct {
	CSV string `yaml:"csv" json:"csv"`
}

// GitConfig lists repositories whose history is read.
type GitConfig struct {
	Repositories []string `yaml:"repositories" json:"repositories"`
	Author       string   `yaml:"author" json:"author"`
}

// SourcesConfig groups every adapter's settings.
type SourcesConfig struct {
	Mail     MailConfig     `yaml:"mail" json:"mail"`
	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`
	Issues   IssuesConfig   `yaml:"issues" json:"issues"`
	Git      GitConfig      `yaml:"git" json:"git"`
}

// OutputConfig selects what the run writes.
type OutputConfig struct {
	// Path's extension picks the writer: .xlsx, .csv or .html.
	Path string `yaml:"path" json:"path"`
	// PreviewPNG, if set, receives a screenshot of the HTML rendering.
	PreviewPNG string `yaml:"preview_png,omitempty" json:"preview_png,omitempty"`
	// MetricsTextfile, if set, receives the run metrics in Prometheus text format.
	MetricsTextfile string `yaml:"metrics_textfile,omitempty" json:"metrics_textfile,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone every instant is normalized to (e.g. "Europe/Paris").
	Timezone string `yaml:"timezone" json:"timezone"`

	Period  PeriodConfig  `yaml:"period" json:"period"`
	Workday WorkdayConfig `yaml:"workday" json:"workday"`
	Offsets OffsetsConfig `yaml:"offsets" json:"offsets"`
	Sources SourcesConfig `yaml:"sources" json:"sources"`
	Output  OutputConfig  `yaml:"output" json:"output"`

	// CacheDir stores HTTP cache entries for ICS subscriptions.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Schedule is the cron expression used by `daysheet watch`.
	Schedule string `yaml:"schedule" json:"schedule"`
}

// DefaultConfig returns an in-memory default configuration covering the
// current calendar year.
func DefaultConfig() *Config {
	year := time.Now().Year()
	return &Config{
		Timezone: "Europe/Paris",
		Period: PeriodConfig{
			Start: fmt.Sprintf("%04d-01-01", year),
			End:   fmt.Sprintf("%04d-12-31", year),
		},
		Workday: WorkdayConfig{
			Start:         model.NewClock(9, 0),
			End:           model.NewClock(20, 0),
			JitterMinutes: 15,
		},
		Offsets: OffsetsConfig{
			MailDraftMinutes:      15,
			IssueAuthoringMinutes: 30,
			CommitWorkMinutes:     120,
		},
		Sources: SourcesConfig{
			Mail: MailConfig{SentFolders: append([]string(nil), DefaultSentFolders...)},
		},
		Output:   OutputConfig{Path: "rapport_activite.xlsx"},
		CacheDir: "./cache/ics",
		Schedule: "0 7 * * 1-5",
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly. Offsets and jitter are
// left alone: zero is a legitimate value for them.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Period.Start == "" {
		c.Period.Start = def.Period.Start
	}
	if c.Period.End == "" {
		c.Period.End = def.Period.End
	}
	if c.Workday.Start == 0 && c.Workday.End == 0 {
		c.Workday.Start = def.Workday.Start
		c.Workday.End = def.Workday.End
	}
	if len(c.Sources.Mail.SentFolders) == 0 {
		c.Sources.Mail.SentFolders = def.Sources.Mail.SentFolders
	}
	if c.Sources.Calendar.ICS == nil {
		c.Sources.Calendar.ICS = []ICSConfig{}
	}
	c.Sources.Git.Repositories = dedupe(c.Sources.Git.Repositories)
	if c.Output.Path == "" {
		c.Output.Path = def.Output.Path
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.Schedule == "" {
		c.Schedule = def.Schedule
	}
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.ReportPeriod(); err != nil {
		return err
	}
	if c.Workday.JitterMinutes < 0 {
		return fmt.Errorf("config: workday.jitter_minutes must not be negative")
	}
	if c.Offsets.MailDraftMinutes < 0 || c.Offsets.IssueAuthoringMinutes < 0 || c.Offsets.CommitWorkMinutes < 0 {
		return fmt.Errorf("config: offsets must not be negative")
	}
	for i, src := range c.Sources.Calendar.ICS {
		if strings.TrimSpace(src.URL) == "" {
			return fmt.Errorf("config: sources.calendar.ics[%d].url is empty", i)
		}
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ReportPeriod builds the immutable period. A date-only end covers the whole
// day.
func (c *Config) ReportPeriod() (model.Period, error) {
	loc, err := c.Location()
	if err != nil {
		return model.Period{}, err
	}
	start, _, err := parseBound(c.Period.Start, loc)
	if err != nil {
		return model.Period{}, fmt.Errorf("config: period.start: %w", err)
	}
	end, dateOnly, err := parseBound(c.Period.End, loc)
	if err != nil {
		return model.Period{}, fmt.Errorf("config: period.end: %w", err)
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	p, err := model.NewPeriod(start, end, loc)
	if err != nil {
		return model.Period{}, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

// Options converts the tunables into the core's immutable options.
func (c *Config) Options() activity.Options {
	return activity.Options{
		MailDraft:      minutes(c.Offsets.MailDraftMinutes),
		IssueAuthoring: minutes(c.Offsets.IssueAuthoringMinutes),
		CommitWork:     minutes(c.Offsets.CommitWorkMinutes),
		WorkdayStart:   c.Workday.Start,
		WorkdayEnd:     c.Workday.End,
		Jitter:         minutes(c.Workday.JitterMinutes),
	}
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

var boundLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{"2006-01-02", true},
	{"2006-01-02 15:04", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04:05", false},
}

func parseBound(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	for _, l := range boundLayouts {
		if t, err := time.ParseInLocation(l.layout, s, loc); err == nil {
			return t, l.dateOnly, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unsupported date %q", s)
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := filepath.Clean(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file in the same directory, then rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".daysheet-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
