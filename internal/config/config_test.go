package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daysheet/internal/model"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "daysheet.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Europe/Paris", cfg.Timezone)
	require.Equal(t, 15, cfg.Offsets.MailDraftMinutes)
	require.Equal(t, DefaultSentFolders, cfg.Sources.Mail.SentFolders)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Workday, again.Workday)
	require.Equal(t, cfg.Period, again.Period)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", `
timezone: Europe/Paris
period:
  start: 2024-01-01
  end: 2024-01-03
offsets:
  mail_draft_minutes: 10
sources:
  git:
    repositories: [/src/a, /src/a/, /src/b, ""]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, model.NewClock(9, 0), cfg.Workday.Start)
	require.Equal(t, model.NewClock(20, 0), cfg.Workday.End)
	require.Equal(t, "rapport_activite.xlsx", cfg.Output.Path)
	require.Equal(t, []string{"/src/a", "/src/b"}, cfg.Sources.Git.Repositories)

	opts := cfg.Options()
	require.Equal(t, 10*time.Minute, opts.MailDraft)
	require.Equal(t, time.Duration(0), opts.CommitWork)
}

func TestReportPeriodDateOnlyEndCoversDay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Period = PeriodConfig{Start: "2024-01-01", End: "2024-01-03"}

	p, err := cfg.ReportPeriod()
	require.NoError(t, err)
	require.Equal(t, "Europe/Paris", p.Zone.String())
	require.Equal(t, 3, p.Days())
	require.True(t, p.Contains(time.Date(2024, 1, 3, 23, 59, 59, 0, p.Zone)))
	require.False(t, p.Contains(time.Date(2024, 1, 4, 0, 0, 0, 0, p.Zone)))
}

func TestReportPeriodWithTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Period = PeriodConfig{Start: "2024-01-01 08:00", End: "2024-01-02 12:30:00"}

	p, err := cfg.ReportPeriod()
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 2, 12, 30, 0, 0, p.Zone), p.End)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{"reversed period", func(c *Config) { c.Period = PeriodConfig{Start: "2024-02-01", End: "2024-01-01"} }},
		{"bad date", func(c *Config) { c.Period.Start = "01/02/2024" }},
		{"negative jitter", func(c *Config) { c.Workday.JitterMinutes = -1 }},
		{"negative offset", func(c *Config) { c.Offsets.CommitWorkMinutes = -5 }},
		{"empty ics url", func(c *Config) { c.Sources.Calendar.ICS = []ICSConfig{{ID: "x"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsBadWorkday(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "workday:\n  start: \"9h\"\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRequiresPathAndConfig(t *testing.T) {
	require.Error(t, Save("", DefaultConfig()))
	require.Error(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil))
}
