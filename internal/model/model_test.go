package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestClockRoundTrip(t *testing.T) {
	c, err := ParseClock("07:05")
	require.NoError(t, err)
	require.Equal(t, NewClock(7, 5), c)
	require.Equal(t, "07:05", c.String())

	_, err = ParseClock("25:00")
	require.Error(t, err)
}

func TestClockOfIgnoresDate(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	c := ClockOf(time.Date(2024, 3, 31, 23, 10, 42, 0, loc))
	require.Equal(t, "23:10", c.String())
	require.Equal(t, NewClock(23, 10)+Clock(42*time.Second), c)
}

func TestClockYAML(t *testing.T) {
	var v struct {
		At Clock `yaml:"at"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("at: \"18:30\"\n"), &v))
	require.Equal(t, NewClock(18, 30), v.At)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	require.Contains(t, string(out), "18:30")

	require.Error(t, yaml.Unmarshal([]byte("at: noon\n"), &v))
}

func TestDateArithmetic(t *testing.T) {
	d := Date{Year: 2024, Month: time.February, Day: 28}
	require.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d.Next())
	require.Equal(t, Date{Year: 2025, Month: time.January, Day: 1}, Date{Year: 2024, Month: time.December, Day: 31}.Next())
	require.True(t, d.Before(d.Next()))
	require.False(t, d.Before(d))
	require.Equal(t, "2024-02-28", d.String())
}

func TestNewPeriodRejectsReversedBounds(t *testing.T) {
	_, err := NewPeriod(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	require.Error(t, err)

	_, err = NewPeriod(time.Now(), time.Now(), nil)
	require.Error(t, err)
}

func TestPeriodDays(t *testing.T) {
	p, err := NewPeriod(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)
	require.Equal(t, 366, p.Days())
	require.True(t, p.Contains(p.Start))
	require.True(t, p.Contains(p.End))
	require.False(t, p.Contains(p.End.Add(time.Nanosecond)))
}

func TestRecordCalendarFields(t *testing.T) {
	r := DayRecord{Date: Date{Year: 2021, Month: time.January, Day: 3}}
	require.Equal(t, 2021, r.Year())
	require.Equal(t, 53, r.ISOWeek())
	require.Equal(t, "Sun", r.Weekday())
}
