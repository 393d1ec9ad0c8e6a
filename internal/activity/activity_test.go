package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daysheet/internal/model"
)

var paris = mustZone("Europe/Paris")

func mustZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// fixedRand always returns the same value, clamped to n-1.
type fixedRand struct{ v int }

func (f fixedRand) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

// recordedRand replays values and records the n of every call.
type recordedRand struct {
	values []int
	calls  []int
}

func (r *recordedRand) Intn(n int) int {
	r.calls = append(r.calls, n)
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

// centered makes Around return exactly its nominal time for a 15 minute delta.
func centered() *Estimator {
	return NewEstimator(fixedRand{v: 15})
}

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, paris)
}

func date(y int, m time.Month, d int) model.Date {
	return model.Date{Year: y, Month: m, Day: d}
}

func period(t *testing.T, from, to time.Time) model.Period {
	t.Helper()
	p, err := model.NewPeriod(from, to, paris)
	require.NoError(t, err)
	return p
}

func TestEndToEndSingleMail(t *testing.T) {
	p := period(t, at(2024, 1, 1, 0, 0), time.Date(2024, 1, 3, 23, 59, 59, 0, paris))
	opts := DefaultOptions()

	raw := []model.RawEvent{{Kind: model.KindMail, Label: "Budget", At: at(2024, 1, 2, 10, 0)}}
	kept := Filter(raw, p).Kept
	timed := NewWindower(opts).WindowAll(kept)
	sparse := NewAggregator(opts, NewEstimator(NewSeededRand(7))).Aggregate(timed)
	rows := Rows(Complete(sparse, p))

	require.Len(t, rows, 3)

	require.Equal(t, "2024-01-01", rows[0].Date)
	require.Empty(t, rows[0].Summary)
	require.Empty(t, rows[0].Start)
	require.Empty(t, rows[0].End)

	require.Equal(t, "2024-01-02", rows[1].Date)
	require.Equal(t, "10:00 Mail: Budget", rows[1].Summary)
	require.Equal(t, "Tue", rows[1].Day)
	require.Equal(t, 2024, rows[1].Year)
	require.Equal(t, 1, rows[1].Week)

	start, err := model.ParseClock(rows[1].Start)
	require.NoError(t, err)
	end, err := model.ParseClock(rows[1].End)
	require.NoError(t, err)
	// The jittered anchors sit around 09:00 and 20:00, so they dominate.
	require.LessOrEqual(t, start, model.NewClock(9, 15))
	require.GreaterOrEqual(t, start, model.NewClock(8, 45))
	require.GreaterOrEqual(t, end, model.NewClock(19, 45))
	require.LessOrEqual(t, end, model.NewClock(20, 15))

	require.Equal(t, "2024-01-03", rows[2].Date)
	require.Empty(t, rows[2].Summary)
	require.Empty(t, rows[2].Start)
}

func TestRowStrings(t *testing.T) {
	rec := model.DayRecord{
		Date:    date(2024, 12, 30),
		Summary: []string{"a", "b"},
		Bounds:  &model.Bounds{Start: model.NewClock(8, 5), End: model.NewClock(19, 0)},
	}
	rows := Rows([]model.DayRecord{rec})
	require.Equal(t, []string{"2024", "1", "2024-12-30", "Mon", "a\nb", "08:05", "19:00"}, rows[0].Strings())
	require.Len(t, Columns, len(rows[0].Strings()))
}
