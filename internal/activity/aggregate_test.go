package activity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daysheet/internal/model"
)

func timed(kind model.Kind, d model.Date, start, end model.Clock, label string) model.TimedEvent {
	return model.TimedEvent{Kind: kind, Date: d, Start: start, End: end, Label: label}
}

func TestSummaryIsSortedLexicographically(t *testing.T) {
	d := date(2024, 3, 5)
	events := []model.TimedEvent{
		timed(model.KindMail, d, model.NewClock(8, 55), model.NewClock(9, 10), "Z"),
		timed(model.KindCommit, d, model.NewClock(6, 0), model.NewClock(8, 0), "A"),
	}

	recs := NewAggregator(DefaultOptions(), centered()).Aggregate(events)
	require.Len(t, recs, 1)
	require.Equal(t, []string{"08:00 commits: A", "09:10 Mail: Z"}, recs[0].Summary)
}

func TestSummaryOrderIsNotChronological(t *testing.T) {
	d := date(2024, 3, 5)
	events := []model.TimedEvent{
		timed(model.KindMeeting, d, model.NewClock(8, 0), model.NewClock(8, 30), "standup"),
		timed(model.KindMail, d, model.NewClock(9, 45), model.NewClock(10, 0), "report"),
		timed(model.KindIssue, d, model.NewClock(9, 0), model.NewClock(9, 30), "PRJ-1 crash"),
	}

	recs := NewAggregator(DefaultOptions(), centered()).Aggregate(events)
	require.Equal(t, []string{
		"08:00-08:30 Réunion: standup",
		"09:30 issue: PRJ-1 crash",
		"10:00 Mail: report",
	}, recs[0].Summary)

	// Same instant, different kinds: the kind label decides.
	events = []model.TimedEvent{
		timed(model.KindMail, d, model.NewClock(9, 45), model.NewClock(10, 0), "x"),
		timed(model.KindCommit, d, model.NewClock(8, 0), model.NewClock(10, 0), "x"),
	}
	recs = NewAggregator(DefaultOptions(), centered()).Aggregate(events)
	require.Equal(t, []string{"10:00 Mail: x", "10:00 commits: x"}, recs[0].Summary)
}

func TestSummaryStripsControlCharacters(t *testing.T) {
	d := date(2024, 3, 5)
	events := []model.TimedEvent{
		timed(model.KindCommit, d, model.NewClock(8, 0), model.NewClock(10, 0), "fix\tparser\r\n\x07"),
	}
	recs := NewAggregator(DefaultOptions(), centered()).Aggregate(events)
	require.Equal(t, []string{"10:00 commits: fixparser"}, recs[0].Summary)
}

func TestBoundsIncludeJitterAnchors(t *testing.T) {
	d := date(2024, 3, 5)
	events := []model.TimedEvent{
		timed(model.KindMail, d, model.NewClock(12, 45), model.NewClock(13, 0), "lunch"),
	}

	recs := NewAggregator(DefaultOptions(), centered()).Aggregate(events)
	require.NotNil(t, recs[0].Bounds)
	require.Equal(t, model.NewClock(9, 0), recs[0].Bounds.Start)
	require.Equal(t, model.NewClock(20, 0), recs[0].Bounds.End)
}

func TestBoundsWidenBeyondAnchors(t *testing.T) {
	d := date(2024, 3, 5)
	events := []model.TimedEvent{
		timed(model.KindCommit, d, model.NewClock(5, 0), model.NewClock(7, 0), "early"),
		timed(model.KindMail, d, model.NewClock(22, 15), model.NewClock(22, 30), "late"),
	}

	recs := NewAggregator(DefaultOptions(), centered()).Aggregate(events)
	require.Equal(t, model.Bounds{Start: model.NewClock(5, 0), End: model.NewClock(22, 30)}, *recs[0].Bounds)
}

func TestAllDayMeetingContributesNoBounds(t *testing.T) {
	d := date(2024, 3, 5)
	rnd := &recordedRand{values: []int{15, 15}}
	events := []model.TimedEvent{
		timed(model.KindMeeting, d, 0, 0, "Holiday"),
	}

	recs := NewAggregator(DefaultOptions(), NewEstimator(rnd)).Aggregate(events)
	require.Len(t, recs, 1)
	require.Equal(t, []string{"00:00-00:00 Réunion: Holiday"}, recs[0].Summary)
	require.Nil(t, recs[0].Bounds)
	require.Empty(t, rnd.calls, "no jitter anchor may be drawn for a day without qualifying events")
}

func TestAllDayMeetingIgnoredNextToTimedEvents(t *testing.T) {
	d := date(2024, 3, 5)
	events := []model.TimedEvent{
		timed(model.KindMeeting, d, 0, 0, "Offsite"),
		timed(model.KindMail, d, model.NewClock(6, 45), model.NewClock(7, 0), "early"),
	}
	recs := NewAggregator(DefaultOptions(), centered()).Aggregate(events)
	require.Equal(t, model.NewClock(6, 45), recs[0].Bounds.Start)
	require.Equal(t, model.NewClock(20, 0), recs[0].Bounds.End)
}

func TestZeroDurationNonMeetingCounts(t *testing.T) {
	opts := DefaultOptions()
	opts.MailDraft = 0
	d := date(2024, 3, 5)
	recs := NewAggregator(opts, centered()).Aggregate([]model.TimedEvent{
		timed(model.KindMail, d, model.NewClock(21, 0), model.NewClock(21, 0), "instant"),
	})
	require.Equal(t, model.NewClock(21, 0), recs[0].Bounds.End)
}

func TestAggregateGroupsByDateInOrder(t *testing.T) {
	rnd := &recordedRand{values: []int{0, 30, 15, 15}}
	events := []model.TimedEvent{
		timed(model.KindMail, date(2024, 3, 6), model.NewClock(10, 45), model.NewClock(11, 0), "b"),
		timed(model.KindMail, date(2024, 3, 5), model.NewClock(10, 45), model.NewClock(11, 0), "a"),
		timed(model.KindIssue, date(2024, 3, 6), model.NewClock(14, 30), model.NewClock(15, 0), "c"),
	}

	recs := NewAggregator(DefaultOptions(), NewEstimator(rnd)).Aggregate(events)
	require.Len(t, recs, 2)
	require.Equal(t, date(2024, 3, 5), recs[0].Date)
	require.Equal(t, date(2024, 3, 6), recs[1].Date)
	require.Len(t, recs[1].Summary, 2)

	// Anchors are drawn per date in order, start first.
	require.Equal(t, model.NewClock(8, 45), recs[0].Bounds.Start)
	require.Equal(t, model.NewClock(20, 15), recs[0].Bounds.End)
	require.Equal(t, model.NewClock(9, 0), recs[1].Bounds.Start)
	require.Equal(t, model.NewClock(20, 0), recs[1].Bounds.End)
}

func TestAggregateEmptyInput(t *testing.T) {
	require.Empty(t, NewAggregator(DefaultOptions(), centered()).Aggregate(nil))
}
