package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daysheet/internal/model"
)

func TestAroundStaysWithinDelta(t *testing.T) {
	est := NewEstimator(NewSeededRand(42))
	nominal := model.NewClock(9, 0)

	for i := 0; i < 2000; i++ {
		got := est.Around(nominal, 15*time.Minute)
		require.GreaterOrEqual(t, got, model.NewClock(8, 45))
		require.LessOrEqual(t, got, model.NewClock(9, 15))
	}
}

func TestAroundEdges(t *testing.T) {
	nominal := model.NewClock(9, 0)

	require.Equal(t, model.NewClock(8, 45), NewEstimator(fixedRand{v: 0}).Around(nominal, 15*time.Minute))
	require.Equal(t, model.NewClock(9, 15), NewEstimator(fixedRand{v: 30}).Around(nominal, 15*time.Minute))
	require.Equal(t, nominal, NewEstimator(fixedRand{v: 15}).Around(nominal, 15*time.Minute))
}

func TestAroundDrawsInclusiveRange(t *testing.T) {
	rnd := &recordedRand{values: []int{3}}
	NewEstimator(rnd).Around(model.NewClock(20, 0), 15*time.Minute)
	require.Equal(t, []int{31}, rnd.calls)
}

func TestAroundZeroDeltaIsNominal(t *testing.T) {
	rnd := &recordedRand{}
	got := NewEstimator(rnd).Around(model.NewClock(9, 0), 0)
	require.Equal(t, model.NewClock(9, 0), got)
	require.Empty(t, rnd.calls)
}

func TestAroundClampsToDay(t *testing.T) {
	require.Equal(t, model.Clock(0), NewEstimator(fixedRand{v: 0}).Around(model.NewClock(0, 5), 15*time.Minute))
	require.Equal(t, model.NewClock(23, 59), NewEstimator(fixedRand{v: 30}).Around(model.NewClock(23, 55), 15*time.Minute))
}

func TestSeededRandIsReproducible(t *testing.T) {
	a := NewEstimator(NewSeededRand(1))
	b := NewEstimator(NewSeededRand(1))
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Around(model.NewClock(9, 0), 15*time.Minute), b.Around(model.NewClock(9, 0), 15*time.Minute))
	}
}
