package activity

import (
	"math/rand"
	"time"

	"daysheet/internal/model"
)

// Rand is the only source of non-determinism in the core. *rand.Rand
// satisfies it; tests inject a recorded sequence.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a time-seeded generator. Bounds produced with it differ
// from one run to the next.
func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededRand returns a reproducible generator.
func NewSeededRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

const lastMinute = model.Clock(24*time.Hour - time.Minute)

// Estimator yields randomized times of day around a nominal value.
type Estimator struct {
	rnd Rand
}

// NewEstimator wraps rnd. A nil rnd falls back to NewRand.
func NewEstimator(rnd Rand) *Estimator {
	if rnd == nil {
		rnd = NewRand()
	}
	return &Estimator{rnd: rnd}
}

// Around returns a time of day in [nominal-delta, nominal+delta] with minute
// granularity, clamped to the day.
func (e *Estimator) Around(nominal model.Clock, delta time.Duration) model.Clock {
	minutes := int(delta / time.Minute)
	if minutes <= 0 {
		return nominal
	}
	offset := e.rnd.Intn(2*minutes+1) - minutes
	out := nominal + model.Clock(time.Duration(offset)*time.Minute)
	switch {
	case out < 0:
		return 0
	case out > lastMinute:
		return lastMinute
	}
	return out
}
