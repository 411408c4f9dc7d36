package crawler

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock abstracts time access so that politeness and cooldown timing can be
// driven deterministically in tests. github.com/benbjohnson/clock.Clock
// satisfies it directly in production; clock.Mock satisfies it in tests.
type Clock interface {
	Now() time.Time
	Sleep(time.Duration)
	After(time.Duration) <-chan time.Time
}

// NewClock returns the production Clock implementation, backed by the real
// wall clock.
func NewClock() Clock {
	return clock.New()
}

// NewMockClock returns a Clock whose Now/Sleep/After are driven manually,
// for deterministic politeness and cooldown tests.
func NewMockClock() *clock.Mock {
	return clock.NewMock()
}
