package engine

import (
	"time"

	"auto-trader/internal/interfaces"
)

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall-clock implementation used outside tests.
func SystemClock() interfaces.Clock { return systemClock{} }
