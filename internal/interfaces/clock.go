package interfaces

import "time"

// Clock abstracts wall time so the polling loop can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}
