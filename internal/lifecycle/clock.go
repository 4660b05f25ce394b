package lifecycle

import "time"

// Clock supplies the current timestamp. Injected so deadline and id logic is
// testable against fixed times.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
