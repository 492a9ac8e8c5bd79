package usecase

import "time"

// NowFunc supplies the current time; services take it as an injection point
// so tests can pin the clock.
type NowFunc func() time.Time

func defaultNow() time.Time {
	return time.Now()
}
