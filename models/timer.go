package models

import (
	"fmt"
	"time"
)

const (
	DefaultTotalMinutes     = 120
	DefaultLastOrderMinutes = 90

	TextOvertime = "overtime"
)

// Timer is a running countdown. LastOrderOffset is measured from StartedAt,
// so restarting the countdown also moves the last-order point.
type Timer struct {
	StartedAt       time.Time
	TotalDuration   time.Duration
	LastOrderOffset time.Duration
}

func NewTimer(now time.Time, totalMinutes, lastOrderMinutes int) (*Timer, error) {
	if totalMinutes <= 0 || lastOrderMinutes <= 0 {
		return nil, ErrInvalidMinutes
	}
	return &Timer{
		StartedAt:       now,
		TotalDuration:   time.Duration(totalMinutes) * time.Minute,
		LastOrderOffset: time.Duration(lastOrderMinutes) * time.Minute,
	}, nil
}

// Adjust restarts the countdown at now with minutes remaining. The last-order
// offset is kept as configured.
func (tm *Timer) Adjust(now time.Time, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidMinutes
	}
	tm.StartedAt = now
	tm.TotalDuration = time.Duration(minutes) * time.Minute
	return nil
}

func (tm *Timer) TimeToEnd(now time.Time) time.Duration {
	return tm.StartedAt.Add(tm.TotalDuration).Sub(now)
}

func (tm *Timer) TimeToLastOrder(now time.Time) time.Duration {
	return tm.StartedAt.Add(tm.LastOrderOffset).Sub(now)
}

// Display renders the remaining time of tm, or "" for a nil timer.
func (tm *Timer) Display(now time.Time) string {
	if tm == nil || tm.StartedAt.IsZero() || tm.TotalDuration == 0 {
		return ""
	}
	remain := CeilMinutes(tm.TimeToEnd(now))
	if remain <= 0 {
		return TextOvertime
	}
	return fmt.Sprintf("remaining %d min / LO %d min", remain, CeilMinutes(tm.TimeToLastOrder(now)))
}

// CeilMinutes rounds d up to whole minutes, so any time left shows as at least 1.
func CeilMinutes(d time.Duration) int {
	m := d / time.Minute
	if d%time.Minute > 0 {
		m++
	}
	return int(m)
}
