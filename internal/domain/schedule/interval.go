package schedule

import "time"

// All interval math in the scheduling core uses half-open ranges [start, end)
// on UTC timestamps. Back-to-back ranges (a.end == b.start) do not overlap.

func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func Contains(outerStart, outerEnd, innerStart, innerEnd time.Time) bool {
	return !outerStart.After(innerStart) && !innerEnd.After(outerEnd)
}

// Interval is the minimal shape the resolver needs from slots, bookings and
// unavailability rows alike.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

func (i Interval) Contains(other Interval) bool {
	return Contains(i.Start, i.End, other.Start, other.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
