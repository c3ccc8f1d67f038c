package schedule

import (
	"sort"
	"time"
)

// Window is a bookable range offered to callers.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// ResolveInput carries everything the resolver needs for one technician and
// one day, pre-fetched by the caller. The resolver itself is pure and
// restartable.
type ResolveInput struct {
	Slots          []Slot
	Bookings       []Interval // non-cancelled bookings intersecting the day
	Unavailability []Unavailability
	MinDuration    time.Duration
}

// Resolve returns the technician's bookable windows ordered by start time.
//
// A slot is excluded wholesale when it overlaps any booking or blackout; the
// remainder of a partially busy slot is not re-offered. Narrowing the offer
// this way under-sells availability, but it is the established product
// behavior and changing it silently alters what customers are shown.
func Resolve(in ResolveInput) []Window {
	windows := make([]Window, 0, len(in.Slots))

	for _, slot := range in.Slots {
		iv := slot.Interval()
		if iv.Duration() < in.MinDuration {
			continue
		}
		if overlapsAny(iv, in.Bookings) {
			continue
		}
		if overlapsAnyBlackout(iv, in.Unavailability) {
			continue
		}
		windows = append(windows, Window{Start: slot.Start, End: slot.End})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
	return windows
}

// HasCoveringWindow reports whether any resolved window fully contains the
// requested range. Used by the conflict validator as its first gate.
func HasCoveringWindow(windows []Window, start, end time.Time) bool {
	for _, w := range windows {
		if Contains(w.Start, w.End, start, end) {
			return true
		}
	}
	return false
}

// BusyEntry is a booked or blacked-out range surfaced in the agenda view,
// where conflicts are shown rather than filtered.
type BusyEntry struct {
	Start  time.Time
	End    time.Time
	Kind   string // "booking" or "unavailability"
	Reason string // set for unavailability entries
}

// Agenda merges bookings and blackouts into a chronological busy list.
func Agenda(bookings []Interval, blocks []Unavailability) []BusyEntry {
	entries := make([]BusyEntry, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		entries = append(entries, BusyEntry{Start: b.Start, End: b.End, Kind: "booking"})
	}
	for _, u := range blocks {
		entries = append(entries, BusyEntry{Start: u.Start, End: u.End, Kind: "unavailability", Reason: u.Reason})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})
	return entries
}

func overlapsAny(iv Interval, others []Interval) bool {
	for _, o := range others {
		if iv.Overlaps(o) {
			return true
		}
	}
	return false
}

func overlapsAnyBlackout(iv Interval, blocks []Unavailability) bool {
	for _, u := range blocks {
		if iv.Overlaps(u.Interval()) {
			return true
		}
	}
	return false
}
