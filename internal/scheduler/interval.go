package scheduler

import "time"

// normalize treats a range whose end precedes its start as zero-length.
func normalize(start, end time.Time) (time.Time, time.Time) {
	if end.Before(start) {
		return start, start
	}
	return start, end
}

// Overlaps reports whether the half-open ranges [aStart,aEnd) and
// [bStart,bEnd) share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart, aEnd = normalize(aStart, aEnd)
	bStart, bEnd = normalize(bStart, bEnd)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapMinutes returns the length of the intersection in whole minutes.
func OverlapMinutes(aStart, aEnd, bStart, bEnd time.Time) int {
	if !Overlaps(aStart, aEnd, bStart, bEnd) {
		return 0
	}
	lo := aStart
	if bStart.After(lo) {
		lo = bStart
	}
	hi := aEnd
	if bEnd.Before(hi) {
		hi = bEnd
	}
	return DurationMinutes(lo, hi)
}

// DurationMinutes returns end-start in whole minutes, zero for malformed ranges.
func DurationMinutes(start, end time.Time) int {
	start, end = normalize(start, end)
	return int(end.Sub(start) / time.Minute)
}

// OffsetMinutes returns how many minutes t lies after base (negative if before).
func OffsetMinutes(base, t time.Time) int {
	return int(t.Sub(base) / time.Minute)
}

// addMinutes is shorthand used by the placement code.
func addMinutes(t time.Time, m int) time.Time {
	return t.Add(time.Duration(m) * time.Minute)
}
