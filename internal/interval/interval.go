// Package interval implements the closed date-interval overlap test.
// It is the single overlap authority in this service: the reservation
// calendar and the usage ledger both route every "do these ranges
// intersect" decision through Overlaps rather than re-deriving the
// predicate in SQL or elsewhere.
package interval

import "time"

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one instant.  Both ends are inclusive,
// so zero-length intervals (start == end) overlap anything that
// contains that single point, and two intervals that merely touch at
// an endpoint do overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
    return !(aEnd.Before(bStart) || aStart.After(bEnd))
}

// Day truncates t to midnight UTC.  Reservation dates are whole days;
// callers normalize through Day before comparing so that a timestamp
// and a date on the same calendar day count as overlapping.
func Day(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
