// Package analytics turns flat statistics rows into per-day chart series.
//
// Every builder is a pure function of its rows and a DateAxis: nothing is
// cached or shared between calls, and no builder returns an error. A nil row
// slice yields a nil result so callers can tell "no response" apart from
// "empty response".
package analytics

import "time"

// DateLayout is the day key used by the gateway and by every axis.
const DateLayout = "2006-01-02"

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange returns the range covering the n calendar days ending on the
// day of now. n < 1 is treated as 1.
func NewDateRange(now time.Time, days int) DateRange {
	if days < 1 {
		days = 1
	}
	today := startOfDay(now)
	return DateRange{
		Start: today.AddDate(0, 0, -(days - 1)),
		End:   endOfDay(today),
	}
}

// DateAxis is the ordered list of day keys that every series is aligned to.
type DateAxis []string

// BuildDateAxis returns one entry per calendar day in r, inclusive and
// ascending. Both ends are truncated to whole days in the location of
// r.Start; a reversed range yields an empty axis.
func BuildDateAxis(r DateRange) DateAxis {
	loc := r.Start.Location()
	start := startOfDay(r.Start)
	end := startOfDay(r.End.In(loc))
	if start.After(end) {
		return DateAxis{}
	}

	axis := make(DateAxis, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		axis = append(axis, d.Format(DateLayout))
	}
	return axis
}

// Index maps each day key to its slot.
func (a DateAxis) Index() map[string]int {
	idx := make(map[string]int, len(a))
	for i, d := range a {
		idx[d] = i
	}
	return idx
}

// Len returns the number of days on the axis.
func (a DateAxis) Len() int {
	return len(a)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Second)
}
