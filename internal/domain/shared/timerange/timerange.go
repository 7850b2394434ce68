package timerange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("timerange: start must be strictly before end")

// TimeRange is a pair of calendar dates where both the start and the end day
// count as occupied. Two ranges that merely touch on a day therefore conflict:
// a reservation ending on day D and one starting on day D claim the same day.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// New normalizes both dates to UTC midnight and rejects ranges whose start is
// not strictly before the end.
func New(start, end time.Time) (TimeRange, error) {
	tr := TimeRange{Start: Day(start), End: Day(end)}
	if err := tr.Validate(); err != nil {
		return TimeRange{}, err
	}
	return tr, nil
}

func (tr TimeRange) Validate() error {
	if tr.Start.IsZero() || tr.End.IsZero() {
		return ErrInvalidRange
	}
	if !tr.Start.Before(tr.End) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether the two closed intervals share at least one day:
// start <= other.end && other.start <= end.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return !tr.Start.After(other.End) && !other.Start.After(tr.End)
}

// ContainsDay reports whether t falls on one of the occupied days.
func (tr TimeRange) ContainsDay(t time.Time) bool {
	d := Day(t)
	return !d.Before(tr.Start) && !d.After(tr.End)
}

// Days counts the occupied days, both boundary days included.
func (tr TimeRange) Days() int {
	return int(tr.End.Sub(tr.Start).Hours()/24) + 1
}

// EachDay visits every occupied day in order.
func (tr TimeRange) EachDay(fn func(day time.Time)) {
	for d := tr.Start; !d.After(tr.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
