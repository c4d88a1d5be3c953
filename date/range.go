package date

import "fmt"

// Range represents a closed range of dates.
type Range struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// NewRange return the standard period containing d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// IsZero reports whether r is the zero range.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Days returns the number of days in the range, both ends included.
func (r Range) Days() int { return r.To.Sub(r.From) + 1 }

// Extend returns the smallest range containing both r and d.
func (r Range) Extend(d Date) Range {
	if r.IsZero() {
		return Range{d, d}
	}
	if d.Before(r.From) {
		r.From = d
	}
	if d.After(r.To) {
		r.To = d
	}
	return r
}

// Period returns the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	for _, p := range []Period{Daily, Weekly, Monthly, Quarterly, Yearly} {
		if r == NewRange(r.From, p) {
			return p, true
		}
	}
	return Daily, false
}

func (r Range) String() string {
	if p, ok := r.Period(); ok {
		return r.From.Label(p)
	}
	return fmt.Sprintf("%s..%s", r.From, r.To)
}
