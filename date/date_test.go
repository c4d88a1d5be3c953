package date

import (
	"slices"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// time.Time are usually not comparable (there is a pointer for the timezone), this
		// checks that the property remains true.
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	if got, want := New(2024, time.February, 30), New(2024, time.March, 1); got != want {
		t.Errorf("New(2024, Feb, 30) = %v, want %v", got, want)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-07-01", New(2025, 7, 1), false},
		{"2025-7-1", New(2025, 7, 1), false},
		{" 2024-01-02 ", New(2024, 1, 2), false},
		{"2024-01-02T15:04:05Z", New(2024, 1, 2), false},
		{"01/02/2024", Date{}, true},
		{"", Date{}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestAddYears(t *testing.T) {
	testCases := []struct {
		in   Date
		n    int
		want Date
	}{
		{New(2024, 1, 1), -4, New(2020, 1, 1)},
		{New(2024, 6, 15), -1, New(2023, 6, 15)},
		{New(2024, 2, 29), -1, New(2023, 3, 1)},
	}
	for _, tc := range testCases {
		if got := tc.in.AddYears(tc.n); got != tc.want {
			t.Errorf("%v.AddYears(%d) = %v, want %v", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestSubAndYearsSince(t *testing.T) {
	from, to := New(2020, 1, 1), New(2024, 1, 1)
	if got, want := to.Sub(from), 1461; got != want {
		t.Errorf("Sub() = %d, want %d", got, want)
	}
	if got, want := to.YearsSince(from), 4.0; got != want {
		t.Errorf("YearsSince() = %v, want %v", got, want)
	}
}

func TestLabel(t *testing.T) {
	d := New(2025, time.September, 8)
	testCases := []struct {
		p    Period
		want string
	}{
		{Daily, "2025-09-08"},
		{Weekly, "2025-W37"},
		{Monthly, "Sep 2025"},
		{Quarterly, "2025-Q3"},
		{Yearly, "2025"},
	}
	for _, tc := range testCases {
		t.Run(tc.p.String(), func(t *testing.T) {
			if got := d.Label(tc.p); got != tc.want {
				t.Errorf("Label(%v) = %q, want %q", tc.p, got, tc.want)
			}
		})
	}
}

func TestUnion(t *testing.T) {
	a := []Date{New(2024, 1, 2), New(2024, 1, 3), New(2024, 1, 5)}
	b := []Date{New(2024, 1, 1), New(2024, 1, 3), New(2024, 1, 3), New(2024, 1, 6)}
	c := []Date{}

	got := slices.Collect(Union(a, b, c))
	want := []Date{New(2024, 1, 1), New(2024, 1, 2), New(2024, 1, 3), New(2024, 1, 5), New(2024, 1, 6)}
	if !slices.Equal(got, want) {
		t.Errorf("Union() = %v, want %v", got, want)
	}
}

func TestJSON(t *testing.T) {
	d := New(2024, 3, 9)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if got, want := string(b), `"2024-03-09"`; got != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if back != d {
		t.Errorf("UnmarshalJSON() = %v, want %v", back, d)
	}
}
