package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[float64])
	d1, v1 := New(2025, 07, 01), 101.5
	d2, v2 := New(2024, 07, 01), 99.0

	// appending two values in reverse order, checking every step of the way.
	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[0] != d2 || h.days[1] != d1 {
		t.Errorf("history days = %v want [%v %v]", h.days, d2, d1)
	}
	if h.values[0] != v2 || h.values[1] != v1 {
		t.Errorf("history values = %v want [%v %v]", h.values, v2, v1)
	}

	h.Append(d1, 102)
	if got, _ := h.Get(d1); got != 102 || h.Len() != 2 {
		t.Errorf("Append(d1, 102) did not overwrite: Get() = %v, Len() = %v", got, h.Len())
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[float64])
	h.Append(New(2024, 1, 2), 10).Append(New(2024, 1, 4), 12).Append(New(2024, 1, 8), 15)

	testCases := []struct {
		on     Date
		want   float64
		wantOK bool
	}{
		{New(2024, 1, 1), 0, false},
		{New(2024, 1, 2), 10, true},
		{New(2024, 1, 3), 10, true},
		{New(2024, 1, 7), 12, true},
		{New(2024, 1, 8), 15, true},
		{New(2025, 1, 1), 15, true},
	}
	for _, tc := range testCases {
		t.Run(tc.on.String(), func(t *testing.T) {
			got, ok := h.ValueAsOf(tc.on)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tc.on, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestBetween(t *testing.T) {
	h := new(History[float64])
	for i := 1; i <= 10; i++ {
		h.Append(New(2024, 1, i), float64(i))
	}
	var sum float64
	for _, v := range h.Between(New(2024, 1, 3), New(2024, 1, 5)) {
		sum += v
	}
	if sum != 12 {
		t.Errorf("Between(3, 5) sum = %v want 12", sum)
	}
	r, ok := h.Range()
	if !ok || r.From != New(2024, 1, 1) || r.To != New(2024, 1, 10) {
		t.Errorf("Range() = %v, %v", r, ok)
	}
}
