// Package axis computes chart value axes: nice tick domains and unit scaled labels.
package axis

import (
	"fmt"
	"math"
	"strings"
)

// TickCount is the number of ticks of every scale.
const TickCount = 5

// MetricKind tells how values of an axis are formatted.
type MetricKind int

const (
	Currency MetricKind = iota
	EPS
	Shares
	Percent
	Ratio
)

func (k MetricKind) String() string {
	switch k {
	case Currency:
		return "currency"
	case EPS:
		return "eps"
	case Shares:
		return "shares"
	case Percent:
		return "percent"
	case Ratio:
		return "ratio"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseMetricKind reads a metric kind name. The empty string is Currency.
func ParseMetricKind(s string) (MetricKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "currency", "":
		return Currency, nil
	case "eps":
		return EPS, nil
	case "shares":
		return Shares, nil
	case "percent", "pct", "%":
		return Percent, nil
	case "ratio":
		return Ratio, nil
	default:
		return Currency, fmt.Errorf("unknown metric kind %q", s)
	}
}

// Scale is a value axis.
type Scale struct {
	Kind   MetricKind `json:"-"`
	Min    float64    `json:"min"`
	Max    float64    `json:"max"`
	Step   float64    `json:"step"`
	Ticks  []float64  `json:"ticks"`
	Labels []string   `json:"labels"`
}

// ComputeYAxisScale returns a 5 ticks scale containing every finite value.
//
// The step follows the 1-2-5 progression. The domain is [0, 4*step] when no
// value is negative, [-4*step, 0] when no value is positive and
// [-2*step, 2*step] otherwise. Without any non zero value the step is 1.
func ComputeYAxisScale(values []float64, kind MetricKind) Scale {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}

	var raw, from float64
	switch {
	case lo >= 0:
		raw = hi / (TickCount - 1)
	case hi <= 0:
		raw = -lo / (TickCount - 1)
		from = -(TickCount - 1)
	default:
		raw = max(-lo, hi) / 2
		from = -2
	}
	step := 1.0
	if raw > 0 {
		step = NiceStep(raw)
	}

	s := Scale{Kind: kind, Step: step, Ticks: make([]float64, TickCount), Labels: make([]string, TickCount)}
	for i := range s.Ticks {
		s.Ticks[i] = (from + float64(i)) * step
		s.Labels[i] = s.Format(s.Ticks[i])
	}
	s.Min, s.Max = s.Ticks[0], s.Ticks[TickCount-1]
	return s
}

// NiceStep returns the smallest 1, 2 or 5 times a power of ten that is at
// least raw. raw must be positive.
func NiceStep(raw float64) float64 {
	const eps = 1e-9
	exp := math.Floor(math.Log10(raw))
	pow := math.Pow(10, exp)
	f := raw / pow
	switch {
	case f <= 1+eps:
		return pow
	case f <= 2+eps:
		return 2 * pow
	case f <= 5+eps:
		return 5 * pow
	default:
		return 10 * pow
	}
}

// Format renders v the way the scale labels are rendered.
func (s Scale) Format(v float64) string { return Format(v, s.Kind) }

var units = []struct {
	suffix string
	size   float64
}{
	{"T", 1e12},
	{"B", 1e9},
	{"M", 1e6},
	{"K", 1e3},
	{"", 1},
}

// Compact renders v with a K/M/B/T suffix. Amounts of at least 5 units have no
// decimals, smaller ones have one. The unit is chosen on the rounded amount, so
// 999.96 is "1.0K" rather than "1000".
func Compact(v float64) string {
	if v == 0 {
		return "0"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	i := len(units) - 1
	for j, u := range units {
		if v >= u.size {
			i = j
			break
		}
	}
	for {
		scaled := v / units[i].size
		decimals := 1
		if math.Round(scaled*10)/10 >= 5 {
			decimals = 0
		}
		if i > 0 && roundTo(scaled, decimals) >= 1000 {
			i--
			continue
		}
		return fmt.Sprintf("%s%.*f%s", sign, decimals, scaled, units[i].suffix)
	}
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// Format renders v for a metric kind.
func Format(v float64, kind MetricKind) string {
	switch kind {
	case Currency:
		return dollars(Compact(v))
	case EPS:
		if math.Abs(v) < 1000 {
			return dollars(fmt.Sprintf("%.2f", v))
		}
		return dollars(Compact(v))
	case Percent:
		return Compact(v) + "%"
	case Ratio:
		return Compact(v) + "x"
	default:
		return Compact(v)
	}
}

func dollars(s string) string {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return "-$" + rest
	}
	return "$" + s
}
