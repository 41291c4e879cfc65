package blocks

import (
	"math"
	"strconv"
)

// cutpointPrecision is the number of decimals cutpoints are rounded to.
const cutpointPrecision = 6

// Interval is a closed numeric range [Low, High]. It is comparable and used
// directly as part of a map key.
type Interval struct {
	Low, High float64
}

// Contains reports whether Low <= v <= High.
func (iv Interval) Contains(v float64) bool { return v >= iv.Low && v <= iv.High }

// Tighten returns the intersection of two ranges: the larger low bound and the
// smaller high bound.
func (iv Interval) Tighten(o Interval) Interval {
	return Interval{Low: math.Max(iv.Low, o.Low), High: math.Min(iv.High, o.High)}
}

// String renders "low..high" with the shortest exact float formatting.
func (iv Interval) String() string {
	return formatFloat(iv.Low) + ".." + formatFloat(iv.High)
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func roundCutpoint(f float64) float64 {
	p := math.Pow(10, cutpointPrecision)
	return math.Round(f*p) / p
}

// Value is the right-hand side of an attribute-value pair: a symbol for a
// symbolic attribute or an interval for a numeric one.
type Value struct {
	Symbol   string
	Interval Interval
	Numeric  bool
}

// Symbol returns a symbolic value.
func Symbol(s string) Value { return Value{Symbol: s} }

// Range returns a numeric interval value.
func Range(low, high float64) Value {
	return Value{Interval: Interval{Low: low, High: high}, Numeric: true}
}

func (v Value) String() string {
	if v.Numeric {
		return v.Interval.String()
	}
	return v.Symbol
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
