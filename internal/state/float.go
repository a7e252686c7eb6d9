package state

import (
	"math"
	"strconv"
)

// Float is a float64 that serializes rounded to 2 decimal places.
// The stored value keeps full precision; rounding happens only in MarshalJSON.
type Float float64

// Round2 returns f rounded to 2 decimal places. Rounding is done on the
// exact binary value with ties to even, so 0.125 becomes 0.12 and 2.675
// (stored as 2.67499...) becomes 2.67.
func Round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	if err != nil || r == 0 {
		return 0 // also drops negative zero
	}
	return r
}

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, Round2(v), 'f', -1, 64), nil
}
