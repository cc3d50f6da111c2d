//go:build !ios && !android && (amd64 || arm64)

package avutil

import "fmt"

// Rational is an FFmpeg AVRational.
type Rational struct {
	Num int32 // Numerator
	Den int32 // Denominator
}

// NewRational returns num/den.
func NewRational(num, den int32) Rational {
	return Rational{Num: num, Den: den}
}

// Valid reports whether the denominator is positive, which FFmpeg requires
// of a time base.
func (r Rational) Valid() bool {
	return r.Den > 0
}

// Float64 converts the rational to a float64, 0 when Den is 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// String formats the rational as "num/den", the form filter options expect.
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
