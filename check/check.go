// Package check defines error kinds shared by the likelihood packages
// and validators for frequencies and model parameters.
package check

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds. All errors returned by the likelihood packages wrap
// one of these, so callers can use errors.Is.
var (
	// ErrDomain is returned for inputs outside of the model
	// domain: monomorphic frequencies, admixture fraction outside
	// of [0, 1], inconsistent event ordering.
	ErrDomain = errors.New("domain error")
	// ErrDegenerate is returned when a computation produced a
	// non-finite value.
	ErrDegenerate = errors.New("numerically degenerate")
	// ErrConfig is returned for invalid configuration:
	// non-positive branch lengths, mismatching dimensions.
	ErrConfig = errors.New("configuration error")
)

// Frequencies checks that every frequency is strictly between 0 and
// 1.
func Frequencies(freqs []float64) error {
	for i, x := range freqs {
		if x == 0 || x == 1 {
			return fmt.Errorf("%w: monomorphic site present (frequency %v at %d); remove sites that are monomorphic in modern population",
				ErrDomain, x, i)
		}
		if !(x > 0 && x < 1) {
			return fmt.Errorf("%w: frequency %v at %d is outside of (0, 1)", ErrDomain, x, i)
		}
	}
	return nil
}

// Positive checks that a named branch length is positive and finite.
func Positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return fmt.Errorf("%w: %s=%v should be positive", ErrConfig, name, v)
	}
	return nil
}

// Fraction checks that v is in [0, 1].
func Fraction(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%w: %s=%v is not in [0,1]", ErrDomain, name, v)
	}
	return nil
}

// SameLength checks that every slice length equals n.
func SameLength(n int, names []string, lens ...int) error {
	for i, l := range lens {
		if l != n {
			name := "?"
			if i < len(names) {
				name = names[i]
			}
			return fmt.Errorf("%w: %s has length %d, expected %d", ErrConfig, name, l, n)
		}
	}
	return nil
}

// Finite returns ErrDegenerate if lnL is NaN or infinite.
func Finite(lnL float64) error {
	if math.IsNaN(lnL) || math.IsInf(lnL, 0) {
		return fmt.Errorf("%w: log likelihood is %v", ErrDegenerate, lnL)
	}
	return nil
}

// NonFinite returns indices of all the non-finite values.
func NonFinite(v []float64) (idx []int) {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			idx = append(idx, i)
		}
	}
	return
}
