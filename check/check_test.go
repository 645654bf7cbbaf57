package check

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestFrequencies(tst *testing.T) {
	if err := Frequencies([]float64{0.1, 0.5, 0.999}); err != nil {
		tst.Error("Unexpected error:", err)
	}
	err := Frequencies([]float64{0.0, 0.4})
	if !errors.Is(err, ErrDomain) {
		tst.Fatal("Expected domain error, got", err)
	}
	if !strings.Contains(err.Error(), "monomorphic site present") {
		tst.Error("Error should mention monomorphic site:", err)
	}
	if err := Frequencies([]float64{0.3, 1}); !errors.Is(err, ErrDomain) {
		tst.Error("Expected domain error for frequency 1, got", err)
	}
	if err := Frequencies([]float64{math.NaN()}); !errors.Is(err, ErrDomain) {
		tst.Error("Expected domain error for NaN, got", err)
	}
}

func TestPositive(tst *testing.T) {
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := Positive("t", v); !errors.Is(err, ErrConfig) {
			tst.Errorf("t=%v: expected configuration error, got %v", v, err)
		}
	}
	if err := Positive("t", 1e-6); err != nil {
		tst.Error("Unexpected error:", err)
	}
}

func TestFraction(tst *testing.T) {
	for _, v := range []float64{0, 0.5, 1} {
		if err := Fraction("p", v); err != nil {
			tst.Errorf("p=%v: unexpected error %v", v, err)
		}
	}
	for _, v := range []float64{-0.01, 1.01, math.NaN()} {
		if err := Fraction("p", v); !errors.Is(err, ErrDomain) {
			tst.Errorf("p=%v: expected domain error, got %v", v, err)
		}
	}
}

func TestFinite(tst *testing.T) {
	if err := Finite(-12.5); err != nil {
		tst.Error("Unexpected error:", err)
	}
	if err := Finite(math.Inf(-1)); !errors.Is(err, ErrDegenerate) {
		tst.Error("Expected degenerate error, got", err)
	}
	idx := NonFinite([]float64{0, math.NaN(), -1, math.Inf(-1)})
	if len(idx) != 2 || idx[0] != 1 || idx[1] != 3 {
		tst.Error("Wrong non-finite indices:", idx)
	}
}

func TestSameLength(tst *testing.T) {
	if err := SameLength(3, []string{"het", "hom"}, 3, 3); err != nil {
		tst.Error("Unexpected error:", err)
	}
	if err := SameLength(3, []string{"het", "hom"}, 3, 2); !errors.Is(err, ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
}
