// Package sampling recovers the distribution of the number of derived
// alleles among n ancient haploids from the power moments computed by
// package ctmc.
//
// With moments Ey[j] = E[y^j] for j = 0..n the probability that a
// particular set of k haploids carries the derived allele and the
// other n-k carry the ancestral one is
//
//	P(k) = sum_{i=0}^{n-k} (-1)^i C(n-k, i) Ey[i+k],
//
// which is exact since the support is finite. The probability of
// observing k derived alleles in any of the haploids is C(n, k) P(k).
//
// The alternating sum cancels: the absolute error of C(n, k) P(k) is
// bounded by 3^n times the absolute error of the moments, about 3e-5
// for MaxHaploids.
package sampling

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"

	"bitbucket.org/Davydov/ancgeno/check"
)

// MaxHaploids is the largest number of haploids accepted. The
// binomial coefficients stay far below the int limit.
const MaxHaploids = 24

// Probs returns the len(freqs)×(n+1) matrix of P(k) (see the package
// documentation). ey should have n+1 rows (moment orders 0..n) and
// one column per frequency. P(k) does not include the C(n, k)
// combinatorial factor.
func Probs(ey mat.Matrix) (*mat.Dense, error) {
	rows, nf := ey.Dims()
	n := rows - 1
	if n < 1 {
		return nil, fmt.Errorf("%w: moment matrix should have at least 2 rows, got %d", check.ErrConfig, rows)
	}
	if n > MaxHaploids {
		return nil, fmt.Errorf("%w: %d haploids, at most %d are supported", check.ErrConfig, n, MaxHaploids)
	}
	probs := mat.NewDense(nf, n+1, nil)
	for j := 0; j < nf; j++ {
		for k := 0; k <= n; k++ {
			p := 0.0
			sign := 1.0
			for i := 0; i <= n-k; i++ {
				p += sign * float64(combin.Binomial(n-k, i)) * ey.At(i+k, j)
				sign = -sign
			}
			probs.Set(j, k, p)
		}
	}
	return probs, nil
}

// CountPMF returns the len(freqs)×(n+1) matrix of the probabilities
// of k derived alleles among the n haploids, C(n, k) P(k). Every row
// sums to 1.
func CountPMF(ey mat.Matrix) (*mat.Dense, error) {
	probs, err := Probs(ey)
	if err != nil {
		return nil, err
	}
	nf, c := probs.Dims()
	n := c - 1
	for k := 0; k <= n; k++ {
		b := float64(combin.Binomial(n, k))
		for j := 0; j < nf; j++ {
			probs.Set(j, k, b*probs.At(j, k))
		}
	}
	return probs, nil
}
