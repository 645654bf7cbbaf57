// Package ctmc propagates power moments of the derived allele
// frequency through time for a sample of n ancient haploids.
//
// Moment k (k = 1..n) is the probability that k lineages sampled
// from the ancient population all carry the derived allele. Its time
// evolution under drift is linear, so a vector of moments evolves by
// the action of the matrix exponential of a lower bidiagonal
// generator.
package ctmc

import (
	"fmt"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/drift"
)

// log is a global logging variable.
var log = logging.MustGetLogger("ctmc")

// Generator returns the n×n drift generator used after the split.
// In 1-based indexing Q[i,i] = -i(i-1)/2 and Q[i,i-1] = i(i-1)/2.
func Generator(n int) *mat.Dense {
	q := mat.NewDense(n, n, nil)
	for i := 1; i <= n; i++ {
		r := float64(i*(i-1)) / 2
		q.Set(i-1, i-1, -r)
		if i > 1 {
			q.Set(i-1, i-2, r)
		}
	}
	return q
}

// DescentGenerator returns the n×n generator for the branch between
// the ancient sample and the split, where the moments are
// conditioned on descent from a modern lineage. In 1-based indexing
// Qd[i,i] = -i(i+1)/2 and Qd[i,i-1] = i(i-1)/2.
func DescentGenerator(n int) *mat.Dense {
	q := mat.NewDense(n, n, nil)
	for i := 1; i <= n; i++ {
		q.Set(i-1, i-1, -float64(i*(i+1))/2)
		if i > 1 {
			q.Set(i-1, i-2, float64(i*(i-1))/2)
		}
	}
	return q
}

// MomentSeed returns the n×len(freqs) matrix with x^k in row k-1 and
// the column of frequency x.
func MomentSeed(freqs []float64, n int) *mat.Dense {
	s := mat.NewDense(n, len(freqs), nil)
	for j, x := range freqs {
		p := 1.0
		for k := 0; k < n; k++ {
			p *= x
			s.Set(k, j, p)
		}
	}
	return s
}

// Chain holds both generators for n ancient haploids. It is not
// modified after creation and can be used concurrently.
type Chain struct {
	n  int
	q  *mat.Dense
	qd *mat.Dense
}

// NewChain creates a Chain for n haploids.
func NewChain(n int) (*Chain, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: number of ancient haploids should be positive, got %d", check.ErrConfig, n)
	}
	return &Chain{
		n:  n,
		q:  Generator(n),
		qd: DescentGenerator(n),
	}, nil
}

// N returns the number of haploids.
func (c *Chain) N() int {
	return c.n
}

// Moments returns the (n+1)×len(freqs) matrix of moments of orders
// 0..n for the ancient sample given modern frequencies. Row 0 is
// always 1.
func (c *Chain) Moments(freqs []float64, p drift.SplitParams) (*mat.Dense, error) {
	if len(freqs) == 0 {
		return nil, fmt.Errorf("%w: no frequencies", check.ErrConfig)
	}
	for i, x := range freqs {
		if !(x >= 0 && x <= 1) {
			return nil, fmt.Errorf("%w: frequency %v at %d is outside of [0, 1]", check.ErrDomain, x, i)
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	x := MomentSeed(freqs, c.n)
	backward, err := ExpmMultiply(c.qd, p.T1, x)
	if err != nil {
		return nil, err
	}
	forward, err := ExpmMultiply(c.q, p.T2, backward)
	if err != nil {
		return nil, err
	}

	ey := mat.NewDense(c.n+1, len(freqs), nil)
	for j := range freqs {
		ey.Set(0, j, 1)
	}
	ey.Slice(1, c.n+1, 0, len(freqs)).(*mat.Dense).Copy(forward)
	return ey, nil
}

// Moments is a shortcut creating a Chain for n haploids and
// computing moments.
func Moments(freqs []float64, n int, p drift.SplitParams) (*mat.Dense, error) {
	c, err := NewChain(n)
	if err != nil {
		return nil, err
	}
	return c.Moments(freqs, p)
}
