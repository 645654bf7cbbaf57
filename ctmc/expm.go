package ctmc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/ancgeno/check"
)

// tol is the relative truncation tolerance of the Taylor series
// (unit roundoff for double precision).
const tol = 0x1p-53

// thetas are the bounds of the scaled 1-norm for which the truncated
// Taylor series of degree m is accurate to tol (Al-Mohy & Higham,
// 2011, Table 3.1).
var thetas = []struct {
	m     int
	theta float64
}{
	{1, 2.29e-16}, {2, 2.58e-8}, {3, 1.39e-5}, {4, 3.40e-4}, {5, 2.40e-3},
	{6, 9.07e-3}, {7, 2.38e-2}, {8, 5.00e-2}, {9, 8.96e-2}, {10, 1.44e-1},
	{11, 2.14e-1}, {12, 3.00e-1}, {13, 4.00e-1}, {14, 5.14e-1}, {15, 6.41e-1},
	{16, 7.81e-1}, {17, 9.31e-1}, {18, 1.09}, {19, 1.26}, {20, 1.44},
	{21, 1.62}, {22, 1.82}, {23, 2.01}, {24, 2.22}, {25, 2.43},
	{26, 2.64}, {27, 2.86}, {28, 3.08}, {29, 3.31}, {30, 3.54},
	{35, 4.7}, {40, 6.0}, {45, 7.2}, {50, 8.5}, {55, 9.9},
}

// maxNorm is the largest 1-norm of t*A accepted by ExpmMultiply. It
// keeps the number of scaling steps within int.
const maxNorm = 1e12

// taylorDegree selects the Taylor degree m and the number of scaling
// steps s minimizing the number of matrix-vector products m*s given
// the 1-norm of t*A. Costs are compared in float64, the step count of
// low degrees does not fit int for large norms.
func taylorDegree(norm float64) (m, s int) {
	best := math.Inf(1)
	for _, th := range thetas {
		cs := math.Max(1, math.Ceil(norm/th.theta))
		if cost := float64(th.m) * cs; cost < best {
			best = cost
			m, s = th.m, int(cs)
		}
	}
	return
}

// ExpmMultiply computes exp(t*A)*B without forming exp(t*A), using
// the truncated Taylor series with scaling and a trace shift
// (Al-Mohy & Higham, 2011, Algorithm 3.2).
func ExpmMultiply(a mat.Matrix, t float64, b mat.Matrix) (*mat.Dense, error) {
	n, c := a.Dims()
	if n < 1 {
		return nil, fmt.Errorf("%w: empty matrix", check.ErrConfig)
	}
	if n != c {
		return nil, fmt.Errorf("%w: matrix is not square (%dx%d)", check.ErrConfig, n, c)
	}
	br, bc := b.Dims()
	if br != n {
		return nil, fmt.Errorf("%w: cannot multiply %dx%d matrix by %dx%d", check.ErrConfig, n, n, br, bc)
	}

	f := mat.DenseCopyOf(b)
	if t == 0 {
		return f, nil
	}

	mu := mat.Trace(a) / float64(n)
	sa := mat.DenseCopyOf(a)
	for i := 0; i < n; i++ {
		sa.Set(i, i, sa.At(i, i)-mu)
	}

	m, s := 0, 1
	norm := math.Abs(t) * mat.Norm(sa, 1)
	switch {
	case !(norm <= maxNorm):
		return nil, fmt.Errorf("%w: 1-norm %g of the scaled matrix is too large (t=%g)", check.ErrDegenerate, norm, t)
	case norm > 0:
		m, s = taylorDegree(norm)
	}
	log.Debugf("expm action: n=%d, t=%g, m=%d, s=%d", n, t, m, s)

	eta := math.Exp(t * mu / float64(s))
	v := mat.DenseCopyOf(f)
	tmp := mat.NewDense(n, bc, nil)
	inf := math.Inf(1)
	for i := 0; i < s; i++ {
		c1 := mat.Norm(v, inf)
		for j := 1; j <= m; j++ {
			tmp.Mul(sa, v)
			tmp.Scale(t/float64(s*j), tmp)
			v, tmp = tmp, v
			c2 := mat.Norm(v, inf)
			f.Add(f, v)
			if c1+c2 <= tol*mat.Norm(f, inf) {
				break
			}
			c1 = c2
		}
		f.Scale(eta, f)
		v.Copy(f)
	}

	raw := f.RawMatrix()
	for r := 0; r < raw.Rows; r++ {
		for _, x := range raw.Data[r*raw.Stride : r*raw.Stride+raw.Cols] {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: matrix exponential action did not converge (t=%g)", check.ErrDegenerate, t)
			}
		}
	}
	return f, nil
}
