package optimize

import (
	"math"

	lbfgsb "github.com/idavydov/go-lbfgsb"
)

// boundGap keeps the optimizer strictly inside the parameter
// boundaries, so the finite difference steps stay valid.
const boundGap = 1e-5

// LBFGSB is a limited-memory BFGS optimizer with box constraints. The
// gradient is computed numerically.
type LBFGSB struct {
	BaseOptimizer
	dH   float64
	grad []float64
	// stop is set on a signal, the minimizer then gets a flat
	// function and exits.
	stop bool
}

// NewLBFGSB creates a new LBFGSB optimizer.
func NewLBFGSB() *LBFGSB {
	return &LBFGSB{
		BaseOptimizer: BaseOptimizer{
			name:      "lbfgsb",
			repPeriod: 10,
		},
		dH: 1e-6,
	}
}

// Logger is called by lbfgsb after every iteration.
func (l *LBFGSB) Logger(info *lbfgsb.OptimizationIterationInformation) {
	l.i = info.Iteration
	if l.i%l.repPeriod == 0 {
		l.parameters.SetValues(info.X)
		l.PrintLine(l.parameters, -info.F)
	}
	if l.signalled() {
		l.stop = true
	}
}

// EvaluateFunction returns the negative log likelihood.
func (l *LBFGSB) EvaluateFunction(x []float64) float64 {
	if l.stop {
		return -l.maxL
	}
	if !l.parameters.ValuesInRange(x) {
		return math.Inf(+1)
	}
	l.parameters.SetValues(x)
	L := l.Likelihood()
	l.update(L)
	return -L
}

// EvaluateGradient computes the central difference gradient of the
// negative log likelihood.
func (l *LBFGSB) EvaluateGradient(x []float64) (grad []float64) {
	if l.grad == nil {
		l.grad = make([]float64, len(x))
	}
	grad = l.grad
	if l.stop {
		for i := range grad {
			grad[i] = 0
		}
		return
	}
	no := l.Optimizable.Copy()
	par := no.GetFloatParameters()
	for i := range x {
		par.SetValues(x)
		lo, hi := x[i]-l.dH, x[i]+l.dH
		if !par[i].ValueInRange(lo) {
			lo = x[i]
		}
		if !par[i].ValueInRange(hi) {
			hi = x[i]
		}
		par[i].Set(lo)
		l1 := -no.Likelihood()
		par[i].Set(hi)
		l2 := -no.Likelihood()
		l.calls += 2
		grad[i] = (l2 - l1) / (hi - lo)
	}
	return
}

// Run starts the optimization. Iterations are controlled by the
// convergence tolerance of lbfgsb.
func (l *LBFGSB) Run(iterations int) {
	l.start()
	bounds := make([][2]float64, len(l.parameters))
	x0 := l.parameters.Values(nil)

	for i, par := range l.parameters {
		bounds[i][0] = par.GetMin() + boundGap
		bounds[i][1] = par.GetMax() - boundGap
		x0[i] = math.Min(math.Max(x0[i], bounds[i][0]), bounds[i][1])
	}

	opt := new(lbfgsb.Lbfgsb)
	opt.SetApproximationSize(10)
	opt.SetFTolerance(1e-9)
	opt.SetGTolerance(1e-9)

	opt.SetBounds(bounds)
	opt.SetLogger(l.Logger)

	_, exitStatus := opt.Minimize(l, x0)
	l.status = exitStatus.String()

	log.Info("Exit status: ", exitStatus)
	if l.i > iterations {
		log.Warningf("Iterations exceeded (%d)", iterations)
	}

	l.finish()
	if !l.Quiet {
		log.Info("Finished LBFGSB")
	}
}
