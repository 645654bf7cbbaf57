package optimize

import (
	"errors"
	"math"

	gopt "gonum.org/v1/gonum/optimize"
)

// errSignal stops gonum optimization when a signal is received.
var errSignal = errors.New("exiting by signal")

// BFGS is an unconstrained quasi-Newton optimizer from gonum. Points
// outside the boundaries get +Inf, the backtracking line search then
// shortens the step.
type BFGS struct {
	BaseOptimizer
	dH float64
	// GradientThreshold is the gradient norm at which the
	// optimization converges.
	GradientThreshold float64
}

// NewBFGS creates a new BFGS optimizer.
func NewBFGS() *BFGS {
	return &BFGS{
		BaseOptimizer: BaseOptimizer{
			name:      "bfgs",
			repPeriod: 10,
		},
		dH:                1e-6,
		GradientThreshold: 1e-6,
	}
}

// Init is required by gonum Recorder.
func (b *BFGS) Init() error {
	return nil
}

// Record is called by gonum after every operation.
func (b *BFGS) Record(loc *gopt.Location, op gopt.Operation, s *gopt.Stats) error {
	if op == gopt.MajorIteration {
		b.i = s.MajorIterations
		if b.i%b.repPeriod == 0 {
			b.parameters.SetValues(loc.X)
			b.PrintLine(b.parameters, -loc.F)
		}
	}
	if b.signalled() {
		return errSignal
	}
	return nil
}

func (b *BFGS) fn(x []float64) float64 {
	if !b.parameters.ValuesInRange(x) {
		return math.Inf(+1)
	}
	b.parameters.SetValues(x)
	l := b.Likelihood()
	b.update(l)
	return -l
}

// grad is a forward difference gradient. Steps crossing the upper
// boundary are taken backwards.
func (b *BFGS) grad(grad, x []float64) {
	if !b.parameters.ValuesInRange(x) {
		for i := range grad {
			grad[i] = 0
		}
		return
	}
	no := b.Optimizable.Copy()
	par := no.GetFloatParameters()
	par.SetValues(x)
	l0 := -no.Likelihood()
	b.calls++
	for i := range x {
		h := b.dH
		if !par[i].ValueInRange(x[i] + h) {
			h = -h
		}
		par[i].Set(x[i] + h)
		grad[i] = (-no.Likelihood() - l0) / h
		b.calls++
		par[i].Set(x[i])
	}
}

// Run starts the optimization.
func (b *BFGS) Run(iterations int) {
	b.start()
	problem := gopt.Problem{
		Func: b.fn,
		Grad: b.grad,
	}
	settings := &gopt.Settings{
		MajorIterations:   iterations,
		GradientThreshold: b.GradientThreshold,
		Recorder:          b,
	}
	method := &gopt.BFGS{Linesearcher: &gopt.Backtracking{}}

	res, err := gopt.Minimize(problem, b.parameters.Values(nil), settings, method)
	switch {
	case err != nil:
		log.Warning("Optimization error:", err)
		b.status = err.Error()
	case res != nil:
		b.status = res.Status.String()
		if res.Status == gopt.IterationLimit {
			log.Warningf("Iterations exceeded (%d)", iterations)
		}
	}

	b.finish()
	if !b.Quiet {
		log.Info("Finished BFGS")
	}
}
