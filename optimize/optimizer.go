// Package optimize implements likelihood maximizers working on any
// model exposing bounded float parameters.
package optimize

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/op/go-logging"
)

// log is a global logging variable.
var log = logging.MustGetLogger("optimize")

// Optimizable is a model which can be maximized.
type Optimizable interface {
	GetFloatParameters() FloatParameters
	Copy() Optimizable
	Likelihood() float64
}

// Optimizer maximizes the likelihood of an Optimizable.
type Optimizer interface {
	SetOptimizable(Optimizable)
	SetTrajectoryOutput(io.Writer)
	WatchSignals(...os.Signal)
	SetReportPeriod(period int)
	Run(iterations int)
	GetMaxL() float64
	GetMaxLParameters() []float64
	PrintResults()
	Summary() Summary
}

// Summary stores the optimization results.
type Summary struct {
	// Optimizer is the optimizer name.
	Optimizer string `json:"optimizer"`
	// Status is the exit status reported by the optimizer.
	Status string `json:"status,omitempty"`
	// MaxLnL is the maximum log likelihood.
	MaxLnL float64 `json:"maxLnL"`
	// MaxLParameters is the maximum likelihood parameter values.
	MaxLParameters map[string]float64 `json:"maxLParameters"`
	// Iterations is the number of optimizer iterations.
	Iterations int `json:"iterations"`
	// LikelihoodCalls is the number of likelihood evaluations.
	LikelihoodCalls int `json:"likelihoodCalls"`
	// Time is the optimization time in seconds.
	Time float64 `json:"time"`
}

// BaseOptimizer stores the state shared by all the optimizers.
type BaseOptimizer struct {
	Optimizable
	parameters FloatParameters
	name       string
	status     string
	i          int
	l          float64
	maxL       float64
	maxLPar    []float64
	calls      int
	repPeriod  int
	sig        chan os.Signal
	output     io.Writer
	startTime  time.Time
	endTime    time.Time
	// Quiet disables the trajectory and the final report.
	Quiet bool
}

// SetOptimizable sets the model to maximize.
func (o *BaseOptimizer) SetOptimizable(opt Optimizable) {
	o.Optimizable = opt
	o.parameters = opt.GetFloatParameters()
	o.maxL = math.Inf(-1)
	o.maxLPar = o.parameters.Values(nil)
}

// SetTrajectoryOutput sets the trajectory writer; nil disables the
// trajectory.
func (o *BaseOptimizer) SetTrajectoryOutput(w io.Writer) {
	o.output = w
}

// WatchSignals stops the optimization on any of these signals.
func (o *BaseOptimizer) WatchSignals(sigs ...os.Signal) {
	o.sig = make(chan os.Signal, 1)
	signal.Notify(o.sig, sigs...)
}

// SetReportPeriod sets how often the trajectory is written.
func (o *BaseOptimizer) SetReportPeriod(period int) {
	o.repPeriod = period
}

// signalled checks for a pending signal without blocking.
func (o *BaseOptimizer) signalled() bool {
	select {
	case s := <-o.sig:
		log.Warningf("Received signal %v, exiting.", s)
		return true
	default:
		return false
	}
}

// start is called in the beginning of Run.
func (o *BaseOptimizer) start() {
	o.startTime = time.Now()
	if o.repPeriod <= 0 {
		o.repPeriod = 1
	}
	o.PrintHeader()
}

// finish restores the maximum likelihood parameters in the model.
func (o *BaseOptimizer) finish() {
	o.endTime = time.Now()
	if err := o.parameters.SetValues(o.maxLPar); err != nil {
		log.Error(err)
	}
}

// update records a likelihood value of the current parameters.
func (o *BaseOptimizer) update(l float64) {
	o.calls++
	o.l = l
	if l > o.maxL {
		o.maxL = l
		o.maxLPar = o.parameters.Values(o.maxLPar)
	}
}

// PrintHeader writes the trajectory header.
func (o *BaseOptimizer) PrintHeader() {
	if !o.Quiet && o.output != nil {
		fmt.Fprintf(o.output, "iteration\tlikelihood\t%s\n", o.parameters.NamesString())
	}
}

// PrintLine writes a trajectory line.
func (o *BaseOptimizer) PrintLine(par FloatParameters, l float64) {
	if !o.Quiet && o.output != nil {
		fmt.Fprintf(o.output, "%d\t%f\t%s\n", o.i, l, par.ValuesString())
	}
}

// PrintResults logs the maximum likelihood estimates.
func (o *BaseOptimizer) PrintResults() {
	if o.Quiet {
		return
	}
	log.Noticef("Maximum likelihood: %v", o.maxL)
	log.Infof("Likelihood function calls: %v", o.calls)
	log.Infof("Parameter  names: %v", o.parameters.NamesString())
	log.Infof("Parameter values: %v", o.maxLPar)
}

// GetMaxL returns the maximum log likelihood.
func (o *BaseOptimizer) GetMaxL() float64 {
	return o.maxL
}

// GetMaxLParameters returns the maximum likelihood parameter values.
func (o *BaseOptimizer) GetMaxLParameters() []float64 {
	return o.maxLPar
}

// Summary returns the optimization summary.
func (o *BaseOptimizer) Summary() Summary {
	par := make(map[string]float64, len(o.parameters))
	for i, name := range o.parameters.Names(nil) {
		par[name] = o.maxLPar[i]
	}
	return Summary{
		Optimizer:       o.name,
		Status:          o.status,
		MaxLnL:          o.maxL,
		MaxLParameters:  par,
		Iterations:      o.i,
		LikelihoodCalls: o.calls,
		Time:            o.endTime.Sub(o.startTime).Seconds(),
	}
}
