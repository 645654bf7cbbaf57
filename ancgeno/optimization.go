package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/rand"

	"bitbucket.org/Davydov/ancgeno/amodel"
	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/optimize"
)

// optimizerSettings stores settings for creation of a new optimizer.
type optimizerSettings struct {
	method     string
	iterations int
	report     int
	randomize  bool
	seed       int64
	trajF      io.Writer
}

// newOptimizerSettings creates a new optimizerSettings from the
// command line parameters and the configuration.
func newOptimizerSettings(conf *Config, trajF io.Writer) *optimizerSettings {
	return &optimizerSettings{
		method:     conf.method(*method),
		iterations: conf.iterations(*iterations),
		report:     *report,
		randomize:  *randomize,
		seed:       *seed,
		trajF:      trajF,
	}
}

// getOptimizer returns an optimizer from settings.
func (o *optimizerSettings) getOptimizer() (optimize.Optimizer, error) {
	switch o.method {
	case "lbfgsb":
		return optimize.NewLBFGSB(), nil
	case "bfgs":
		return optimize.NewBFGS(), nil
	case "simplex":
		return optimize.NewDS(), nil
	case "none":
		return optimize.NewNone(), nil
	}
	return nil, fmt.Errorf("%w: unknown optimization method: %s", check.ErrConfig, o.method)
}

// create creates and initializes a new optimizer.
func (o *optimizerSettings) create(m optimize.Optimizable) (optimize.Optimizer, error) {
	opt, err := o.getOptimizer()
	if err != nil {
		return nil, err
	}
	log.Infof("Using %s optimization.", o.method)

	opt.SetTrajectoryOutput(o.trajF)
	opt.SetOptimizable(m)
	opt.SetReportPeriod(o.report)
	opt.WatchSignals(watchedSignals...)
	return opt, nil
}

// runOptimization maximizes the likelihood of a model starting from
// the current parameter values updated by start.
func runOptimization(m amodel.Model, o *optimizerSettings, start map[string]float64) (FitSummary, error) {
	par := m.GetFloatParameters()
	switch {
	case len(start) > 0:
		if err := par.SetFromMap(start); err != nil {
			return FitSummary{}, err
		}
	case o.randomize:
		log.Info("Using uniform (in the boundaries) random starting point")
		par.Randomize(rand.NewSource(uint64(o.seed)))
	}
	if !par.InRange() {
		return FitSummary{}, fmt.Errorf("%w: initial parameters are not in the range: %s", check.ErrConfig, par.ValuesString())
	}

	opt, err := o.create(m)
	if err != nil {
		return FitSummary{}, err
	}
	log.Noticef("Optimizing %s model", m.Name())
	opt.Run(o.iterations)
	opt.PrintResults()

	s := opt.Summary()
	if err := check.Finite(s.MaxLnL); err != nil {
		return FitSummary{}, fmt.Errorf("%s model: %w", m.Name(), err)
	}
	return FitSummary{
		Model:     m.Name(),
		AIC:       amodel.AIC(m, s.MaxLnL),
		Optimizer: s,
	}, nil
}

// lastLine returns the last line of a file content.
func lastLine(fn string) (line string, err error) {
	f, err := os.Open(fn)
	if err != nil {
		return line, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line = scanner.Text()
	}
	err = scanner.Err()
	return line, err
}

// readStart sets parameters from a trajectory or a JSON file.
func readStart(m optimize.Optimizable, fn string) error {
	par := m.GetFloatParameters()
	l, err := lastLine(fn)
	if err == nil {
		err = par.ReadLine(l)
	}
	if err != nil {
		log.Debug("Reading start file as JSON")
		err2 := par.ReadFromJSON(fn)
		// fn is neither trajectory nor correct JSON
		if err2 != nil {
			log.Error("Error reading start position from JSON:", err2)
			return fmt.Errorf("error reading start position from trajectory file: %w", err)
		}
	}
	return nil
}

// openTrajectory opens the trajectory file, nil means no trajectory.
func openTrajectory() (io.WriteCloser, error) {
	if *outF == "" {
		return nil, nil
	}
	f, err := os.Create(*outF)
	if err != nil {
		return nil, fmt.Errorf("error creating trajectory file: %w", err)
	}
	return f, nil
}
