package main

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"bitbucket.org/Davydov/ancgeno/amodel"
)

const (
	// minLrt is the minimal tolerated LRT value.
	minLrt = 1e-6
)

// fitNamed creates a model and maximizes its likelihood.
func fitNamed(name string, d *siteData, conf *Config, trajF io.Writer, startF string) (amodel.Model, FitSummary, error) {
	m, err := newModel(name, d, conf)
	if err != nil {
		return nil, FitSummary{}, err
	}
	if startF != "" {
		if err := readStart(m, startF); err != nil {
			return nil, FitSummary{}, err
		}
	}
	o := newOptimizerSettings(conf, trajF)
	s, err := runOptimization(m, o, nil)
	if err != nil {
		return nil, FitSummary{}, err
	}
	log.Noticef("%s: lnL=%f, AIC=%f", s.Model, s.Optimizer.MaxLnL, s.AIC)
	return m, s, nil
}

func runFit(conf *Config) *FitCommandSummary {
	d, err := readSitesFile(*fitInput, *fitFormat)
	if err != nil {
		log.Fatal(err)
	}
	trajF, err := openTrajectory()
	if err != nil {
		log.Fatal(err)
	}
	if trajF != nil {
		defer trajF.Close()
	}
	_, s, err := fitNamed(*fitModel, d, conf, trajF, *fitStartF)
	if err != nil {
		log.Fatal(err)
	}
	return &FitCommandSummary{
		Input: d.summary(),
		Fit:   s,
	}
}

// lrt performs the likelihood ratio test of nested models.
func lrt(h0, h1 FitSummary, df int) LRTSummary {
	d := 2 * (h1.Optimizer.MaxLnL - h0.Optimizer.MaxLnL)
	if d < minLrt {
		if d < -minLrt {
			log.Warningf("Negative LR (D=%g); models are not strictly nested", d)
		}
		d = 0
	}
	chi := distuv.ChiSquared{K: float64(df)}
	return LRTSummary{
		H0:     h0.Model,
		H1:     h1.Model,
		D:      d,
		DF:     df,
		PValue: chi.Survival(d),
	}
}

// bestAIC returns the model with the minimal AIC.
func bestAIC(fits []FitSummary) string {
	best := ""
	minAIC := math.Inf(1)
	for _, f := range fits {
		if f.AIC < minAIC {
			minAIC = f.AIC
			best = f.Model
		}
	}
	return best
}

func runCompare(conf *Config) *CompareSummary {
	d, err := readSitesFile(*cmpInput, *cmpFormat)
	if err != nil {
		log.Fatal(err)
	}
	trajF, err := openTrajectory()
	if err != nil {
		log.Fatal(err)
	}
	if trajF != nil {
		defer trajF.Close()
	}
	summary := &CompareSummary{Input: d.summary()}

	log.Notice("Running single lineage model")
	_, anc, err := fitNamed("anc", d, conf, trajF, "")
	if err != nil {
		log.Fatal(err)
	}
	log.Notice("Running split model (H0)")
	_, split, err := fitNamed("split", d, conf, trajF, "")
	if err != nil {
		log.Fatal(err)
	}
	log.Notice("Running mixture model (H1)")
	mix, err := fitMixture(d, conf, trajF, anc, split)
	if err != nil {
		log.Fatal(err)
	}
	summary.Fits = []FitSummary{anc, split, mix}
	summary.Best = bestAIC(summary.Fits)
	summary.LRT = lrt(split, mix, 1)

	names := make([]string, 0, len(summary.Fits))
	for _, f := range summary.Fits {
		names = append(names, fmt.Sprintf("%s=%f", f.Model, f.AIC))
	}
	sort.Strings(names)
	log.Noticef("AIC: %v, best model: %s", names, summary.Best)
	log.Noticef("LRT %s vs %s: D=%g, p-value=%g", summary.LRT.H1, summary.LRT.H0, summary.LRT.D, summary.LRT.PValue)
	return summary
}

// fitMixture fits the mixture model starting from the single lineage
// and the split model estimates. If the result is worse than the split
// model, it is rerun from the split model point.
func fitMixture(d *siteData, conf *Config, trajF io.Writer, anc, split FitSummary) (FitSummary, error) {
	m, err := newModel("mixture", d, conf)
	if err != nil {
		return FitSummary{}, err
	}
	// the split model is the mixture with p=0
	h0par := map[string]float64{
		"t1": anc.Optimizer.MaxLParameters["t"],
		"t2": split.Optimizer.MaxLParameters["t1"],
		"t3": split.Optimizer.MaxLParameters["t2"],
		"p":  m.GetFloatParameters()[3].GetMin(),
	}
	o := newOptimizerSettings(conf, trajF)
	// the first run starts with equal component weights
	start := map[string]float64{"p": 0.5}
	for k, v := range h0par {
		if k != "p" {
			start[k] = v
		}
	}
	s, err := runOptimization(m, o, clampStart(m, start))
	if err != nil {
		return FitSummary{}, err
	}
	if lr := 2 * (s.Optimizer.MaxLnL - split.Optimizer.MaxLnL); lr < 0 {
		log.Noticef("Rerunning mixture model because of negative LR (D=%g)", lr)
		s2, err := runOptimization(m, o, clampStart(m, h0par))
		if err != nil {
			return FitSummary{}, err
		}
		if s2.Optimizer.MaxLnL > s.Optimizer.MaxLnL {
			s = s2
		}
	}
	return s, nil
}

// clampStart moves starting values into the parameter boundaries.
func clampStart(m amodel.Model, start map[string]float64) map[string]float64 {
	res := make(map[string]float64, len(start))
	for _, par := range m.GetFloatParameters() {
		v, ok := start[par.Name()]
		if !ok {
			continue
		}
		res[par.Name()] = math.Min(math.Max(v, par.GetMin()), par.GetMax())
	}
	return res
}
