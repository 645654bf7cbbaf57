package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/ancgeno/amodel"
)

// writeCurve writes the curve as a tab-separated table.
func writeCurve(w io.Writer, curve []amodel.CurvePoint) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "freq\tobserved\tfitted")
	for _, p := range curve {
		fmt.Fprintf(bw, "%g\t%g\t%g\n", p.Freq, p.Observed, p.Fitted)
	}
	return bw.Flush()
}

// newCurvePlot creates a plot of the observed proportion of
// heterozygotes and the fitted curve. Bins without informative sites
// are not shown.
func newCurvePlot(curve []amodel.CurvePoint, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "modern derived allele frequency"
	p.Y.Label.Text = "heterozygote proportion"

	obs := make(plotter.XYs, 0, len(curve))
	fit := make(plotter.XYs, 0, len(curve))
	for _, c := range curve {
		if !math.IsNaN(c.Observed) {
			obs = append(obs, plotter.XY{X: c.Freq, Y: c.Observed})
		}
		fit = append(fit, plotter.XY{X: c.Freq, Y: c.Fitted})
	}

	if len(obs) > 0 {
		if err := plotutil.AddScatters(p, "observed", obs); err != nil {
			return nil, err
		}
	}
	if err := plotutil.AddLines(p, "fitted", fit); err != nil {
		return nil, err
	}
	return p, nil
}

func runCurve(conf *Config) *FitCommandSummary {
	d, err := readSitesFile(*curveInput, *curveFormat)
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
	m, s, err := fitNamed(*curveModel, d, conf, trajF, "")
	if err != nil {
		log.Fatal(err)
	}
	c, err := d.counts()
	if err != nil {
		log.Fatal(err)
	}
	c, _ = c.Polymorphic()
	curve := amodel.Curve(c, m)

	if err := writeCurve(os.Stdout, curve); err != nil {
		log.Fatal(err)
	}

	if *curvePlot != "" {
		p, err := newCurvePlot(curve, fmt.Sprintf("%s model, lnL=%.2f", m.Name(), s.Optimizer.MaxLnL))
		if err != nil {
			log.Fatal(err)
		}
		if err := p.Save(6*vg.Inch, 4*vg.Inch, *curvePlot); err != nil {
			log.Fatal("Error saving plot:", err)
		}
		log.Infof("Plot saved to %s", *curvePlot)
	}

	return &FitCommandSummary{
		Input: d.summary(),
		Fit:   s,
	}
}
