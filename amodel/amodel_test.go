package amodel

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/ancgeno/agg"
	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/drift"
	"bitbucket.org/Davydov/ancgeno/gtlike"
	"bitbucket.org/Davydov/ancgeno/optimize"
	"bitbucket.org/Davydov/ancgeno/reads"
)

const smallDiff = 1e-9

func init() {
	logging.SetLevel(logging.WARNING, "amodel")
	logging.SetLevel(logging.WARNING, "optimize")
	logging.SetLevel(logging.WARNING, "gtlike")
}

func TestAncLnL(tst *testing.T) {
	l, err := AncLnL(drift.AncParams{T: 0.5}, []float64{0.5}, []float64{10}, []float64{5})
	if err != nil {
		tst.Fatal("Error:", err)
	}
	h := drift.HetAnc(0.5, 0.5)
	want := 10*math.Log(h) + 5*math.Log(1-h)
	if l != want {
		tst.Errorf("Expected %v, got %v", want, l)
	}
	tst.Log("lnL=", l)
}

func TestMonomorphic(tst *testing.T) {
	freqs := []float64{0.0, 0.4}
	het := []float64{1, 2}
	hom := []float64{3, 4}
	_, errAnc := AncLnL(drift.AncParams{T: 1}, freqs, het, hom)
	_, errSplit := SplitLnL(drift.SplitParams{T1: 1, T2: 1}, freqs, het, hom)
	_, errMix := MixtureLnL(drift.MixtureParams{T1: 1, T2: 1, T3: 1, P: 0.5}, freqs, het, hom)
	_, errGL := GLLnL(drift.SplitParams{T1: 1, T2: 1}, freqs, [][3]float64{{1, 0, 0}, {0, 1, 0}})
	for i, err := range []error{errAnc, errSplit, errMix, errGL} {
		if !errors.Is(err, check.ErrDomain) {
			tst.Errorf("%d: expected domain error, got %v", i, err)
			continue
		}
		if !strings.Contains(err.Error(), "monomorphic site present") {
			tst.Errorf("%d: wrong error message: %v", i, err)
		}
	}
}

func TestMixtureLimits(tst *testing.T) {
	freqs := []float64{0.1, 0.35, 0.6, 0.9}
	het := []float64{3, 10, 7, 2}
	hom := []float64{20, 11, 4, 9}
	la, _ := AncLnL(drift.AncParams{T: 0.3}, freqs, het, hom)
	ls, _ := SplitLnL(drift.SplitParams{T1: 0.2, T2: 0.7}, freqs, het, hom)
	l1, err := MixtureLnL(drift.MixtureParams{T1: 0.3, T2: 0.2, T3: 0.7, P: 1}, freqs, het, hom)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	l0, err := MixtureLnL(drift.MixtureParams{T1: 0.3, T2: 0.2, T3: 0.7, P: 0}, freqs, het, hom)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if math.Abs(l1-la) > smallDiff {
		tst.Errorf("p=1 should give the single lineage model: %v != %v", l1, la)
	}
	if math.Abs(l0-ls) > smallDiff {
		tst.Errorf("p=0 should give the split model: %v != %v", l0, ls)
	}
}

func TestParameterErrors(tst *testing.T) {
	freqs := []float64{0.4}
	het := []float64{1}
	hom := []float64{1}
	if _, err := MixtureLnL(drift.MixtureParams{T1: 1, T2: 1, T3: 1, P: 1.2}, freqs, het, hom); !errors.Is(err, check.ErrDomain) {
		tst.Error("Expected domain error, got", err)
	}
	if _, err := AncLnL(drift.AncParams{T: 0}, freqs, het, hom); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
	if _, err := SplitLnL(drift.SplitParams{T1: 1, T2: 1}, freqs, het, []float64{1, 2}); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
	if _, err := GLLnL(drift.SplitParams{T1: 1, T2: 1}, freqs, nil); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
}

func TestGLCalled(tst *testing.T) {
	p := drift.SplitParams{T1: 0.1, T2: 0.4}
	freqs := []float64{0.2, 0.5, 0.7}
	gl := [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	l, err := GLLnL(p, freqs, gl)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	want := 0.0
	for i, x := range freqs {
		anc, het, der := drift.SplitMoments(x, p.T1, p.T2)
		want += math.Log([]float64{anc, het, der}[i])
	}
	if math.Abs(l-want) > smallDiff {
		tst.Errorf("Expected %v, got %v", want, l)
	}
}

func TestGLDegenerate(tst *testing.T) {
	p := drift.SplitParams{T1: 0.1, T2: 0.4}
	ls, err := GLSiteLnLs(p, []float64{0.3, 0.3}, [][3]float64{{0.2, 0.5, 0.3}, {0, 0, 0}})
	if err != nil {
		tst.Fatal("Degenerate rows should not be an error:", err)
	}
	if bad := check.NonFinite(ls); len(bad) != 1 || bad[0] != 1 {
		tst.Error("Expected non-finite second site, got", ls)
	}
	l, _ := GLLnL(p, []float64{0.3, 0.3}, [][3]float64{{0.2, 0.5, 0.3}, {0, 0, 0}})
	if err := check.Finite(l); !errors.Is(err, check.ErrDegenerate) {
		tst.Error("Expected degenerate error, got", err)
	}
}

func TestPure(tst *testing.T) {
	p := drift.MixtureParams{T1: 0.3, T2: 0.2, T3: 0.7, P: 0.4}
	freqs := []float64{0.1, 0.5}
	het := []float64{2.5, 1}
	hom := []float64{7, 3}
	l1, _ := MixtureLnL(p, freqs, het, hom)
	l2, _ := MixtureLnL(p, freqs, het, hom)
	if l1 != l2 {
		tst.Error("Repeated evaluation differs:", l1, l2)
	}
}

// expectedCounts returns counts proportional to the model
// expectation, which is the maximum of the binomial likelihood.
func expectedCounts(freqs []float64, h func(x float64) float64, n float64) (het, hom []float64) {
	for _, x := range freqs {
		het = append(het, n*h(x))
		hom = append(hom, n*(1-h(x)))
	}
	return
}

func testFreqs() (freqs []float64) {
	for i := 1; i < 20; i++ {
		freqs = append(freqs, float64(i)/20)
	}
	return
}

func TestFitSplit(tst *testing.T) {
	if testing.Short() {
		tst.Skip("skipping optimization in short mode")
	}
	freqs := testFreqs()
	het, hom := expectedCounts(freqs, func(x float64) float64 { return drift.HetSplit(x, 0.2, 0.1) }, 1000)
	m, err := NewSplit(freqs, het, hom)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	opt := optimize.NewLBFGSB()
	opt.Quiet = true
	opt.SetOptimizable(m)
	opt.Run(1000)
	tst.Log("t1=", m.T1, "t2=", m.T2)
	if math.Abs(m.T1-0.2) > 0.02 || math.Abs(m.T2-0.1) > 0.02 {
		tst.Errorf("Wrong estimates: %v", m.SplitParams)
	}
}

func TestFitAnc(tst *testing.T) {
	if testing.Short() {
		tst.Skip("skipping optimization in short mode")
	}
	freqs := testFreqs()
	het, hom := expectedCounts(freqs, func(x float64) float64 { return drift.HetAnc(x, 0.3) }, 1000)
	m, err := NewAnc(freqs, het, hom)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	opt := optimize.NewDS()
	opt.Quiet = true
	opt.SetOptimizable(m)
	opt.Run(10000)
	if math.Abs(m.T-0.3) > 0.01 {
		tst.Errorf("Wrong estimate: %v", m.AncParams)
	}
}

func TestCopy(tst *testing.T) {
	freqs := []float64{0.2, 0.6}
	m, err := NewMixture(freqs, []float64{3, 4}, []float64{5, 1})
	if err != nil {
		tst.Fatal("Error:", err)
	}
	m.GetFloatParameters()[3].SetMax(0.8)
	l := m.Likelihood()
	c := m.Copy().(*Mixture)
	if c.Likelihood() != l {
		tst.Error("Copy has different likelihood:", c.Likelihood(), l)
	}
	if c.GetFloatParameters()[3].GetMax() != 0.8 {
		tst.Error("Boundaries are not copied")
	}
	c.GetFloatParameters()[0].Set(2)
	if m.T1 == 2 || c.T1 != 2 {
		tst.Error("Copy shares parameters with the original")
	}
}

func TestSetRanges(tst *testing.T) {
	m, err := NewSplit([]float64{0.5}, []float64{1}, []float64{1})
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if m.T1 != SplitRanges["t1"].Start {
		tst.Error("Default start is not set:", m.T1)
	}
	if err := SetRanges(m, map[string]Range{"t1": {Start: 2, Min: 1, Max: 3}}); err != nil {
		tst.Error("Error:", err)
	}
	if par := m.GetFloatParameters()[0]; m.T1 != 2 || par.GetMin() != 1 || par.GetMax() != 3 {
		tst.Error("Range is not set:", m.T1, par.GetMin(), par.GetMax())
	}
	if err := SetRanges(m, map[string]Range{"t": {Start: 2, Min: 1, Max: 3}}); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
	if err := SetRanges(m, map[string]Range{"t2": {Start: 5, Min: 1, Max: 3}}); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
}

func TestInfeasible(tst *testing.T) {
	m, _ := NewMixture([]float64{0.5}, []float64{1}, []float64{1})
	m.P = 2
	if l := m.Likelihood(); !math.IsInf(l, -1) {
		tst.Error("Expected -Inf, got", l)
	}
}

func TestCurve(tst *testing.T) {
	c, err := agg.Aggregate([]float64{0.2, 0.2, 0.6, 0.6},
		[]agg.Observation{agg.MustCalled(1), agg.MustCalled(2), agg.MustCalled(0), agg.MustCalled(0)})
	if err != nil {
		tst.Fatal("Error:", err)
	}
	freqs, het, hom := FromCounts(c)
	m, err := NewAnc(freqs, het, hom)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	curve := Curve(c, m)
	if len(curve) != 2 {
		tst.Fatal("Expected 2 points, got", len(curve))
	}
	if curve[0].Freq != 0.2 || curve[0].Observed != 0.5 {
		tst.Error("Wrong first point:", curve[0])
	}
	if !math.IsNaN(curve[1].Observed) {
		tst.Error("Bin without informative sites should be NaN:", curve[1])
	}
	if want := drift.HetAnc(0.6, m.T); curve[1].Fitted != want {
		tst.Error("Wrong fitted value:", curve[1].Fitted, want)
	}
	if aic := AIC(m, -10); aic != 22 {
		tst.Error("Wrong AIC:", aic)
	}
}

func TestReadsModel(tst *testing.T) {
	freqs := []float64{0.2, 0.5, 0.5}
	sites := [][]reads.Reads{
		{{Anc: 2, Der: 0}, {Anc: 1, Der: 1}},
		{{Anc: 0, Der: 3}, {}},
		{{Anc: 1, Der: 0}, {Anc: 0, Der: 1}},
	}
	m, err := NewReads(freqs, sites)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	mg, _ := gtlike.New(2)
	want, _ := mg.LnL(m.SplitParams, freqs, sites)
	if l := m.Likelihood(); math.Abs(l-want) > smallDiff {
		tst.Errorf("Expected %v, got %v", want, l)
	}
	if _, err := NewReads([]float64{0.5}, sites); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
	if _, err := NewGL([]float64{1}, [][3]float64{{0, 0, 1}}); !errors.Is(err, check.ErrDomain) {
		tst.Error("Expected domain error, got", err)
	}
}
