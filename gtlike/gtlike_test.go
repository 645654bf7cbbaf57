package gtlike

import (
	"errors"
	"math"
	"testing"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/floats"

	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/drift"
	"bitbucket.org/Davydov/ancgeno/reads"
)

const smallDiff = 1e-9

func init() {
	logging.SetLevel(logging.WARNING, "gtlike")
	logging.SetLevel(logging.WARNING, "ctmc")
}

func TestSpace(tst *testing.T) {
	s := NewSpace(1)
	if len(s) != 3 {
		tst.Fatal("Expected 3 genotypes, got", len(s))
	}
	for i, gt := range s {
		if len(gt) != 1 || gt[0] != i {
			tst.Error("Wrong genotype:", gt)
		}
	}
	s = NewSpace(2)
	want := []string{"00", "01", "02", "10", "11", "12", "20", "21", "22"}
	for i, gt := range s {
		if gt.String() != want[i] {
			tst.Errorf("Genotype %d is %v, expected %s", i, gt, want[i])
		}
	}
	s = NewSpace(4)
	seen := make(map[string]bool)
	for _, gt := range s {
		seen[gt.String()] = true
	}
	if len(s) != 81 || len(seen) != 81 {
		tst.Error("Expected 81 distinct genotypes, got", len(s), len(seen))
	}
	if g := (Genotype{1, 2, 1, 0}); g.Derived() != 4 || g.NHet() != 2 {
		tst.Error("Wrong genotype summary:", g.Derived(), g.NHet())
	}
}

func TestPriorsSumToOne(tst *testing.T) {
	freqs := []float64{0.05, 0.5, 0.8}
	for m := 1; m <= 3; m++ {
		mg, err := New(m)
		if err != nil {
			tst.Fatal("Error:", err)
		}
		priors, err := mg.Priors(drift.SplitParams{T1: 0.1, T2: 0.2}, freqs)
		if err != nil {
			tst.Fatal("Error:", err)
		}
		for i, pr := range priors {
			if s := floats.Sum(pr); math.Abs(s-1) > smallDiff {
				tst.Errorf("m=%d, x=%v: priors sum to %v", m, freqs[i], s)
			}
		}
	}
}

func TestOneIndividualMatchesClosedForm(tst *testing.T) {
	mg, err := New(1)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	p := drift.SplitParams{T1: 0.15, T2: 0.4}
	freqs := []float64{0.1, 0.1, 0.6, 0.9}
	sites := [][]reads.Reads{
		{{Anc: 3, Der: 0}},
		{{Anc: 1, Der: 1}},
		{{Anc: 0, Der: 2}},
		{{Anc: 2, Der: 5}},
	}
	ls, err := mg.SiteLnLs(p, freqs, sites)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	for i, x := range freqs {
		anc, het, der := drift.SplitMoments(x, p.T1, p.T2)
		r := sites[i][0]
		want := math.Log(anc*r.Likelihood(0) + het*r.Likelihood(1) + der*r.Likelihood(2))
		if math.Abs(ls[i]-want) > smallDiff {
			tst.Errorf("site %d: %v != %v", i, ls[i], want)
		}
	}
}

func TestZeroReads(tst *testing.T) {
	mg, err := New(1)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	site := []reads.Reads{{}}
	rl := mg.Space().ReadLikelihoods(site)
	for _, l := range rl {
		if l != 1 {
			tst.Error("Zero reads should give likelihood 1, got", rl)
		}
	}
	p := drift.SplitParams{T1: 0.3, T2: 0.3}
	priors, err := mg.Priors(p, []float64{0.4})
	if err != nil {
		tst.Fatal("Error:", err)
	}
	ls, err := mg.SiteLnLs(p, []float64{0.4}, [][]reads.Reads{site})
	if err != nil {
		tst.Fatal("Error:", err)
	}
	if want := math.Log(floats.Sum(priors[0])); math.Abs(ls[0]-want) > smallDiff {
		tst.Errorf("Site likelihood %v should equal the prior sum %v", ls[0], want)
	}
}

func TestIndividualsDoNotOverlap(tst *testing.T) {
	p := drift.SplitParams{T1: 0.2, T2: 0.5}
	freqs := []float64{0.3}
	r := reads.Reads{Anc: 1, Der: 4}

	mg1, _ := New(1)
	l1, err := mg1.LnL(p, freqs, [][]reads.Reads{{r}})
	if err != nil {
		tst.Fatal("Error:", err)
	}

	mg3, _ := New(3)
	// reads of one individual give the same likelihood whatever
	// its position, the other individuals carry no information
	for ind := 0; ind < 3; ind++ {
		site := make([]reads.Reads, 3)
		site[ind] = r
		l, err := mg3.LnL(p, freqs, [][]reads.Reads{site})
		if err != nil {
			tst.Fatal("Error:", err)
		}
		if math.Abs(l-l1) > smallDiff {
			tst.Errorf("individual %d: %v != %v", ind, l, l1)
		}
	}

	r2 := reads.Reads{Anc: 3, Der: 0}
	mg2, _ := New(2)
	la, _ := mg2.LnL(p, freqs, [][]reads.Reads{{r, r2}})
	lb, _ := mg2.LnL(p, freqs, [][]reads.Reads{{r2, r}})
	if math.Abs(la-lb) > smallDiff {
		tst.Errorf("Likelihood depends on individual order: %v != %v", la, lb)
	}
	lr2, _ := mg1.LnL(p, freqs, [][]reads.Reads{{r2}})
	if math.Abs(la-(l1+lr2)) < 1e-6 {
		tst.Error("Individuals of the same population should not be independent")
	}
}

func TestLnLIsSumOfSites(tst *testing.T) {
	mg, _ := New(2)
	p := drift.SplitParams{T1: 0.05, T2: 0.1}
	var freqs []float64
	var sites [][]reads.Reads
	for i := 0; i < 200; i++ {
		freqs = append(freqs, float64(1+i%9)/10)
		sites = append(sites, []reads.Reads{{Anc: i % 3, Der: i % 2}, {Anc: i % 4, Der: (i + 1) % 3}})
	}
	ls, err := mg.SiteLnLs(p, freqs, sites)
	if err != nil {
		tst.Fatal("Error:", err)
	}
	sum := 0.0
	for _, l := range ls {
		sum += l
	}
	for rep := 0; rep < 3; rep++ {
		l, err := mg.LnL(p, freqs, sites)
		if err != nil {
			tst.Fatal("Error:", err)
		}
		if l != sum {
			tst.Errorf("Total %v differs from the sum of sites %v", l, sum)
		}
	}
}

func TestMixedReads(tst *testing.T) {
	mg, _ := New(1)
	// reads of both alleles are compatible with a heterozygote only
	l, err := mg.LnL(drift.SplitParams{T1: 1, T2: 1}, []float64{0.5}, [][]reads.Reads{{{Anc: 10, Der: 10}}})
	if err != nil || math.IsInf(l, 0) || math.IsNaN(l) {
		tst.Error("Expected finite likelihood, got", l, err)
	}
}

func TestErrors(tst *testing.T) {
	if _, err := New(0); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
	mg, _ := New(2)
	p := drift.SplitParams{T1: 1, T2: 1}
	if _, err := mg.LnL(p, []float64{0.0, 0.4}, [][]reads.Reads{make([]reads.Reads, 2), make([]reads.Reads, 2)}); !errors.Is(err, check.ErrDomain) {
		tst.Error("Expected domain error, got", err)
	}
	if _, err := mg.LnL(p, []float64{0.4}, [][]reads.Reads{make([]reads.Reads, 1)}); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
	if _, err := mg.LnL(p, []float64{0.4, 0.5}, [][]reads.Reads{make([]reads.Reads, 2)}); !errors.Is(err, check.ErrConfig) {
		tst.Error("Expected configuration error, got", err)
	}
}

func BenchmarkLnL(b *testing.B) {
	mg, _ := New(3)
	p := drift.SplitParams{T1: 0.05, T2: 0.1}
	var freqs []float64
	var sites [][]reads.Reads
	for i := 0; i < 1000; i++ {
		freqs = append(freqs, float64(1+i%99)/100)
		sites = append(sites, []reads.Reads{{Anc: i % 3, Der: i % 2}, {Anc: 1, Der: 1}, {}})
	}
	for i := 0; i < b.N; i++ {
		mg.LnL(p, freqs, sites)
	}
}
