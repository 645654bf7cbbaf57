// Package amodel implements log likelihoods of ancient genotype data
// aggregated by the modern allele frequency, and wraps them into
// models which can be maximized by package optimize.
package amodel

import (
	"math"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/drift"
)

// log is a global logging variable.
var log = logging.MustGetLogger("amodel")

// checkCounts validates frequencies and het/hom counts.
func checkCounts(freqs, het, hom []float64) error {
	if err := check.SameLength(len(freqs), []string{"het", "hom"}, len(het), len(hom)); err != nil {
		return err
	}
	return check.Frequencies(freqs)
}

// hetHomLnL is the binomial form log likelihood; h is the expected
// heterozygote proportion at frequency x.
func hetHomLnL(freqs, het, hom []float64, h func(x float64) float64) (l float64) {
	for i, x := range freqs {
		hx := h(x)
		l += het[i]*math.Log(hx) + hom[i]*math.Log(1-hx)
	}
	return
}

// AncLnL is the log likelihood of heterozygote and homozygote counts
// per frequency bin under the single lineage model.
func AncLnL(p drift.AncParams, freqs, het, hom []float64) (float64, error) {
	if err := checkCounts(freqs, het, hom); err != nil {
		return 0, err
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return hetHomLnL(freqs, het, hom, func(x float64) float64 {
		return drift.HetAnc(x, p.T)
	}), nil
}

// SplitLnL is AncLnL for the split model.
func SplitLnL(p drift.SplitParams, freqs, het, hom []float64) (float64, error) {
	if err := checkCounts(freqs, het, hom); err != nil {
		return 0, err
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return hetHomLnL(freqs, het, hom, func(x float64) float64 {
		return drift.HetSplit(x, p.T1, p.T2)
	}), nil
}

// MixtureLnL is AncLnL for the mixture of the single lineage and the
// split models.
func MixtureLnL(p drift.MixtureParams, freqs, het, hom []float64) (float64, error) {
	if err := checkCounts(freqs, het, hom); err != nil {
		return 0, err
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return hetHomLnL(freqs, het, hom, func(x float64) float64 {
		return drift.MixtureHet(x, p)
	}), nil
}

// GLSiteLnLs returns the log likelihood of every site given its
// genotype likelihoods gl (ancestral homozygous, heterozygous, derived
// homozygous) under the split model. Rows of gl are used as is; a
// row of zeros or NaNs gives a non-finite value for its site.
func GLSiteLnLs(p drift.SplitParams, freqs []float64, gl [][3]float64) ([]float64, error) {
	if err := check.SameLength(len(freqs), []string{"genotype likelihoods"}, len(gl)); err != nil {
		return nil, err
	}
	if err := check.Frequencies(freqs); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	res := make([]float64, len(freqs))
	for i, x := range freqs {
		anc, het, der := drift.SplitMoments(x, p.T1, p.T2)
		res[i] = math.Log(anc*gl[i][0] + het*gl[i][1] + der*gl[i][2])
	}
	return res, nil
}

// GLLnL is the sum of GLSiteLnLs in the site order.
func GLLnL(p drift.SplitParams, freqs []float64, gl [][3]float64) (float64, error) {
	ls, err := GLSiteLnLs(p, freqs, gl)
	if err != nil {
		return 0, err
	}
	l := 0.0
	for _, v := range ls {
		l += v
	}
	if bad := check.NonFinite(ls); len(bad) > 0 {
		log.Debugf("%d sites with non-finite likelihood, first is %d", len(bad), bad[0])
	}
	return l, nil
}
