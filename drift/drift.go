// Package drift implements closed-form expectations for an ancient
// diploid sample compared to a modern population with derived allele
// frequency x.
//
// All times are in coalescent units. Two demographic scenarios are
// covered: a single ancient lineage sampled t units before present,
// and a population which split from the modern one, where the ancient
// sample is t1 units older than the split and the split happened t2
// units before present.
package drift

import (
	"math"
)

// HetAnc returns the expected proportion of heterozygotes among
// ancient sites with at least one derived allele for the single
// lineage model.
func HetAnc(x, t float64) float64 {
	return 1.0 / (3.0/2.0 + (2*x-1)/(1+math.Exp(2*t)-2*x))
}

// HetSplit returns the expected proportion of heterozygotes among
// ancient sites with at least one derived allele for the split model.
func HetSplit(x, t1, t2 float64) float64 {
	return 1.0 / (1.0/2.0 + math.Exp(2*t1+t2)/(1+math.Exp(2*t1)-2*x))
}

// SplitMoments returns probabilities of the ancestral homozygous,
// heterozygous and derived homozygous ancient genotypes under the
// split model.
func SplitMoments(x, t1, t2 float64) (anc, het, der float64) {
	e := math.Exp(-3*t1 - t2)
	e2 := math.Exp(2 * t1)
	het = e * (1 + e2 - 2*x) * x
	der = 0.5 * e * (2*x + e2*(2*math.Exp(t2)-1) - 1) * x
	anc = 1 - het - der
	return
}

// MixtureHet returns the heterozygote proportion for the mixture of
// the single lineage and the split model.
func MixtureHet(x float64, p MixtureParams) float64 {
	return p.P*HetAnc(x, p.T1) + (1-p.P)*HetSplit(x, p.T2, p.T3)
}

// HetAncCurve computes HetAnc for every frequency.
func HetAncCurve(freqs []float64, p AncParams) []float64 {
	res := make([]float64, len(freqs))
	for i, x := range freqs {
		res[i] = HetAnc(x, p.T)
	}
	return res
}

// HetSplitCurve computes HetSplit for every frequency.
func HetSplitCurve(freqs []float64, p SplitParams) []float64 {
	res := make([]float64, len(freqs))
	for i, x := range freqs {
		res[i] = HetSplit(x, p.T1, p.T2)
	}
	return res
}

// MixtureHetCurve computes MixtureHet for every frequency.
func MixtureHetCurve(freqs []float64, p MixtureParams) []float64 {
	res := make([]float64, len(freqs))
	for i, x := range freqs {
		res[i] = MixtureHet(x, p)
	}
	return res
}
