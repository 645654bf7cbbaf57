// Package reads implements the binomial sequencing read model for
// ancient diploid individuals.
package reads

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/distuv"

	"bitbucket.org/Davydov/ancgeno/check"
)

// maxExactBinomial is the largest number of trials for which the
// binomial coefficient is computed with integers.
const maxExactBinomial = 60

// GenotypeP are the derived read probabilities for the ancestral
// homozygous, heterozygous and derived homozygous genotypes.
var GenotypeP = [3]float64{0, 0.5, 1}

// Reads are the read counts of one individual at one site.
type Reads struct {
	Anc int
	Der int
}

// Total returns the total number of reads.
func (r Reads) Total() int {
	return r.Anc + r.Der
}

func (r Reads) String() string {
	return fmt.Sprintf("%d/%d", r.Anc, r.Der)
}

// Split converts a flat array of read counts
// (anc0, der0, anc1, der1, ...) into m per-individual counts.
// Individual i gets raw[2*i] and raw[2*i+1].
func Split(raw []int, m int) ([]Reads, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: number of individuals should be positive, got %d", check.ErrConfig, m)
	}
	if len(raw) != 2*m {
		return nil, fmt.Errorf("%w: %d read counts for %d individuals, expected %d", check.ErrConfig, len(raw), m, 2*m)
	}
	res := make([]Reads, m)
	for i := range res {
		a, d := raw[2*i], raw[2*i+1]
		if a < 0 || d < 0 {
			return nil, fmt.Errorf("%w: negative read count for individual %d", check.ErrConfig, i)
		}
		res[i] = Reads{Anc: a, Der: d}
	}
	return res, nil
}

// binomial returns n choose k as a float.
func binomial(n, k int) float64 {
	if n <= maxExactBinomial {
		return float64(combin.Binomial(n, k))
	}
	return math.Exp(combin.LogGeneralizedBinomial(float64(n), float64(k)))
}

// BinomPMF returns the probability of k successes out of n trials
// with probability p. For n=0 the result is 1 for any p.
func BinomPMF(k, n int, p float64) float64 {
	if k < 0 || k > n {
		return 0
	}
	return binomial(n, k) * math.Pow(p, float64(k)) * math.Pow(1-p, float64(n-k))
}

// Likelihood returns the probability of the reads given the number
// of derived alleles in the genotype.
func (r Reads) Likelihood(gt int) float64 {
	return BinomPMF(r.Der, r.Total(), GenotypeP[gt])
}

// GenotypeLikelihoods returns the likelihoods of the three genotypes
// normalized to sum to 1. With no reads all the genotypes are equally
// likely.
func GenotypeLikelihoods(r Reads) (gl [3]float64) {
	s := 0.0
	for gt := range gl {
		gl[gt] = r.Likelihood(gt)
		s += gl[gt]
	}
	for gt := range gl {
		gl[gt] /= s
	}
	return
}

// Simulate draws a Poisson(coverage) number of reads sampled with
// replacement from the two alleles of an individual with gt derived
// alleles.
func Simulate(gt int, coverage float64, src rand.Source) Reads {
	if coverage <= 0 {
		return Reads{}
	}
	pois := distuv.Poisson{Lambda: coverage, Src: src}
	unif := distuv.Uniform{Min: 0, Max: 1, Src: src}
	n := int(pois.Rand())
	p := GenotypeP[gt]
	var r Reads
	for i := 0; i < n; i++ {
		if unif.Rand() < p {
			r.Der++
		} else {
			r.Anc++
		}
	}
	return r
}
