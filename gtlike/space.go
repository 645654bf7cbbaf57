package gtlike

import (
	"bytes"
	"strconv"

	"bitbucket.org/Davydov/ancgeno/reads"
)

// Genotype is a joint genotype of ancient diploid individuals; every
// element is the number of derived alleles (0, 1 or 2) of one
// individual.
type Genotype []int

// Derived returns the total number of derived alleles.
func (g Genotype) Derived() (n int) {
	for _, s := range g {
		n += s
	}
	return
}

// NHet returns the number of heterozygous individuals.
func (g Genotype) NHet() (n int) {
	for _, s := range g {
		if s == 1 {
			n++
		}
	}
	return
}

func (g Genotype) String() string {
	var b bytes.Buffer
	for _, s := range g {
		b.WriteString(strconv.Itoa(s))
	}
	return b.String()
}

// Space is the set of all joint genotypes of m individuals. The order
// is lexicographic with the first individual varying slowest.
type Space []Genotype

// NewSpace creates the 3^m joint genotypes of m individuals.
func NewSpace(m int) Space {
	gts := Space{{0}, {1}, {2}}
	for i := 1; i < m; i++ {
		ngts := make(Space, 0, len(gts)*3)
		for _, gt := range gts {
			for s := 0; s < 3; s++ {
				ngt := make(Genotype, len(gt)+1)
				copy(ngt, gt)
				ngt[len(gt)] = s
				ngts = append(ngts, ngt)
			}
		}
		gts = ngts
	}
	return gts
}

// Priors returns the prior probability of every genotype given the
// sampling probabilities of a particular haploid configuration with
// k derived alleles (probs[k], k = 0..2m). A genotype with h
// heterozygous individuals has 2^h haploid configurations.
func (s Space) Priors(probs []float64) []float64 {
	res := make([]float64, len(s))
	for i, gt := range s {
		res[i] = float64(int(1)<<uint(gt.NHet())) * probs[gt.Derived()]
	}
	return res
}

// ReadLikelihoods returns the probability of the reads at a site for
// every genotype; site[i] are the reads of individual i.
func (s Space) ReadLikelihoods(site []reads.Reads) []float64 {
	res := make([]float64, len(s))
	for i, gt := range s {
		l := 1.0
		for ind, st := range gt {
			l *= site[ind].Likelihood(st)
		}
		res[i] = l
	}
	return res
}
