// Package simulate generates synthetic ancient data from the split
// model. It draws directly from the model and is meant for testing
// inference, not as a replacement for a coalescent simulator.
package simulate

import (
	"fmt"
	"math"

	"github.com/op/go-logging"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"bitbucket.org/Davydov/ancgeno/agg"
	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/ctmc"
	"bitbucket.org/Davydov/ancgeno/drift"
	"bitbucket.org/Davydov/ancgeno/reads"
	"bitbucket.org/Davydov/ancgeno/sampling"
)

// log is a global logging variable.
var log = logging.MustGetLogger("simulate")

// Site is a simulated site.
type Site struct {
	// Freq is the modern derived allele frequency.
	Freq float64 `json:"freq"`
	// Genotypes are numbers of derived alleles of every ancient
	// individual.
	Genotypes []int `json:"genotypes"`
	// Reads are sequencing reads of every individual, nil if reads
	// are not simulated.
	Reads []reads.Reads `json:"reads,omitempty"`
}

// Sites is a collection of simulated sites.
type Sites []Site

// Simulator draws sites with the modern derived allele count
// uniformly distributed between 1 and Modern-1.
type Simulator struct {
	// Modern is the number of modern haploids.
	Modern int
	// Individuals is the number of ancient diploids.
	Individuals int
	// Coverage is the mean read depth, zero disables reads.
	Coverage float64
	// Src is the source of randomness.
	Src rand.Source
}

func (s *Simulator) validate() error {
	if s.Modern < 2 {
		return fmt.Errorf("%w: at least 2 modern haploids are required, got %d", check.ErrConfig, s.Modern)
	}
	if s.Individuals < 1 {
		return fmt.Errorf("%w: number of ancient individuals should be positive, got %d", check.ErrConfig, s.Individuals)
	}
	if 2*s.Individuals > sampling.MaxHaploids {
		return fmt.Errorf("%w: at most %d ancient individuals are supported, got %d", check.ErrConfig, sampling.MaxHaploids/2, s.Individuals)
	}
	if !(s.Coverage >= 0) || math.IsInf(s.Coverage, 1) {
		return fmt.Errorf("%w: coverage %v should be non-negative", check.ErrConfig, s.Coverage)
	}
	if s.Src == nil {
		return fmt.Errorf("%w: no random source", check.ErrConfig)
	}
	return nil
}

// Simulate draws n sites given split model parameters.
func (s *Simulator) Simulate(p drift.SplitParams, n int) (Sites, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	nhap := 2 * s.Individuals
	freqs := make([]float64, s.Modern-1)
	for c := range freqs {
		freqs[c] = float64(c+1) / float64(s.Modern)
	}
	chain, err := ctmc.NewChain(nhap)
	if err != nil {
		return nil, err
	}
	ey, err := chain.Moments(freqs, p)
	if err != nil {
		return nil, err
	}
	pmf, err := sampling.CountPMF(ey)
	if err != nil {
		return nil, err
	}

	r := rand.New(s.Src)
	cats := make([]*distuv.Categorical, len(freqs))
	res := make(Sites, n)
	for i := range res {
		c := r.Intn(len(freqs))
		if cats[c] == nil {
			w := make([]float64, nhap+1)
			for k := range w {
				// rounding can give tiny negative values
				w[k] = math.Max(0, pmf.At(c, k))
			}
			cat := distuv.NewCategorical(w, s.Src)
			cats[c] = &cat
		}
		k := int(cats[c].Rand())

		// k derived alleles among randomly ordered haploids
		gts := make([]int, s.Individuals)
		for j, h := range r.Perm(nhap) {
			if j < k {
				gts[h/2]++
			}
		}
		site := Site{Freq: freqs[c], Genotypes: gts}
		if s.Coverage > 0 {
			site.Reads = make([]reads.Reads, s.Individuals)
			for ind, gt := range gts {
				site.Reads[ind] = reads.Simulate(gt, s.Coverage, s.Src)
			}
		}
		res[i] = site
	}
	log.Debugf("Simulated %d sites, %d individuals, coverage %v", n, s.Individuals, s.Coverage)
	return res, nil
}

// Freqs returns modern frequencies of all the sites.
func (ss Sites) Freqs() []float64 {
	res := make([]float64, len(ss))
	for i, s := range ss {
		res[i] = s.Freq
	}
	return res
}

// Observations returns called genotypes of the individual ind.
func (ss Sites) Observations(ind int) ([]agg.Observation, error) {
	res := make([]agg.Observation, len(ss))
	for i, s := range ss {
		if ind < 0 || ind >= len(s.Genotypes) {
			return nil, fmt.Errorf("%w: no individual %d at site %d", check.ErrConfig, ind, i)
		}
		o, err := agg.Called(s.Genotypes[ind])
		if err != nil {
			return nil, err
		}
		res[i] = o
	}
	return res, nil
}

// GLs returns normalized genotype likelihoods of the individual ind
// computed from the reads.
func (ss Sites) GLs(ind int) ([][3]float64, error) {
	res := make([][3]float64, len(ss))
	for i, s := range ss {
		if ind < 0 || ind >= len(s.Reads) {
			return nil, fmt.Errorf("%w: no reads for individual %d at site %d", check.ErrConfig, ind, i)
		}
		res[i] = reads.GenotypeLikelihoods(s.Reads[ind])
	}
	return res, nil
}

// ReadSites returns reads of all the individuals per site.
func (ss Sites) ReadSites() ([][]reads.Reads, error) {
	res := make([][]reads.Reads, len(ss))
	for i, s := range ss {
		if s.Reads == nil {
			return nil, fmt.Errorf("%w: no reads at site %d", check.ErrConfig, i)
		}
		res[i] = s.Reads
	}
	return res, nil
}
