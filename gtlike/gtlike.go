// Package gtlike computes the likelihood of sequencing reads of
// ancient diploid individuals under the split model, marginalizing
// over the unobserved joint genotypes.
package gtlike

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/floats"

	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/ctmc"
	"bitbucket.org/Davydov/ancgeno/drift"
	"bitbucket.org/Davydov/ancgeno/reads"
	"bitbucket.org/Davydov/ancgeno/sampling"
)

// log is a global logging variable.
var log = logging.MustGetLogger("gtlike")

// Marginalizer computes read likelihoods for m ancient individuals
// (2m haploids). It is immutable and can be used concurrently.
type Marginalizer struct {
	m     int
	space Space
	chain *ctmc.Chain
}

// New creates a Marginalizer for m diploid individuals.
func New(m int) (*Marginalizer, error) {
	if m < 1 {
		return nil, fmt.Errorf("%w: number of ancient individuals should be positive, got %d", check.ErrConfig, m)
	}
	chain, err := ctmc.NewChain(2 * m)
	if err != nil {
		return nil, err
	}
	return &Marginalizer{
		m:     m,
		space: NewSpace(m),
		chain: chain,
	}, nil
}

// Individuals returns the number of diploid individuals.
func (mg *Marginalizer) Individuals() int {
	return mg.m
}

// Space returns the joint genotype space.
func (mg *Marginalizer) Space() Space {
	return mg.space
}

// uniqueFreqs returns sorted unique frequencies and the index of
// every frequency in this slice.
func uniqueFreqs(freqs []float64) (uniq []float64, idx []int) {
	pos := make(map[float64]int, len(freqs))
	for _, x := range freqs {
		if _, ok := pos[x]; !ok {
			pos[x] = 0
			uniq = append(uniq, x)
		}
	}
	sort.Float64s(uniq)
	for i, x := range uniq {
		pos[x] = i
	}
	idx = make([]int, len(freqs))
	for i, x := range freqs {
		idx[i] = pos[x]
	}
	return
}

// Priors returns joint genotype priors for every frequency.
func (mg *Marginalizer) Priors(p drift.SplitParams, freqs []float64) ([][]float64, error) {
	ey, err := mg.chain.Moments(freqs, p)
	if err != nil {
		return nil, err
	}
	probs, err := sampling.Probs(ey)
	if err != nil {
		return nil, err
	}
	res := make([][]float64, len(freqs))
	for i := range freqs {
		res[i] = mg.space.Priors(probs.RawRowView(i))
	}
	return res, nil
}

// SiteLnLs returns the log likelihood of every site. freqs[i] is the
// modern frequency of site i and sites[i][j] are the reads of the
// individual j at site i. A site with zero likelihood (e.g. reads
// incompatible with every genotype) gets -Inf, it is up to the
// caller to check for it.
func (mg *Marginalizer) SiteLnLs(p drift.SplitParams, freqs []float64, sites [][]reads.Reads) ([]float64, error) {
	if err := check.Frequencies(freqs); err != nil {
		return nil, err
	}
	if len(freqs) != len(sites) {
		return nil, fmt.Errorf("%w: %d frequencies, but %d sites", check.ErrConfig, len(freqs), len(sites))
	}
	for i, site := range sites {
		if len(site) != mg.m {
			return nil, fmt.Errorf("%w: site %d has reads for %d individuals, expected %d",
				check.ErrConfig, i, len(site), mg.m)
		}
	}

	uniq, idx := uniqueFreqs(freqs)
	priors, err := mg.Priors(p, uniq)
	if err != nil {
		return nil, err
	}

	nPos := len(sites)
	res := make([]float64, nPos)
	nWorkers := runtime.GOMAXPROCS(0)
	done := make(chan struct{}, nWorkers)
	tasks := make(chan int, nPos)

	for i := 0; i < nWorkers; i++ {
		go func() {
			for pos := range tasks {
				rl := mg.space.ReadLikelihoods(sites[pos])
				res[pos] = math.Log(floats.Dot(rl, priors[idx[pos]]))
			}
			done <- struct{}{}
		}()
	}

	for pos := 0; pos < nPos; pos++ {
		tasks <- pos
	}
	close(tasks)

	for i := 0; i < nWorkers; i++ {
		<-done
	}
	return res, nil
}

// LnL returns the total log likelihood of all the sites. Sites are
// summed in the input order, so the result doesn't depend on the
// number of workers.
func (mg *Marginalizer) LnL(p drift.SplitParams, freqs []float64, sites [][]reads.Reads) (float64, error) {
	ls, err := mg.SiteLnLs(p, freqs, sites)
	if err != nil {
		return 0, err
	}
	lnL := 0.0
	for _, l := range ls {
		lnL += l
	}
	if bad := check.NonFinite(ls); len(bad) > 0 {
		log.Debugf("%d sites with non-finite likelihood, first is %d", len(bad), bad[0])
	}
	return lnL, nil
}
