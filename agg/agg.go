// Package agg reduces per-site ancient observations to sufficient
// statistics grouped by the modern allele frequency.
package agg

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"bitbucket.org/Davydov/ancgeno/check"
)

// Genotype states of an ancient diploid individual.
const (
	AncHom = iota
	Het
	DerHom
	// NStates is the number of genotype states.
	NStates
)

// Observation is a weight vector over the three genotype states
// (ancestral homozygous, heterozygous, derived homozygous). A called
// genotype is one-hot, a genotype likelihood triple sums to 1.
type Observation [NStates]float64

// Called returns a one-hot observation for the number of derived
// alleles gt (0, 1 or 2).
func Called(gt int) (o Observation, err error) {
	if gt < 0 || gt >= NStates {
		return o, fmt.Errorf("%w: genotype %d is not in {0,1,2}", check.ErrConfig, gt)
	}
	o[gt] = 1
	return o, nil
}

// MustCalled is like Called but panics on error.
func MustCalled(gt int) Observation {
	o, err := Called(gt)
	if err != nil {
		panic(err)
	}
	return o
}

// Counts are observation totals per unique modern frequency. Bins
// are sorted by frequency, all the slices are parallel.
type Counts struct {
	Freqs  []float64
	AncHom []float64
	Het    []float64
	DerHom []float64
	// Sites is the number of sites per bin.
	Sites []int
}

// Aggregate sums observations of the sites sharing a frequency.
// Every site is counted exactly once. Observations within a bin are
// summed in sorted order, so the result, fractional counts included,
// doesn't depend on the site order.
func Aggregate(freqs []float64, obs []Observation) (*Counts, error) {
	if len(freqs) != len(obs) {
		return nil, fmt.Errorf("%w: %d frequencies, but %d observations", check.ErrConfig, len(freqs), len(obs))
	}
	if len(freqs) == 0 {
		return nil, errors.New("no sites to aggregate")
	}
	bins := make(map[float64][]Observation)
	for i, x := range freqs {
		if math.IsNaN(x) {
			return nil, fmt.Errorf("%w: frequency at %d is NaN", check.ErrDomain, i)
		}
		bins[x] = append(bins[x], obs[i])
	}

	c := &Counts{
		Freqs: make([]float64, 0, len(bins)),
	}
	for x := range bins {
		c.Freqs = append(c.Freqs, x)
	}
	sort.Float64s(c.Freqs)
	c.AncHom = make([]float64, len(c.Freqs))
	c.Het = make([]float64, len(c.Freqs))
	c.DerHom = make([]float64, len(c.Freqs))
	c.Sites = make([]int, len(c.Freqs))
	for i, x := range c.Freqs {
		b := bins[x]
		sort.Slice(b, func(k, l int) bool {
			return b[k].less(b[l])
		})
		var sum Observation
		for _, o := range b {
			for s, v := range o {
				sum[s] += v
			}
		}
		c.AncHom[i] = sum[AncHom]
		c.Het[i] = sum[Het]
		c.DerHom[i] = sum[DerHom]
		c.Sites[i] = len(b)
	}
	log.Debugf("Aggregated %d sites into %d frequency bins", len(freqs), len(c.Freqs))
	return c, nil
}

// less orders observations lexicographically.
func (o Observation) less(p Observation) bool {
	for s := range o {
		if o[s] != p[s] {
			return o[s] < p[s]
		}
	}
	return false
}

// Len returns the number of bins.
func (c *Counts) Len() int {
	return len(c.Freqs)
}

// Hom returns total homozygous (ancestral plus derived) counts.
func (c *Counts) Hom() []float64 {
	res := make([]float64, len(c.Freqs))
	for i := range res {
		res[i] = c.AncHom[i] + c.DerHom[i]
	}
	return res
}

// Der returns derived homozygous counts.
func (c *Counts) Der() []float64 {
	res := make([]float64, len(c.DerHom))
	copy(res, c.DerHom)
	return res
}

// Proportions returns het/(het+derived hom) per bin. Bins without
// informative sites get NaN.
func (c *Counts) Proportions() []float64 {
	res := make([]float64, len(c.Freqs))
	for i := range res {
		n := c.Het[i] + c.DerHom[i]
		if n == 0 {
			res[i] = math.NaN()
			continue
		}
		res[i] = c.Het[i] / n
	}
	return res
}

// Polymorphic returns a copy of Counts without bins with frequency 0
// or 1, and the number of the removed bins.
func (c *Counts) Polymorphic() (*Counts, int) {
	nc := &Counts{}
	removed := 0
	for i, x := range c.Freqs {
		if x <= 0 || x >= 1 {
			removed++
			continue
		}
		nc.Freqs = append(nc.Freqs, x)
		nc.AncHom = append(nc.AncHom, c.AncHom[i])
		nc.Het = append(nc.Het, c.Het[i])
		nc.DerHom = append(nc.DerHom, c.DerHom[i])
		nc.Sites = append(nc.Sites, c.Sites[i])
	}
	return nc, removed
}
