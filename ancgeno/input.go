package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"bitbucket.org/Davydov/ancgeno/agg"
	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/optimize"
	"bitbucket.org/Davydov/ancgeno/reads"
)

// Input formats; every line is a site starting with the modern
// derived allele frequency.
const (
	// freq gt1 [gt2 ...]
	formatGenotype = "genotype"
	// freq l_anc l_het l_der
	formatGL = "gl"
	// freq anc1 der1 [anc2 der2 ...]
	formatReads = "reads"
)

var formatNames = []string{formatGenotype, formatGL, formatReads}

// siteData is the parsed input.
type siteData struct {
	format      string
	individuals int
	freqs       []float64
	genotypes   [][]int
	gl          [][3]float64
	reads       [][]reads.Reads
	// dropped is the number of sites monomorphic in the modern
	// population
	dropped int
}

// toCount converts a float to a non-negative integer.
func toCount(v float64) (int, error) {
	if v < 0 || v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%v is not a non-negative integer", v)
	}
	return int(v), nil
}

// parseLine parses a single site.
func (d *siteData) parseLine(v []float64) error {
	values := v[1:]
	n := 0
	switch d.format {
	case formatGenotype:
		n = len(values)
		gts := make([]int, n)
		for i, x := range values {
			gt, err := toCount(x)
			if err != nil || gt > 2 {
				return fmt.Errorf("%w: genotype %v is not in {0,1,2}", check.ErrConfig, x)
			}
			gts[i] = gt
		}
		d.genotypes = append(d.genotypes, gts)
	case formatGL:
		if len(values) != 3 {
			return fmt.Errorf("%w: expected 3 genotype likelihoods, got %d", check.ErrConfig, len(values))
		}
		var gl [3]float64
		for i, x := range values {
			if !(x >= 0) {
				return fmt.Errorf("%w: genotype likelihood %v is negative", check.ErrConfig, x)
			}
			gl[i] = x
		}
		n = 1
		d.gl = append(d.gl, gl)
	case formatReads:
		raw := make([]int, len(values))
		for i, x := range values {
			c, err := toCount(x)
			if err != nil {
				return fmt.Errorf("%w: read count %v", check.ErrConfig, err)
			}
			raw[i] = c
		}
		if len(raw)%2 != 0 {
			return fmt.Errorf("%w: odd number of read counts %d", check.ErrConfig, len(raw))
		}
		n = len(raw) / 2
		rs, err := reads.Split(raw, n)
		if err != nil {
			return err
		}
		d.reads = append(d.reads, rs)
	default:
		return fmt.Errorf("%w: unknown format %s", check.ErrConfig, d.format)
	}
	if n == 0 {
		return fmt.Errorf("%w: no ancient data", check.ErrConfig)
	}
	if d.individuals == 0 {
		d.individuals = n
	} else if n != d.individuals {
		return fmt.Errorf("%w: %d individuals, expected %d", check.ErrConfig, n, d.individuals)
	}
	d.freqs = append(d.freqs, v[0])
	return nil
}

// readSites parses the input. Sites with frequency 0 or 1 are
// dropped.
func readSites(r io.Reader, format string) (*siteData, error) {
	d := &siteData{format: format}
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := optimize.ReadFloats(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", check.ErrConfig, lineno, err)
		}
		if len(v) < 2 {
			return nil, fmt.Errorf("%w: line %d: too few fields", check.ErrConfig, lineno)
		}
		if x := v[0]; !(x >= 0 && x <= 1) {
			return nil, fmt.Errorf("%w: line %d: frequency %v is outside of [0, 1]", check.ErrDomain, lineno, x)
		}
		if x := v[0]; x == 0 || x == 1 {
			d.dropped++
			continue
		}
		if err := d.parseLine(v); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if d.dropped > 0 {
		log.Noticef("Dropped %d sites monomorphic in the modern population", d.dropped)
	}
	if len(d.freqs) == 0 {
		return nil, fmt.Errorf("%w: no polymorphic sites", check.ErrConfig)
	}
	log.Infof("Read %d sites, %d ancient individuals", len(d.freqs), d.individuals)
	return d, nil
}

// readSitesFile parses the input file.
func readSitesFile(fn, format string) (*siteData, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readSites(f, format)
}

// summary returns the input summary.
func (d *siteData) summary() InputSummary {
	return InputSummary{
		Format:      d.format,
		Sites:       len(d.freqs),
		Dropped:     d.dropped,
		Individuals: d.individuals,
	}
}

// glRows returns genotype likelihoods of every individual at every
// site. Individuals without reads are skipped.
func (d *siteData) glRows() (freqs []float64, gl [][3]float64) {
	switch d.format {
	case formatGenotype:
		for i, gts := range d.genotypes {
			for _, gt := range gts {
				var row [3]float64
				row[gt] = 1
				freqs = append(freqs, d.freqs[i])
				gl = append(gl, row)
			}
		}
	case formatGL:
		return d.freqs, d.gl
	case formatReads:
		for i, site := range d.reads {
			for _, r := range site {
				if r.Total() == 0 {
					continue
				}
				freqs = append(freqs, d.freqs[i])
				gl = append(gl, reads.GenotypeLikelihoods(r))
			}
		}
	}
	return
}

// counts aggregates all the individuals by frequency. Genotype
// likelihoods are normalized and counted as fractional observations.
func (d *siteData) counts() (*agg.Counts, error) {
	freqs, gl := d.glRows()
	obs := make([]agg.Observation, len(gl))
	for i, row := range gl {
		s := row[0] + row[1] + row[2]
		if s == 0 {
			continue
		}
		for gt := range row {
			obs[i][gt] = row[gt] / s
		}
	}
	return agg.Aggregate(freqs, obs)
}

// readSites returns reads of all the individuals per site.
func (d *siteData) readSites() (freqs []float64, sites [][]reads.Reads, err error) {
	if d.format != formatReads {
		return nil, nil, fmt.Errorf("%w: reads model requires %s format, got %s", check.ErrConfig, formatReads, d.format)
	}
	return d.freqs, d.reads, nil
}
