package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/exp/rand"

	"bitbucket.org/Davydov/ancgeno/drift"
	"bitbucket.org/Davydov/ancgeno/simulate"
)

// writeSites writes simulated sites in the reads format if reads are
// present and in the genotype format otherwise.
func writeSites(w io.Writer, sites simulate.Sites) error {
	bw := bufio.NewWriter(w)
	for _, s := range sites {
		bw.WriteString(strconv.FormatFloat(s.Freq, 'g', -1, 64))
		if s.Reads != nil {
			for _, r := range s.Reads {
				fmt.Fprintf(bw, "\t%d\t%d", r.Anc, r.Der)
			}
		} else {
			for _, gt := range s.Genotypes {
				fmt.Fprintf(bw, "\t%d", gt)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// simulationParams returns the branch lengths from the command line
// or from the demography.
func simulationParams(conf *Config, t1, t2 float64) (drift.SplitParams, error) {
	if t1 > 0 || t2 > 0 {
		p := drift.SplitParams{T1: t1, T2: t2}
		return p, p.Validate()
	}
	d := conf.demography()
	log.Infof("Using demography: %+v", d)
	return d.SplitParams()
}

func runSimulate(conf *Config) *SimulateSummary {
	p, err := simulationParams(conf, *simT1, *simT2)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Simulating with %v", p)

	sim := &simulate.Simulator{
		Modern:      *simModern,
		Individuals: *simIndividuals,
		Coverage:    *simCoverage,
		Src:         rand.NewSource(uint64(*seed)),
	}
	sites, err := sim.Simulate(p, *simSites)
	if err != nil {
		log.Fatal(err)
	}

	var w io.Writer = os.Stdout
	if *simOutput != "" {
		f, err := os.Create(*simOutput)
		if err != nil {
			log.Fatal("Error creating output file:", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeSites(w, sites); err != nil {
		log.Fatal(err)
	}
	log.Noticef("Simulated %d sites", len(sites))

	return &SimulateSummary{
		Sites:       len(sites),
		Modern:      sim.Modern,
		Individuals: sim.Individuals,
		Coverage:    sim.Coverage,
		T1:          p.T1,
		T2:          p.T2,
	}
}
