package main

import (
	"fmt"

	"bitbucket.org/Davydov/ancgeno/amodel"
	"bitbucket.org/Davydov/ancgeno/check"
)

var modelNames = []string{"anc", "split", "mixture", "gl", "reads"}

func isModelName(name string) bool {
	for _, n := range modelNames {
		if n == name {
			return true
		}
	}
	return false
}

// newModel creates a model from the data and sets parameter ranges
// from the configuration.
func newModel(name string, d *siteData, conf *Config) (m amodel.Model, err error) {
	switch name {
	case "anc", "split", "mixture":
		all, cerr := d.counts()
		if cerr != nil {
			return nil, cerr
		}
		c, removed := all.Polymorphic()
		if removed > 0 {
			log.Warningf("Removed %d monomorphic frequency bins", removed)
		}
		freqs, het, hom := amodel.FromCounts(c)
		log.Infof("%d frequency bins", len(freqs))
		switch name {
		case "anc":
			log.Info("Using single lineage model")
			m, err = amodel.NewAnc(freqs, het, hom)
		case "split":
			log.Info("Using split model")
			m, err = amodel.NewSplit(freqs, het, hom)
		default:
			log.Info("Using mixture model")
			m, err = amodel.NewMixture(freqs, het, hom)
		}
	case "gl":
		log.Info("Using genotype likelihood split model")
		freqs, gl := d.glRows()
		m, err = amodel.NewGL(freqs, gl)
	case "reads":
		log.Info("Using read split model")
		freqs, sites, rerr := d.readSites()
		if rerr != nil {
			return nil, rerr
		}
		m, err = amodel.NewReads(freqs, sites)
	default:
		return nil, fmt.Errorf("%w: unknown model %s", check.ErrConfig, name)
	}
	if err != nil {
		return nil, err
	}
	if ranges, ok := conf.Models[name]; ok {
		if err := amodel.SetRanges(m, ranges); err != nil {
			return nil, err
		}
	}
	log.Infof("Model has %d parameters.", len(m.GetFloatParameters()))
	return m, nil
}
