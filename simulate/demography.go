package simulate

import (
	"fmt"

	"bitbucket.org/Davydov/ancgeno/check"
	"bitbucket.org/Davydov/ancgeno/drift"
)

// Demography is a history of the modern population 0 and the ancient
// population 1 in generations.
type Demography struct {
	// AncTime is the age of the ancient sample.
	AncTime float64 `json:"ancTime" yaml:"ancTime"`
	// MixTime is the time of admixture from population 1 into
	// population 0, it is ignored if F is zero.
	MixTime float64 `json:"mixTime" yaml:"mixTime"`
	// SplitTime is the time of the population split.
	SplitTime float64 `json:"splitTime" yaml:"splitTime"`
	// F is the admixture fraction.
	F float64 `json:"f" yaml:"f"`
	// Ne0 and Ne1 are the effective sizes of the populations.
	Ne0 float64 `json:"ne0" yaml:"ne0"`
	Ne1 float64 `json:"ne1" yaml:"ne1"`
}

// DefaultDemography returns the history used when nothing is
// specified.
func DefaultDemography() Demography {
	return Demography{
		AncTime:   200,
		MixTime:   300,
		SplitTime: 400,
		Ne0:       10000,
		Ne1:       10000,
	}
}

// Validate checks sizes and the order of events.
func (d Demography) Validate() error {
	if err := check.Positive("ne0", d.Ne0); err != nil {
		return err
	}
	if err := check.Positive("ne1", d.Ne1); err != nil {
		return err
	}
	if err := check.Fraction("f", d.F); err != nil {
		return fmt.Errorf("admixture fraction: %w", err)
	}
	if d.MixTime > d.SplitTime {
		return fmt.Errorf("%w: mixture (%v) occurs more anciently than population split (%v)",
			check.ErrDomain, d.MixTime, d.SplitTime)
	}
	if !(d.AncTime > 0 && d.AncTime < d.SplitTime) {
		return fmt.Errorf("%w: ancient sample time %v should be between 0 and the split time %v",
			check.ErrConfig, d.AncTime, d.SplitTime)
	}
	return nil
}

// AncParams returns scaled branch length of an ancient sample from
// population 0.
func (d Demography) AncParams() (drift.AncParams, error) {
	if err := d.Validate(); err != nil {
		return drift.AncParams{}, err
	}
	return drift.AncParams{T: d.AncTime / (2 * d.Ne0)}, nil
}

// SplitParams returns scaled branch lengths of an ancient sample from
// population 1.
func (d Demography) SplitParams() (drift.SplitParams, error) {
	if err := d.Validate(); err != nil {
		return drift.SplitParams{}, err
	}
	return drift.SplitParams{
		T1: (d.SplitTime - d.AncTime) / (2 * d.Ne1),
		T2: d.SplitTime / (2 * d.Ne0),
	}, nil
}

// MixtureParams returns the parameters of the mixture model with the
// component weight 1-F for the single lineage.
func (d Demography) MixtureParams() (drift.MixtureParams, error) {
	a, err := d.AncParams()
	if err != nil {
		return drift.MixtureParams{}, err
	}
	s, _ := d.SplitParams()
	return drift.MixtureParams{T1: a.T, T2: s.T1, T3: s.T2, P: 1 - d.F}, nil
}
