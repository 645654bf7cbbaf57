package drift

import (
	"fmt"

	"bitbucket.org/Davydov/ancgeno/check"
)

// AncParams are the single ancient lineage model parameters.
type AncParams struct {
	// T is the time between the ancient sample and the present,
	// T > 0.
	T float64 `json:"t" yaml:"t"`
}

// Validate checks the parameter ranges.
func (p AncParams) Validate() error {
	return check.Positive("t", p.T)
}

func (p AncParams) String() string {
	return fmt.Sprintf("t=%g", p.T)
}

// SplitParams are the population split model parameters.
type SplitParams struct {
	// T1 is the time between the ancient sample and the
	// population split, T1 > 0.
	T1 float64 `json:"t1" yaml:"t1"`
	// T2 is the time between the split and the present, T2 > 0.
	T2 float64 `json:"t2" yaml:"t2"`
}

// Validate checks the parameter ranges.
func (p SplitParams) Validate() error {
	if err := check.Positive("t1", p.T1); err != nil {
		return err
	}
	return check.Positive("t2", p.T2)
}

func (p SplitParams) String() string {
	return fmt.Sprintf("t1=%g t2=%g", p.T1, p.T2)
}

// MixtureParams are parameters of the two-component mixture of the
// single lineage and the split models.
type MixtureParams struct {
	// T1 is the single lineage component time, T1 > 0.
	T1 float64 `json:"t1" yaml:"t1"`
	// T2 is the split component ancient sample to split time,
	// T2 > 0.
	T2 float64 `json:"t2" yaml:"t2"`
	// T3 is the split component split to present time, T3 > 0.
	T3 float64 `json:"t3" yaml:"t3"`
	// P is the weight of the single lineage component, 0 <= P <= 1.
	P float64 `json:"p" yaml:"p"`
}

// Validate checks the parameter ranges. P outside of [0, 1] is a
// domain error, non-positive times are configuration errors.
func (p MixtureParams) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{{"t1", p.T1}, {"t2", p.T2}, {"t3", p.T3}} {
		if err := check.Positive(v.name, v.val); err != nil {
			return err
		}
	}
	return check.Fraction("p", p.P)
}

// Anc returns the single lineage component.
func (p MixtureParams) Anc() AncParams {
	return AncParams{T: p.T1}
}

// Split returns the split component.
func (p MixtureParams) Split() SplitParams {
	return SplitParams{T1: p.T2, T2: p.T3}
}

func (p MixtureParams) String() string {
	return fmt.Sprintf("t1=%g t2=%g t3=%g p=%g", p.T1, p.T2, p.T3, p.P)
}
